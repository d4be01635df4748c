// Package forms validates entity drafts before they reach the API.
// Screens hold raw text inputs; each form parses them into a request
// payload and reports per-field messages. A draft with any error never
// produces a network call.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aturmation/aturmation-cli/pkg/client"
	"github.com/aturmation/aturmation-cli/pkg/domain"
)

// Errors maps a field name to its validation message.
type Errors map[string]string

// Valid reports whether the draft passed validation.
func (e Errors) Valid() bool { return len(e) == 0 }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the wire-style field name, not the Go one.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("field"); name != "" {
			return name
		}
		return strings.ToLower(fld.Name)
	})
	return v
}

// check runs struct validation and converts the result to field messages.
func check(draft any) Errors {
	errs := Errors{}
	if err := validate.Struct(draft); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				errs[fe.Field()] = fieldError(fe)
			}
			return errs
		}
		errs["form"] = err.Error()
	}
	return errs
}

// fieldError converts a single validation failure into a human-readable
// inline message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		if fe.Param() == "0" {
			return field + " must be greater than 0"
		}
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "eqfield":
		return field + " must match password"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// parseInt converts a raw input to an int, recording a message on failure.
func parseInt(raw, field string, errs Errors) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[field] = field + " must be a whole number"
	}
	return n
}

// parseFloat converts a raw input to a float64, recording a message on failure.
func parseFloat(raw, field string, errs Errors) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs[field] = field + " must be a number"
	}
	return f
}

// --- Login ---

// LoginForm holds the login screen's draft credentials.
type LoginForm struct {
	Username string
	Password string
}

type loginDraft struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Validate checks the credentials and returns per-field messages.
func (f LoginForm) Validate() Errors {
	return check(loginDraft{
		Username: strings.TrimSpace(f.Username),
		Password: f.Password,
	})
}

// --- Register ---

// RegisterForm holds the account creation draft.
type RegisterForm struct {
	Name     string
	Username string
	Email    string
	Password string
	Confirm  string
}

type registerDraft struct {
	Name     string `validate:"required"`
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"required,eqfield=Password"`
}

// Validate checks the draft; on success Request carries the payload.
func (f RegisterForm) Validate() (client.RegisterRequest, Errors) {
	draft := registerDraft{
		Name:     strings.TrimSpace(f.Name),
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Confirm:  f.Confirm,
	}
	errs := check(draft)
	if !errs.Valid() {
		return client.RegisterRequest{}, errs
	}
	return client.RegisterRequest{
		Name:     draft.Name,
		Username: draft.Username,
		Email:    draft.Email,
		Password: draft.Password,
	}, errs
}

// --- Product ---

// ProductForm holds the product screen's draft, with numeric fields still
// as raw input text.
type ProductForm struct {
	Name        string
	SKU         string
	Price       string
	Stock       string
	MinStock    string
	CategoryID  int
	Description string
}

type productDraft struct {
	Name       string  `validate:"required"`
	SKU        string  `validate:"omitempty,min=3"`
	Price      float64 `validate:"required,gt=0"`
	Stock      int     `validate:"gte=0"`
	MinStock   int     `validate:"gte=0" field:"min stock"`
	CategoryID int     `validate:"required,gt=0" field:"category"`
}

// Validate parses and checks the draft. A blank SKU is allowed here; the
// screen generates one before submitting.
func (f ProductForm) Validate() (client.ProductRequest, Errors) {
	errs := Errors{}
	price := parseFloat(f.Price, "price", errs)
	stock := parseInt(f.Stock, "stock", errs)
	minStock := parseInt(f.MinStock, "min stock", errs)
	if !errs.Valid() {
		return client.ProductRequest{}, errs
	}

	draft := productDraft{
		Name:       strings.TrimSpace(f.Name),
		SKU:        strings.TrimSpace(f.SKU),
		Price:      price,
		Stock:      stock,
		MinStock:   minStock,
		CategoryID: f.CategoryID,
	}
	errs = check(draft)
	if !errs.Valid() {
		return client.ProductRequest{}, errs
	}
	return client.ProductRequest{
		Name:        draft.Name,
		SKU:         draft.SKU,
		Description: strings.TrimSpace(f.Description),
		Price:       draft.Price,
		Stock:       draft.Stock,
		MinStock:    draft.MinStock,
		CategoryID:  draft.CategoryID,
	}, errs
}

// --- Category ---

// CategoryForm holds the category screen's draft.
type CategoryForm struct {
	Name        string
	Description string
}

type categoryDraft struct {
	Name string `validate:"required"`
}

// Validate checks the draft; on success Request carries the payload.
func (f CategoryForm) Validate() (client.CategoryRequest, Errors) {
	draft := categoryDraft{Name: strings.TrimSpace(f.Name)}
	errs := check(draft)
	if !errs.Valid() {
		return client.CategoryRequest{}, errs
	}
	return client.CategoryRequest{
		Name:        draft.Name,
		Description: strings.TrimSpace(f.Description),
	}, errs
}

// --- Transaction ---

// TransactionForm holds the stock movement draft.
type TransactionForm struct {
	ProductID int
	Type      string
	Quantity  string
	Note      string
}

type transactionDraft struct {
	ProductID int    `validate:"required,gt=0" field:"product"`
	Type      string `validate:"required,oneof=stock_in stock_out"`
	Quantity  int    `validate:"required,gt=0"`
}

// Validate parses and checks the draft; on success Request carries the payload.
func (f TransactionForm) Validate() (client.TransactionRequest, Errors) {
	errs := Errors{}
	qty := parseInt(f.Quantity, "quantity", errs)
	if !errs.Valid() {
		return client.TransactionRequest{}, errs
	}

	draft := transactionDraft{
		ProductID: f.ProductID,
		Type:      f.Type,
		Quantity:  qty,
	}
	errs = check(draft)
	if !errs.Valid() {
		return client.TransactionRequest{}, errs
	}
	return client.TransactionRequest{
		ProductID: draft.ProductID,
		Type:      draft.Type,
		Quantity:  draft.Quantity,
		Note:      strings.TrimSpace(f.Note),
	}, errs
}

// --- User ---

// UserForm holds the user screen's draft. New distinguishes account
// creation (password required) from edits (blank keeps the old password).
type UserForm struct {
	Name     string
	Username string
	Email    string
	Role     string
	Password string
	Confirm  string
	New      bool
}

type userDraft struct {
	Name     string `validate:"required"`
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Role     string `validate:"required,oneof=admin staff"`
	Password string `validate:"omitempty,min=6"`
	Confirm  string `validate:"eqfield=Password" field:"confirm"`
}

// Validate checks the draft; on success Request carries the payload.
func (f UserForm) Validate() (client.UserRequest, Errors) {
	draft := userDraft{
		Name:     strings.TrimSpace(f.Name),
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Role:     f.Role,
		Password: f.Password,
		Confirm:  f.Confirm,
	}
	errs := check(draft)
	if f.New && f.Password == "" {
		errs["password"] = "password is required"
	}
	if !errs.Valid() {
		return client.UserRequest{}, errs
	}
	if !domain.ValidRole(draft.Role) {
		errs["role"] = "role must be one of: admin staff"
		return client.UserRequest{}, errs
	}
	return client.UserRequest{
		Name:     draft.Name,
		Username: draft.Username,
		Email:    draft.Email,
		Role:     draft.Role,
		Password: draft.Password,
	}, errs
}
