package forms

import (
	"testing"

	"github.com/aturmation/aturmation-cli/pkg/domain"
)

func TestLoginForm(t *testing.T) {
	errs := LoginForm{Username: "budi", Password: "secret"}.Validate()
	if !errs.Valid() {
		t.Errorf("valid credentials rejected: %v", errs)
	}

	errs = LoginForm{Username: "  ", Password: ""}.Validate()
	if errs["username"] != "username is required" {
		t.Errorf("username error = %q, want required message", errs["username"])
	}
	if errs["password"] != "password is required" {
		t.Errorf("password error = %q, want required message", errs["password"])
	}
}

func TestRegisterForm(t *testing.T) {
	req, errs := RegisterForm{
		Name:     "Budi Santoso",
		Username: "budi",
		Email:    "budi@example.com",
		Password: "secret1",
		Confirm:  "secret1",
	}.Validate()
	if !errs.Valid() {
		t.Fatalf("valid draft rejected: %v", errs)
	}
	if req.Username != "budi" || req.Email != "budi@example.com" {
		t.Errorf("request = %+v, want the trimmed draft values", req)
	}
}

func TestRegisterForm_ConfirmMismatch(t *testing.T) {
	_, errs := RegisterForm{
		Name:     "Budi",
		Username: "budi",
		Email:    "budi@example.com",
		Password: "secret1",
		Confirm:  "secret2",
	}.Validate()
	if errs["confirm"] != "confirm must match password" {
		t.Errorf("confirm error = %q, want the mismatch message", errs["confirm"])
	}
}

func TestRegisterForm_FieldRules(t *testing.T) {
	_, errs := RegisterForm{
		Name:     "Budi",
		Username: "ab",
		Email:    "not-an-email",
		Password: "short",
		Confirm:  "short",
	}.Validate()
	if errs["username"] != "username must be at least 3 characters" {
		t.Errorf("username error = %q", errs["username"])
	}
	if errs["email"] != "email must be a valid email" {
		t.Errorf("email error = %q", errs["email"])
	}
	if errs["password"] != "password must be at least 6 characters" {
		t.Errorf("password error = %q", errs["password"])
	}
}

func TestProductForm(t *testing.T) {
	req, errs := ProductForm{
		Name:       "Kopi Arabica",
		SKU:        "KOPI-A1",
		Price:      "25000",
		Stock:      "10",
		MinStock:   "5",
		CategoryID: 2,
	}.Validate()
	if !errs.Valid() {
		t.Fatalf("valid draft rejected: %v", errs)
	}
	if req.Price != 25000 || req.Stock != 10 || req.MinStock != 5 {
		t.Errorf("request = %+v, want parsed numerics", req)
	}
}

// A draft that fails validation yields messages and no request payload.
func TestProductForm_NegativePrice(t *testing.T) {
	req, errs := ProductForm{
		Name:       "Kopi",
		Price:      "-5",
		CategoryID: 2,
	}.Validate()
	if errs["price"] != "price must be greater than 0" {
		t.Errorf("price error = %q, want the gt=0 message", errs["price"])
	}
	if req.Name != "" {
		t.Error("failed validation must return a zero request")
	}
}

func TestProductForm_ParseErrors(t *testing.T) {
	_, errs := ProductForm{
		Name:       "Kopi",
		Price:      "abc",
		Stock:      "ten",
		CategoryID: 2,
	}.Validate()
	if errs["price"] != "price must be a number" {
		t.Errorf("price error = %q", errs["price"])
	}
	if errs["stock"] != "stock must be a whole number" {
		t.Errorf("stock error = %q", errs["stock"])
	}
}

func TestProductForm_BlankSKUAllowed(t *testing.T) {
	req, errs := ProductForm{
		Name:       "Kopi",
		Price:      "1000",
		Stock:      "0",
		MinStock:   "0",
		CategoryID: 1,
	}.Validate()
	if !errs.Valid() {
		t.Fatalf("blank SKU should pass, got %v", errs)
	}
	if req.SKU != "" {
		t.Errorf("SKU = %q, want empty for the screen to fill", req.SKU)
	}

	_, errs = ProductForm{
		Name:       "Kopi",
		SKU:        "AB",
		Price:      "1000",
		CategoryID: 1,
	}.Validate()
	if errs["sku"] != "sku must be at least 3 characters" {
		t.Errorf("sku error = %q, want the min length message", errs["sku"])
	}
}

func TestProductForm_MissingCategory(t *testing.T) {
	_, errs := ProductForm{
		Name:  "Kopi",
		Price: "1000",
	}.Validate()
	if errs["category"] != "category is required" {
		t.Errorf("category error = %q, want required message", errs["category"])
	}
}

func TestCategoryForm(t *testing.T) {
	req, errs := CategoryForm{Name: " Minuman ", Description: "drinks"}.Validate()
	if !errs.Valid() {
		t.Fatalf("valid draft rejected: %v", errs)
	}
	if req.Name != "Minuman" {
		t.Errorf("Name = %q, want trimmed", req.Name)
	}

	_, errs = CategoryForm{}.Validate()
	if errs["name"] != "name is required" {
		t.Errorf("name error = %q, want required message", errs["name"])
	}
}

func TestTransactionForm(t *testing.T) {
	req, errs := TransactionForm{
		ProductID: 5,
		Type:      domain.StockIn,
		Quantity:  "3",
		Note:      "restock",
	}.Validate()
	if !errs.Valid() {
		t.Fatalf("valid draft rejected: %v", errs)
	}
	if req.ProductID != 5 || req.Quantity != 3 {
		t.Errorf("request = %+v, want parsed values", req)
	}
}

func TestTransactionForm_Rules(t *testing.T) {
	_, errs := TransactionForm{
		ProductID: 0,
		Type:      "adjust",
		Quantity:  "-2",
	}.Validate()
	if errs["product"] == "" {
		t.Error("missing product should be reported")
	}
	if errs["type"] != "type must be one of: stock_in stock_out" {
		t.Errorf("type error = %q", errs["type"])
	}
	if errs["quantity"] != "quantity must be greater than 0" {
		t.Errorf("quantity error = %q", errs["quantity"])
	}
}

func TestUserForm_NewRequiresPassword(t *testing.T) {
	_, errs := UserForm{
		Name:     "Sari",
		Username: "sari",
		Email:    "sari@example.com",
		Role:     domain.RoleStaff,
		New:      true,
	}.Validate()
	if errs["password"] != "password is required" {
		t.Errorf("password error = %q, want required on create", errs["password"])
	}
}

func TestUserForm_EditWithoutPassword(t *testing.T) {
	req, errs := UserForm{
		Name:     "Sari",
		Username: "sari",
		Email:    "sari@example.com",
		Role:     domain.RoleAdmin,
	}.Validate()
	if !errs.Valid() {
		t.Fatalf("edit without password rejected: %v", errs)
	}
	if req.Password != "" {
		t.Errorf("Password = %q, want empty so the server keeps the old one", req.Password)
	}
	if req.Role != domain.RoleAdmin {
		t.Errorf("Role = %q, want %q", req.Role, domain.RoleAdmin)
	}
}
