package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aturmation/aturmation-cli/pkg/domain"
)

// Client is the Aturmation API client.
type Client struct {
	baseURL        string
	token          string
	httpClient     *http.Client
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUnauthorizedHook installs a callback invoked whenever the API
// answers 401. The hook runs before the error is returned, so a session
// store can clear its token ahead of the caller seeing the failure.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a new API client.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken swaps the bearer token attached to subsequent requests.
// Called after a successful login or register.
func (c *Client) SetToken(token string) {
	c.token = token
}

// --- Auth ---

// AuthResponse is the payload of a successful login or register call.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and user profile.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.post(ctx, "/auth/login", body, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	c.token = resp.Token
	return &resp, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	c.token = resp.Token
	return &resp, nil
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/auth/me", &u); err != nil {
		return nil, fmt.Errorf("client.Me: %w", err)
	}
	return &u, nil
}

// --- Products ---

// ProductRequest is the payload for creating or updating a product.
type ProductRequest struct {
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock_quantity"`
	MinStock    int     `json:"minimum_stock"`
	CategoryID  int     `json:"category_id"`
}

// ProductPage is the server's paginated product envelope.
type ProductPage struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

// ListProducts fetches one page of products. params carries the list-query
// state (page, per_page, search, sort, order, category_id).
func (c *Client) ListProducts(ctx context.Context, params url.Values) (*ProductPage, error) {
	var page ProductPage
	if err := c.get(ctx, "/products?"+params.Encode(), &page); err != nil {
		return nil, fmt.Errorf("client.ListProducts: %w", err)
	}
	return &page, nil
}

// GetProduct fetches a single product by ID.
func (c *Client) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, "/products/"+strconv.Itoa(id), &p); err != nil {
		return nil, fmt.Errorf("client.GetProduct: %w", err)
	}
	return &p, nil
}

// CreateProduct creates a new product.
func (c *Client) CreateProduct(ctx context.Context, req ProductRequest) (*domain.Product, error) {
	var created domain.Product
	if err := c.post(ctx, "/products", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateProduct: %w", err)
	}
	return &created, nil
}

// UpdateProduct updates an existing product.
func (c *Client) UpdateProduct(ctx context.Context, id int, req ProductRequest) (*domain.Product, error) {
	var updated domain.Product
	if err := c.doRequest(ctx, http.MethodPut, "/products/"+strconv.Itoa(id), req, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateProduct: %w", err)
	}
	return &updated, nil
}

// DeleteProduct deletes a product by ID.
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/products/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteProduct: %w", err)
	}
	return nil
}

// LowStockProducts returns products at or below their minimum stock.
func (c *Client) LowStockProducts(ctx context.Context) ([]domain.Product, error) {
	var out struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.get(ctx, "/products/low-stock", &out); err != nil {
		return nil, fmt.Errorf("client.LowStockProducts: %w", err)
	}
	return out.Products, nil
}

// --- Categories ---

// CategoryRequest is the payload for creating or updating a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListCategories fetches all categories. The collection is small, so the
// server returns it whole and the category screen filters client-side.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := c.get(ctx, "/categories", &out); err != nil {
		return nil, fmt.Errorf("client.ListCategories: %w", err)
	}
	return out.Categories, nil
}

// CreateCategory creates a new category.
func (c *Client) CreateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	var created domain.Category
	if err := c.post(ctx, "/categories", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateCategory: %w", err)
	}
	return &created, nil
}

// UpdateCategory updates an existing category.
func (c *Client) UpdateCategory(ctx context.Context, id int, req CategoryRequest) (*domain.Category, error) {
	var updated domain.Category
	if err := c.doRequest(ctx, http.MethodPut, "/categories/"+strconv.Itoa(id), req, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateCategory: %w", err)
	}
	return &updated, nil
}

// DeleteCategory deletes a category by ID.
func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/categories/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteCategory: %w", err)
	}
	return nil
}

// --- Transactions ---

// TransactionRequest is the payload for recording a stock movement.
type TransactionRequest struct {
	ProductID int    `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
}

// TransactionPage is the server's paginated transaction envelope.
type TransactionPage struct {
	Transactions []domain.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
	Page         int                  `json:"page"`
	Pages        int                  `json:"pages"`
}

// ListTransactions fetches one page of stock movements, newest first.
func (c *Client) ListTransactions(ctx context.Context, params url.Values) (*TransactionPage, error) {
	var page TransactionPage
	if err := c.get(ctx, "/transactions?"+params.Encode(), &page); err != nil {
		return nil, fmt.Errorf("client.ListTransactions: %w", err)
	}
	return &page, nil
}

// CreateTransaction records a stock movement. The server applies the
// movement to the product's stock and rejects overdrawn stock-outs.
func (c *Client) CreateTransaction(ctx context.Context, req TransactionRequest) (*domain.Transaction, error) {
	var created domain.Transaction
	if err := c.post(ctx, "/transactions", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateTransaction: %w", err)
	}
	return &created, nil
}

// --- Users ---

// UserRequest is the payload for creating or updating a user.
// Password is omitted on updates that keep the existing password.
type UserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

// ListUsers fetches all users. Admin only; others get a 403 surfaced verbatim.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out struct {
		Users []domain.User `json:"users"`
	}
	if err := c.get(ctx, "/users", &out); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return out.Users, nil
}

// CreateUser creates a new user account.
func (c *Client) CreateUser(ctx context.Context, req UserRequest) (*domain.User, error) {
	var created domain.User
	if err := c.post(ctx, "/users", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateUser: %w", err)
	}
	return &created, nil
}

// UpdateUser updates an existing user.
func (c *Client) UpdateUser(ctx context.Context, id int, req UserRequest) (*domain.User, error) {
	var updated domain.User
	if err := c.doRequest(ctx, http.MethodPut, "/users/"+strconv.Itoa(id), req, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateUser: %w", err)
	}
	return &updated, nil
}

// DeleteUser deletes a user by ID.
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/users/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteUser: %w", err)
	}
	return nil
}

// --- transport ---

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
