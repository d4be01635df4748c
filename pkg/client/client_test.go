package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aturmation/aturmation-cli/pkg/domain"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body["username"] != "budi" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(AuthResponse{ //nolint:errcheck
			Token: "t1",
			User:  domain.User{ID: 7, Username: "budi", Role: domain.RoleAdmin},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	resp, err := c.Login(context.Background(), "budi", "secret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.Token != "t1" {
		t.Errorf("Token = %q, want %q", resp.Token, "t1")
	}
	if resp.User.Role != domain.RoleAdmin {
		t.Errorf("Role = %q, want %q", resp.User.Role, domain.RoleAdmin)
	}
	if c.token != "t1" {
		t.Errorf("client token = %q, want it set to the login token", c.token)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.Login(context.Background(), "budi", "wrong")
	if err == nil {
		t.Fatal("expected error for bad credentials")
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("IsStatus(err, 401) = false, err = %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "invalid credentials") {
		t.Errorf("error = %q, want it to carry the server message", got)
	}
}

func TestMe_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "missing token"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(domain.User{ID: 1, Username: "sari", Role: domain.RoleStaff}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	u, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error: %v", err)
	}
	if u.Username != "sari" {
		t.Errorf("Username = %q, want %q", u.Username, "sari")
	}
}

func TestUnauthorizedHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "token expired"}) //nolint:errcheck
	}))
	defer srv.Close()

	fired := 0
	c := New(srv.URL, "stale", WithUnauthorizedHook(func() { fired++ }))
	if _, err := c.Me(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if fired != 1 {
		t.Errorf("hook fired %d times, want 1", fired)
	}
}

func TestUnauthorizedHook_NotFiredOnOtherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "admins only"}) //nolint:errcheck
	}))
	defer srv.Close()

	fired := 0
	c := New(srv.URL, "tok", WithUnauthorizedHook(func() { fired++ }))
	_, err := c.ListUsers(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsStatus(err, http.StatusForbidden) {
		t.Errorf("IsStatus(err, 403) = false, err = %v", err)
	}
	if fired != 0 {
		t.Errorf("hook fired %d times, want 0", fired)
	}
}

func TestListProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("search"); got != "kopi" {
			t.Errorf("search param = %q, want %q", got, "kopi")
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page param = %q, want %q", got, "2")
		}
		json.NewEncoder(w).Encode(ProductPage{ //nolint:errcheck
			Products: []domain.Product{
				{ID: 1, Name: "Kopi Arabica", SKU: "KOPI-A1", Stock: 3, MinStock: 5},
			},
			Total: 21,
			Page:  2,
			Pages: 3,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	params := url.Values{"search": {"kopi"}, "page": {"2"}}
	page, err := c.ListProducts(context.Background(), params)
	if err != nil {
		t.Fatalf("ListProducts() error: %v", err)
	}
	if page.Total != 21 || page.Pages != 3 {
		t.Errorf("Total/Pages = %d/%d, want 21/3", page.Total, page.Pages)
	}
	if len(page.Products) != 1 {
		t.Fatalf("got %d products, want 1", len(page.Products))
	}
	if !page.Products[0].IsLowStock() {
		t.Error("product with stock 3 and minimum 5 should be low stock")
	}
}

func TestCreateProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req ProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Product{ //nolint:errcheck
			ID: 9, Name: req.Name, SKU: req.SKU, Price: req.Price,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	p, err := c.CreateProduct(context.Background(), ProductRequest{
		Name: "Teh Hijau", SKU: "TEH-H1", Price: 15000, CategoryID: 2,
	})
	if err != nil {
		t.Fatalf("CreateProduct() error: %v", err)
	}
	if p.ID != 9 || p.SKU != "TEH-H1" {
		t.Errorf("got ID=%d SKU=%q, want 9/TEH-H1", p.ID, p.SKU)
	}
}

func TestDeleteProduct(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"message": "deleted"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	if err := c.DeleteProduct(context.Background(), 42); err != nil {
		t.Fatalf("DeleteProduct() error: %v", err)
	}
	if gotPath != "DELETE /products/42" {
		t.Errorf("request = %q, want %q", gotPath, "DELETE /products/42")
	}
}

func TestLowStockProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/low-stock" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string][]domain.Product{ //nolint:errcheck
			"products": {{ID: 1, Name: "Gula", Stock: 1, MinStock: 10}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	low, err := c.LowStockProducts(context.Background())
	if err != nil {
		t.Fatalf("LowStockProducts() error: %v", err)
	}
	if len(low) != 1 || low[0].Name != "Gula" {
		t.Errorf("got %v, want the one low product", low)
	}
}

func TestCreateTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Type != domain.StockOut {
			t.Errorf("type = %q, want %q", req.Type, domain.StockOut)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Transaction{ //nolint:errcheck
			ID: 3, ProductID: req.ProductID, Type: req.Type, Quantity: req.Quantity, CurrentStock: 12,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	tx, err := c.CreateTransaction(context.Background(), TransactionRequest{
		ProductID: 5, Type: domain.StockOut, Quantity: 3,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}
	if tx.CurrentStock != 12 {
		t.Errorf("CurrentStock = %d, want 12", tx.CurrentStock)
	}
}

func TestContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string][]domain.Category{"categories": {}}) //nolint:errcheck
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, "tok")
	if _, err := c.ListCategories(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
