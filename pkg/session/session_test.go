package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aturmation/aturmation-cli/pkg/client"
	"github.com/aturmation/aturmation-cli/pkg/domain"
)

// signToken builds a real HS256 token; the store never verifies the
// signature, only decodes the payload.
func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func validClaims(exp time.Time) Claims {
	return Claims{
		UserID:   7,
		Username: "budi",
		Name:     "Budi Santoso",
		Role:     domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

type fakeAPI struct {
	user *domain.User
	err  error
}

func (f fakeAPI) Me(context.Context) (*domain.User, error) { return f.user, f.err }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStoreAt(filepath.Join(t.TempDir(), "token"))
}

func TestTokenPrecedence(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save("from-file"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if got := store.Token(); got != "from-file" {
		t.Errorf("Token() = %q, want %q", got, "from-file")
	}

	t.Setenv(EnvToken, "from-env")
	if got := store.Token(); got != "from-env" {
		t.Errorf("Token() = %q, want env var to win", got)
	}
}

func TestSaveClearRoundtrip(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save("tok"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if got := store.Token(); got != "" {
		t.Errorf("Token() after Clear = %q, want empty", got)
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error: %v", err)
	}
}

func TestCurrent_NoToken(t *testing.T) {
	store := newTestStore(t)
	sess, err := store.Current(context.Background(), fakeAPI{})
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if sess != nil {
		t.Errorf("Current() = %+v, want nil without a token", sess)
	}
}

func TestCurrent_ExpiredTokenCleared(t *testing.T) {
	store := newTestStore(t)
	tok := signToken(t, validClaims(time.Now().Add(-time.Hour)))
	if err := store.Save(tok); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sess, err := store.Current(context.Background(), fakeAPI{})
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if sess != nil {
		t.Fatal("expired token should not produce a session")
	}
	if _, statErr := os.Stat(store.path); !os.IsNotExist(statErr) {
		t.Error("expired token file should have been removed")
	}
}

func TestCurrent_GarbageTokenCleared(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save("not-a-jwt"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sess, err := store.Current(context.Background(), fakeAPI{})
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if sess != nil {
		t.Fatal("garbage token should not produce a session")
	}
	if got := store.Token(); got != "" {
		t.Errorf("Token() = %q, want garbage cleared", got)
	}
}

func TestCurrent_ServerConfirms(t *testing.T) {
	store := newTestStore(t)
	tok := signToken(t, validClaims(time.Now().Add(time.Hour)))
	if err := store.Save(tok); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	api := fakeAPI{user: &domain.User{ID: 7, Username: "budi", Role: domain.RoleStaff}}
	sess, err := store.Current(context.Background(), api)
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if sess == nil {
		t.Fatal("expected a session")
	}
	// Server profile wins over the decoded claims.
	if sess.User.Role != domain.RoleStaff {
		t.Errorf("Role = %q, want the server's %q", sess.User.Role, domain.RoleStaff)
	}
	if sess.Token != tok {
		t.Error("session should carry the stored token")
	}
}

func TestCurrent_RejectedTokenCleared(t *testing.T) {
	store := newTestStore(t)
	tok := signToken(t, validClaims(time.Now().Add(time.Hour)))
	if err := store.Save(tok); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	api := fakeAPI{err: &client.HTTPError{StatusCode: 401, Message: "token revoked"}}
	sess, err := store.Current(context.Background(), api)
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if sess != nil {
		t.Fatal("rejected token should not produce a session")
	}
	if got := store.Token(); got != "" {
		t.Errorf("Token() = %q, want rejected token cleared", got)
	}
}

func TestCurrent_OfflineFallsBackToClaims(t *testing.T) {
	store := newTestStore(t)
	tok := signToken(t, validClaims(time.Now().Add(time.Hour)))
	if err := store.Save(tok); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	api := fakeAPI{err: errors.New("dial tcp: connection refused")}
	sess, err := store.Current(context.Background(), api)
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if sess == nil {
		t.Fatal("transient error should fall back to decoded claims")
	}
	if sess.User.Username != "budi" || sess.User.Role != domain.RoleAdmin {
		t.Errorf("User = %+v, want the claims-derived profile", sess.User)
	}
}

func TestClaimsExpired(t *testing.T) {
	now := time.Now()

	noExp := &Claims{}
	if !noExp.Expired(now) {
		t.Error("claims without exp should count as expired")
	}

	past := validClaims(now.Add(-time.Minute))
	if !past.Expired(now) {
		t.Error("past exp should be expired")
	}

	future := validClaims(now.Add(time.Minute))
	if future.Expired(now) {
		t.Error("future exp should not be expired")
	}
}

func TestDecode_BadToken(t *testing.T) {
	if _, err := Decode("definitely.not.jwt"); err == nil {
		t.Error("expected decode error")
	}
}
