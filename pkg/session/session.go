// Package session owns the client's record of who is logged in: a bearer
// token persisted on disk and the user profile derived from it.
//
// The token's JWT payload is decoded without signature verification. The
// decoded claims gate screen rendering and nothing else; every request is
// re-authorized server-side.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aturmation/aturmation-cli/pkg/client"
	"github.com/aturmation/aturmation-cli/pkg/domain"
)

// EnvToken overrides the token file when set.
const EnvToken = "ATURMATION_TOKEN"

// Session is the client's view of an authenticated login.
type Session struct {
	Token string
	User  domain.User
}

// ProfileAPI is the slice of the REST client the store needs to confirm a
// rehydrated token with the server.
type ProfileAPI interface {
	Me(ctx context.Context) (*domain.User, error)
}

// Store persists the auth token and rehydrates sessions from it.
type Store struct {
	path string
}

// NewStore returns a store backed by ~/.aturmation/token.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	return &Store{path: filepath.Join(home, ".aturmation", "token")}, nil
}

// NewStoreAt returns a store backed by an explicit token path. Used by tests.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Token returns the auth token using precedence: env var > file > empty.
func (s *Store) Token() string {
	if tok := os.Getenv(EnvToken); tok != "" {
		return tok
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Save persists the token with user-only permissions.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear removes the persisted token. Missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Current rehydrates the session at startup.
//
// No token, an undecodable token, or an expired exp claim all yield nil
// with the stored token cleared. A decodable token is confirmed against
// /auth/me: a 401 clears it, while transient errors fall back to the
// locally decoded claims so the app still opens offline.
func (s *Store) Current(ctx context.Context, api ProfileAPI) (*Session, error) {
	token := s.Token()
	if token == "" {
		return nil, nil
	}

	claims, err := Decode(token)
	if err != nil || claims.Expired(time.Now()) {
		if clearErr := s.Clear(); clearErr != nil {
			return nil, clearErr
		}
		return nil, nil
	}

	user, err := api.Me(ctx)
	if err != nil {
		if client.IsStatus(err, 401) {
			if clearErr := s.Clear(); clearErr != nil {
				return nil, clearErr
			}
			return nil, nil
		}
		// Network or server trouble: trust the local claims for display.
		u := claims.User()
		return &Session{Token: token, User: u}, nil
	}
	return &Session{Token: token, User: *user}, nil
}

// Claims is the subset of the JWT payload the client reads.
type Claims struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Expired reports whether the exp claim is at or before now.
// A token without an exp claim is treated as expired.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !c.ExpiresAt.After(now)
}

// User converts the claims into a display-only user record.
func (c *Claims) User() domain.User {
	return domain.User{
		ID:       c.UserID,
		Username: c.Username,
		Name:     c.Name,
		Email:    c.Email,
		Role:     c.Role,
	}
}

// Decode parses the token payload without verifying its signature.
func Decode(token string) (*Claims, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &claims, nil
}
