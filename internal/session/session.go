// Package session holds the authenticated session state for the toolkit:
// the access/refresh token pair obtained at login, persisted to a file so
// consecutive commands share one session. The store is an explicit injected
// dependency, created at startup and cleared on logout or failed refresh.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSession = errors.New("no active session")

// Tokens is the credential pair issued by the platform's auth endpoints.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims is the subset of access-token claims the toolkit displays. The
// token is decoded without signature verification; verifying it is the
// server's job, the client only reads it for display and expiry hints.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Store keeps the token pair in memory and mirrors it to a file with 0600
// permissions. Safe for concurrent use within one process.
type Store struct {
	mu     sync.Mutex
	path   string
	tokens Tokens
}

// NewStore creates a store backed by the given file path. The file is not
// touched until Load or Set is called.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads a previously saved session. A missing file is not an error;
// the store simply stays empty.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read session file: %w", err)
	}
	var tokens Tokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("decode session file: %w", err)
	}
	s.tokens = tokens
	return nil
}

// Set stores a new token pair and persists it.
func (s *Store) Set(tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = tokens
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear wipes the in-memory pair and removes the session file. Called on
// logout and whenever a credential refresh fails.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = Tokens{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// AccessToken returns the current access token, empty when logged out.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.AccessToken
}

// RefreshToken returns the current refresh token, empty when logged out.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.RefreshToken
}

// Active reports whether a token pair is held.
func (s *Store) Active() bool {
	return s.AccessToken() != ""
}

// Claims decodes the held access token without verifying its signature.
func (s *Store) Claims() (Claims, error) {
	token := s.AccessToken()
	if token == "" {
		return Claims{}, ErrNoSession
	}
	return decodeClaims(token)
}

func decodeClaims(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("decode access token: %w", err)
	}

	var out Claims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
