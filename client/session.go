package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const credFileName = "credentials.json"

// TokenEnv overrides the stored token when set.
const TokenEnv = "TODO_TOKEN"

// Session is the token the CLI authenticates with.
type Session struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when it was saved
	ExpiresAt *time.Time `json:"expires_at"` // from the token's exp claim
}

// Expired reports whether the token's exp claim is in the past. Tokens
// without one are never considered expired here; the server decides.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// SessionStore keeps the session in a credentials file.
type SessionStore struct {
	dir string
}

// NewSessionStore stores credentials under dir. An empty dir means
// ConfigDir().
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{dir: dir}
}

// ConfigDir is ~/.config/gotodo.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".config", "gotodo"), nil
}

func (s *SessionStore) path() (string, error) {
	dir := s.dir
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, credFileName), nil
}

// Load returns the current session, or nil when there is none.
func (s *SessionStore) Load() (*Session, error) {
	if env := strings.TrimSpace(os.Getenv(TokenEnv)); env != "" {
		token := stripBearer(env)
		return &Session{Token: token, Source: "env", ExpiresAt: tokenExpiry(token)}, nil
	}

	p, err := s.path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	sess.Token = stripBearer(sess.Token)
	if sess.Token == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save writes token to the credentials file with owner-only permissions.
func (s *SessionStore) Save(token string) (*Session, error) {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return nil, errors.New("empty token")
	}
	p, err := s.path()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	sess := &Session{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: tokenExpiry(token),
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return sess, nil
}

// Clear removes the credentials file. A missing file is not an error.
func (s *SessionStore) Clear() error {
	p, err := s.path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// tokenExpiry reads exp without verifying the signature; only the server
// holds the secret.
func tokenExpiry(token string) *time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.Time
	return &exp
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
