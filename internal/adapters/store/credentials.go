// Package store persists the session cookies and the resolved account
// identity as two JSON documents under ~/.mcp/rednote. Both files are
// read and written whole; there are no partial updates.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DataDirEnv overrides the root directory holding both documents.
const DataDirEnv = "REDNOTE_DATA_DIR"

const (
	cookieFile   = "cookies.json"
	identityFile = "identity.json"
)

// Cookie is one persisted browser cookie. Field names follow the
// layout the platform's web client expects when cookies are restored
// into a fresh browser context.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// CredentialStore reads and writes the cookie and identity documents.
type CredentialStore struct {
	dir string
}

// NewCredentialStore creates a store rooted at REDNOTE_DATA_DIR, or
// ~/.mcp/rednote when unset.
func NewCredentialStore() (*CredentialStore, error) {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return &CredentialStore{dir: dir}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return &CredentialStore{dir: filepath.Join(home, ".mcp", "rednote")}, nil
}

// NewCredentialStoreAt creates a store rooted at an explicit directory.
func NewCredentialStoreAt(dir string) *CredentialStore {
	return &CredentialStore{dir: dir}
}

func (s *CredentialStore) cookiePath() string {
	return filepath.Join(s.dir, cookieFile)
}

func (s *CredentialStore) identityPath() string {
	return filepath.Join(s.dir, identityFile)
}

// HasCookies reports whether a cookie document exists on disk.
func (s *CredentialStore) HasCookies() bool {
	_, err := os.Stat(s.cookiePath())
	return err == nil
}

// LoadCookies reads the persisted cookie set. A missing or corrupt
// document yields an empty set, not an error: losing a saved session
// only means the user logs in again.
func (s *CredentialStore) LoadCookies() []Cookie {
	data, err := os.ReadFile(s.cookiePath())
	if err != nil {
		return nil
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil
	}
	return cookies
}

// SaveCookies writes the full cookie set, replacing any previous file.
func (s *CredentialStore) SaveCookies(cookies []Cookie) error {
	if len(cookies) == 0 {
		return errors.New("refusing to save empty cookie set")
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}

	if err := os.WriteFile(s.cookiePath(), data, 0o600); err != nil {
		return fmt.Errorf("write cookies: %w", err)
	}
	return nil
}
