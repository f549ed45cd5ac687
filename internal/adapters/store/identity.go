package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
)

// identityDoc is the on-disk shape of the identity document.
type identityDoc struct {
	Identifier string `json:"identifier"`
}

// LoadIdentity returns the persisted account identifier, or "" when
// none is resolved yet. A corrupt or invalid document is deleted rather
// than propagated: absence is a valid "not yet resolved" state.
func (s *CredentialStore) LoadIdentity() string {
	data, err := os.ReadFile(s.identityPath())
	if err != nil {
		return ""
	}

	var doc identityDoc
	if err := json.Unmarshal(data, &doc); err != nil || !domain.ValidIdentity(doc.Identifier) {
		os.Remove(s.identityPath())
		return ""
	}
	return doc.Identifier
}

// SaveIdentity persists a resolved identifier. Candidates violating the
// identity invariant are rejected so a garbage write can never shadow
// a later, correct resolution.
func (s *CredentialStore) SaveIdentity(identifier string) error {
	if !domain.ValidIdentity(identifier) {
		return fmt.Errorf("invalid identity %q: must be non-sentinel and at least %d chars", identifier, domain.IdentityMinLen)
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	data, err := json.MarshalIndent(identityDoc{Identifier: identifier}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	if err := os.WriteFile(s.identityPath(), data, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}
