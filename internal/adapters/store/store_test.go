package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCookies_RoundTrip(t *testing.T) {
	// Arrange
	s := NewCredentialStoreAt(t.TempDir())
	cookies := []Cookie{
		{Name: "web_session", Value: "0400abc", Domain: ".xiaohongshu.com", Path: "/", HTTPOnly: true, Secure: true, SameSite: "Lax"},
		{Name: "a1", Value: "18f9e2", Domain: ".xiaohongshu.com", Path: "/", Expires: 1790000000},
		{Name: "webId", Value: "77aa", Domain: ".xiaohongshu.com", Path: "/"},
	}

	// Act
	if err := s.SaveCookies(cookies); err != nil {
		t.Fatalf("SaveCookies: %v", err)
	}
	loaded := s.LoadCookies()

	// Assert
	if !reflect.DeepEqual(loaded, cookies) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", loaded, cookies)
	}
}

func TestSaveCookies_EmptySet_Rejected(t *testing.T) {
	// Arrange
	s := NewCredentialStoreAt(t.TempDir())

	// Act
	err := s.SaveCookies(nil)

	// Assert
	if err == nil {
		t.Error("expected error when saving empty cookie set")
	}
	if s.HasCookies() {
		t.Error("expected no cookie file to be written")
	}
}

func TestLoadCookies_CorruptFile_ReturnsEmpty(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	s := NewCredentialStoreAt(dir)
	if err := os.WriteFile(filepath.Join(dir, "cookies.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	// Act
	loaded := s.LoadCookies()

	// Assert
	if len(loaded) != 0 {
		t.Errorf("expected empty set from corrupt file, got %d cookies", len(loaded))
	}
}

func TestIdentity_RoundTrip(t *testing.T) {
	// Arrange
	s := NewCredentialStoreAt(t.TempDir())

	// Act
	if err := s.SaveIdentity("604dbc13000000000101f8b7"); err != nil {
		t.Fatalf("SaveIdentity: %v", err)
	}
	got := s.LoadIdentity()

	// Assert
	if got != "604dbc13000000000101f8b7" {
		t.Errorf("got %q, want the saved identifier", got)
	}
}

func TestSaveIdentity_InvalidCandidates_Rejected(t *testing.T) {
	// Arrange
	s := NewCredentialStoreAt(t.TempDir())

	for _, candidate := range []string{"", "me", "ab"} {
		// Act
		err := s.SaveIdentity(candidate)

		// Assert
		if err == nil {
			t.Errorf("SaveIdentity(%q): expected rejection", candidate)
		}
	}
	if got := s.LoadIdentity(); got != "" {
		t.Errorf("expected no identity persisted, got %q", got)
	}
}

func TestLoadIdentity_CorruptDocument_DeletedAndAbsent(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	s := NewCredentialStoreAt(dir)
	path := filepath.Join(dir, "identity.json")
	if err := os.WriteFile(path, []byte(`{"identifier":"me"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	// Act
	got := s.LoadIdentity()

	// Assert
	if got != "" {
		t.Errorf("expected sentinel document treated as absent, got %q", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected corrupt identity document to be deleted")
	}
}
