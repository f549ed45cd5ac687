package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNoteRef_JSON_UnresolvedAuthorIsEmptyObject(t *testing.T) {
	// Arrange
	ref := NoteRef{NoteID: "650000000000000000000001", URL: "https://www.xiaohongshu.com/explore/650000000000000000000001"}

	// Act
	data, err := json.Marshal(ref)

	// Assert
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"author":{}`) {
		t.Errorf("expected empty author object, got %s", out)
	}
	if strings.Contains(out, "xsec_token") {
		t.Errorf("expected empty token elided, got %s", out)
	}
}

func TestValidIdentity(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"", false},
		{IdentitySentinel, false},
		{"abc", false},
		{"604dbc13000000000101f8b7", true},
		{"user01", true},
	}

	for _, tc := range cases {
		if got := ValidIdentity(tc.id); got != tc.want {
			t.Errorf("ValidIdentity(%q): got %v, want %v", tc.id, got, tc.want)
		}
	}
}
