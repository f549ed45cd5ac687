// Package usecases wires the engine's inbound operations over narrow
// interfaces so each can be exercised without a browser.
package usecases

import (
	"context"
	"time"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
)

// SessionController owns the browser session's authentication state.
type SessionController interface {
	Check(ctx context.Context) (domain.LoginStatus, error)
	Login(ctx context.Context, timeout time.Duration) (domain.LoginResult, error)
	HasCredentials() bool
	Identity() string
}

// Extractor fetches structured data from one page class.
type Extractor interface {
	Favorites(ctx context.Context, userID string, limit int) ([]domain.NoteRef, error)
	Search(ctx context.Context, keyword string, limit int, sort domain.SortMode) ([]domain.NoteRef, error)
	Detail(ctx context.Context, noteURL string) (*domain.Note, error)
}

// MediaAcquirer hydrates the media URLs of an extracted note.
type MediaAcquirer interface {
	Acquire(ctx context.Context, urls []string, opts domain.MediaOptions) []domain.Image
}

// Pacer inserts the inter-document delay between batch items.
type Pacer interface {
	Pause(ctx context.Context) error
}
