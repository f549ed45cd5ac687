package usecases

import (
	"context"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
	"github.com/CopeeeTang/rednote-mind-mcp/pkg/log"
)

// ListFavoritesUseCase lists refs from the logged-in user's favorites
// tab.
type ListFavoritesUseCase struct {
	session   SessionController
	extractor Extractor
}

func NewListFavoritesUseCase(session SessionController, extractor Extractor) *ListFavoritesUseCase {
	return &ListFavoritesUseCase{session: session, extractor: extractor}
}

// Execute lists up to limit favorites. When no account identifier was
// resolved at login, the lazy sentinel path is attempted; the platform
// usually redirects it to the real profile, but not always.
func (uc *ListFavoritesUseCase) Execute(ctx context.Context, limit int) ([]domain.NoteRef, error) {
	if !uc.session.HasCredentials() {
		return nil, domain.ErrAuthenticationRequired
	}

	userID := uc.session.Identity()
	if userID == "" {
		userID = domain.IdentitySentinel
		log.GlobalWarn("no resolved account identifier, falling back to lazy profile path",
			"hint", "re-run login to resolve it")
	}

	return uc.extractor.Favorites(ctx, userID, clampLimit(limit))
}
