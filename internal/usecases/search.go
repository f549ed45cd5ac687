package usecases

import (
	"context"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
)

const (
	maxListLimit     = 50
	defaultListLimit = 10
)

// clampLimit folds any requested count into the supported range instead
// of rejecting the request.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}

// SearchUseCase runs a keyword search and returns lightweight refs.
type SearchUseCase struct {
	session   SessionController
	extractor Extractor
}

func NewSearchUseCase(session SessionController, extractor Extractor) *SearchUseCase {
	return &SearchUseCase{session: session, extractor: extractor}
}

// Execute searches for keyword. Search pages require an authenticated
// session; without stored credentials the platform serves a login wall
// instead of results.
func (uc *SearchUseCase) Execute(ctx context.Context, keyword string, limit int, sort domain.SortMode) (domain.SearchResult, error) {
	if !uc.session.HasCredentials() {
		return domain.SearchResult{}, domain.ErrAuthenticationRequired
	}

	refs, err := uc.extractor.Search(ctx, keyword, clampLimit(limit), sort)
	if err != nil {
		return domain.SearchResult{}, err
	}
	return domain.SearchResult{Keyword: keyword, Results: refs}, nil
}
