package usecases

import (
	"context"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
)

// FetchImagesUseCase returns a note's media payloads untransformed, for
// callers that want the original bytes.
type FetchImagesUseCase struct {
	session   SessionController
	extractor Extractor
	media     MediaAcquirer
}

func NewFetchImagesUseCase(session SessionController, extractor Extractor, media MediaAcquirer) *FetchImagesUseCase {
	return &FetchImagesUseCase{session: session, extractor: extractor, media: media}
}

// Execute extracts the media URLs from the note's detail page and
// fetches each one as-is.
func (uc *FetchImagesUseCase) Execute(ctx context.Context, noteURL string) ([]domain.Image, error) {
	if !uc.session.HasCredentials() {
		return nil, domain.ErrAuthenticationRequired
	}

	note, err := uc.extractor.Detail(ctx, noteURL)
	if err != nil {
		return nil, err
	}

	return uc.media.Acquire(ctx, note.MediaURLs, domain.MediaOptions{Transform: false}), nil
}
