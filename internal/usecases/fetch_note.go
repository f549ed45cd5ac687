package usecases

import (
	"context"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
	"github.com/CopeeeTang/rednote-mind-mcp/pkg/log"
)

// FetchNoteUseCase hydrates one note from its detail page, optionally
// acquiring its media.
type FetchNoteUseCase struct {
	session   SessionController
	extractor Extractor
	media     MediaAcquirer
}

func NewFetchNoteUseCase(session SessionController, extractor Extractor, media MediaAcquirer) *FetchNoteUseCase {
	return &FetchNoteUseCase{session: session, extractor: extractor, media: media}
}

// Execute fetches the note behind noteURL. With withMedia set, every
// media URL found on the page is fetched and attached; media failures
// degrade the result instead of failing it.
func (uc *FetchNoteUseCase) Execute(ctx context.Context, noteURL string, withMedia bool, opts domain.MediaOptions) (*domain.Note, error) {
	if !uc.session.HasCredentials() {
		return nil, domain.ErrAuthenticationRequired
	}

	note, err := uc.extractor.Detail(ctx, noteURL)
	if err != nil {
		return nil, err
	}

	if withMedia && len(note.MediaURLs) > 0 {
		note.Images = uc.media.Acquire(ctx, note.MediaURLs, opts)
		log.GlobalDebug("note media attached", "note", note.NoteID, "images", len(note.Images))
	}
	return note, nil
}
