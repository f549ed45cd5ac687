package usecases

import (
	"context"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
	"github.com/CopeeeTang/rednote-mind-mcp/pkg/log"
)

// BatchNotesUseCase fetches a set of notes sequentially, pacing between
// items and collecting per-item failures without aborting the run.
type BatchNotesUseCase struct {
	session   SessionController
	extractor Extractor
	media     MediaAcquirer
	pacer     Pacer
}

func NewBatchNotesUseCase(session SessionController, extractor Extractor, media MediaAcquirer, pacer Pacer) *BatchNotesUseCase {
	return &BatchNotesUseCase{session: session, extractor: extractor, media: media, pacer: pacer}
}

// FromFavorites lists up to limit favorites and hydrates each one. An
// empty favorites list is a valid empty result, not an error.
func (uc *BatchNotesUseCase) FromFavorites(ctx context.Context, limit int, withMedia bool, opts domain.MediaOptions) (domain.BatchResult, error) {
	if !uc.session.HasCredentials() {
		return domain.BatchResult{}, domain.ErrAuthenticationRequired
	}

	userID := uc.session.Identity()
	if userID == "" {
		userID = domain.IdentitySentinel
	}

	refs, err := uc.extractor.Favorites(ctx, userID, clampLimit(limit))
	if err != nil {
		return domain.BatchResult{}, err
	}

	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		urls = append(urls, ref.URL)
	}
	return uc.fetchAll(ctx, urls, withMedia, opts)
}

// FromURLs hydrates each of the given note URLs.
func (uc *BatchNotesUseCase) FromURLs(ctx context.Context, urls []string, withMedia bool, opts domain.MediaOptions) (domain.BatchResult, error) {
	if !uc.session.HasCredentials() {
		return domain.BatchResult{}, domain.ErrAuthenticationRequired
	}
	return uc.fetchAll(ctx, urls, withMedia, opts)
}

// fetchAll visits each URL strictly in order, one tab at a time, with a
// pacer pause between consecutive items. Every input URL is accounted
// for: SuccessCount+FailedCount always equals len(urls).
func (uc *BatchNotesUseCase) fetchAll(ctx context.Context, urls []string, withMedia bool, opts domain.MediaOptions) (domain.BatchResult, error) {
	result := domain.BatchResult{
		Notes:    make([]domain.Note, 0, len(urls)),
		Failures: make([]domain.BatchFailure, 0),
	}

	for i, noteURL := range urls {
		if i > 0 {
			if err := uc.pacer.Pause(ctx); err != nil {
				return result, err
			}
		}

		note, err := uc.extractor.Detail(ctx, noteURL)
		if err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, domain.BatchFailure{URL: noteURL, Error: err.Error()})
			log.GlobalWarn("batch item failed", "url", noteURL, "error", err)
			continue
		}

		if withMedia && len(note.MediaURLs) > 0 {
			note.Images = uc.media.Acquire(ctx, note.MediaURLs, opts)
		}

		result.SuccessCount++
		result.Notes = append(result.Notes, *note)
	}

	log.GlobalInfo("batch complete", "requested", len(urls),
		"succeeded", result.SuccessCount, "failed", result.FailedCount)
	return result, nil
}
