package usecases

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
)

// mockSession is a hand-written SessionController stub.
type mockSession struct {
	hasCredentials bool
	identity       string
	status         domain.LoginStatus
	loginResult    domain.LoginResult
}

func (m *mockSession) Check(ctx context.Context) (domain.LoginStatus, error) {
	return m.status, nil
}

func (m *mockSession) Login(ctx context.Context, timeout time.Duration) (domain.LoginResult, error) {
	return m.loginResult, nil
}

func (m *mockSession) HasCredentials() bool { return m.hasCredentials }
func (m *mockSession) Identity() string     { return m.identity }

// mockExtractor records calls and serves canned refs and notes.
type mockExtractor struct {
	refs         []domain.NoteRef
	listErr      error
	failDetailAt map[string]bool

	favoritesUser string
	searchSort    domain.SortMode
	searchLimit   int
	detailCalls   []string
}

func (m *mockExtractor) Favorites(ctx context.Context, userID string, limit int) ([]domain.NoteRef, error) {
	m.favoritesUser = userID
	return m.refs, m.listErr
}

func (m *mockExtractor) Search(ctx context.Context, keyword string, limit int, sort domain.SortMode) ([]domain.NoteRef, error) {
	m.searchSort = sort
	m.searchLimit = limit
	return m.refs, m.listErr
}

func (m *mockExtractor) Detail(ctx context.Context, noteURL string) (*domain.Note, error) {
	m.detailCalls = append(m.detailCalls, noteURL)
	if m.failDetailAt[noteURL] {
		return nil, fmt.Errorf("%w: note detail", domain.ErrPageUnavailable)
	}
	return &domain.Note{
		NoteID:    "note-" + noteURL,
		URL:       noteURL,
		Title:     "stub",
		MediaURLs: []string{noteURL + "/img1", noteURL + "/img2"},
	}, nil
}

// mockMedia returns one empty image per URL and records the options.
type mockMedia struct {
	calls    int
	lastOpts domain.MediaOptions
}

func (m *mockMedia) Acquire(ctx context.Context, urls []string, opts domain.MediaOptions) []domain.Image {
	m.calls++
	m.lastOpts = opts
	images := make([]domain.Image, len(urls))
	for i, u := range urls {
		images[i] = domain.Image{SourceURL: u}
	}
	return images
}

// mockPacer counts pauses instead of sleeping.
type mockPacer struct {
	pauses int
	err    error
}

func (m *mockPacer) Pause(ctx context.Context) error {
	m.pauses++
	return m.err
}

func refsFor(urls ...string) []domain.NoteRef {
	refs := make([]domain.NoteRef, len(urls))
	for i, u := range urls {
		refs[i] = domain.NoteRef{NoteID: fmt.Sprintf("%024d", i), URL: u}
	}
	return refs
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-5, defaultListLimit},
		{0, defaultListLimit},
		{1, 1},
		{25, 25},
		{50, 50},
		{51, maxListLimit},
		{500, maxListLimit},
	}

	for _, tc := range cases {
		if got := clampLimit(tc.in); got != tc.want {
			t.Errorf("clampLimit(%d): got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSearch_WithoutCredentials_ReturnsTypedError(t *testing.T) {
	// Arrange
	uc := NewSearchUseCase(&mockSession{hasCredentials: false}, &mockExtractor{})

	// Act
	_, err := uc.Execute(context.Background(), "coffee", 10, domain.SortGeneral)

	// Assert
	if !errors.Is(err, domain.ErrAuthenticationRequired) {
		t.Errorf("got %v, want ErrAuthenticationRequired", err)
	}
}

func TestSearch_ClampsLimitAndKeepsKeyword(t *testing.T) {
	// Arrange
	extractor := &mockExtractor{refs: refsFor("https://www.xiaohongshu.com/explore/a")}
	uc := NewSearchUseCase(&mockSession{hasCredentials: true}, extractor)

	// Act
	result, err := uc.Execute(context.Background(), "coffee", 999, domain.SortLatest)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extractor.searchLimit != maxListLimit {
		t.Errorf("limit passed to extractor: got %d, want %d", extractor.searchLimit, maxListLimit)
	}
	if extractor.searchSort != domain.SortLatest {
		t.Errorf("sort passed to extractor: got %q", extractor.searchSort)
	}
	if result.Keyword != "coffee" || len(result.Results) != 1 {
		t.Errorf("result: got keyword=%q n=%d", result.Keyword, len(result.Results))
	}
}

func TestListFavorites_NoIdentity_FallsBackToSentinel(t *testing.T) {
	// Arrange
	extractor := &mockExtractor{}
	uc := NewListFavoritesUseCase(&mockSession{hasCredentials: true, identity: ""}, extractor)

	// Act
	_, err := uc.Execute(context.Background(), 10)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extractor.favoritesUser != domain.IdentitySentinel {
		t.Errorf("profile path user: got %q, want %q", extractor.favoritesUser, domain.IdentitySentinel)
	}
}

func TestListFavorites_ResolvedIdentity_Used(t *testing.T) {
	// Arrange
	extractor := &mockExtractor{}
	uc := NewListFavoritesUseCase(&mockSession{hasCredentials: true, identity: "5f1a2b3c4d"}, extractor)

	// Act
	_, err := uc.Execute(context.Background(), 10)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extractor.favoritesUser != "5f1a2b3c4d" {
		t.Errorf("profile path user: got %q, want resolved identifier", extractor.favoritesUser)
	}
}

func TestFetchNote_WithMedia_AttachesImages(t *testing.T) {
	// Arrange
	media := &mockMedia{}
	uc := NewFetchNoteUseCase(&mockSession{hasCredentials: true}, &mockExtractor{}, media)
	opts := domain.MediaOptions{Transform: true, MaxDimension: 1280, Quality: 80}

	// Act
	note, err := uc.Execute(context.Background(), "https://www.xiaohongshu.com/explore/x", true, opts)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(note.Images) != 2 {
		t.Errorf("got %d images, want 2", len(note.Images))
	}
	if media.lastOpts != opts {
		t.Errorf("media options: got %+v, want %+v", media.lastOpts, opts)
	}
}

func TestFetchNote_WithoutMedia_SkipsAcquirer(t *testing.T) {
	// Arrange
	media := &mockMedia{}
	uc := NewFetchNoteUseCase(&mockSession{hasCredentials: true}, &mockExtractor{}, media)

	// Act
	note, err := uc.Execute(context.Background(), "https://www.xiaohongshu.com/explore/x", false, domain.MediaOptions{})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if media.calls != 0 {
		t.Errorf("acquirer called %d times, want 0", media.calls)
	}
	if len(note.Images) != 0 {
		t.Errorf("got %d images, want none", len(note.Images))
	}
}

func TestFetchImages_FetchesOriginals(t *testing.T) {
	// Arrange
	media := &mockMedia{lastOpts: domain.MediaOptions{Transform: true}}
	uc := NewFetchImagesUseCase(&mockSession{hasCredentials: true}, &mockExtractor{}, media)

	// Act
	images, err := uc.Execute(context.Background(), "https://www.xiaohongshu.com/explore/x")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 2 {
		t.Errorf("got %d images, want 2", len(images))
	}
	if media.lastOpts.Transform {
		t.Error("expected originals fetched without the transform")
	}
}

func TestBatchFromURLs_PartialFailure_AccountsForEveryItem(t *testing.T) {
	// Arrange
	urls := []string{"u0", "u1", "u2", "u3", "u4"}
	extractor := &mockExtractor{failDetailAt: map[string]bool{"u1": true, "u3": true}}
	pacer := &mockPacer{}
	uc := NewBatchNotesUseCase(&mockSession{hasCredentials: true}, extractor, &mockMedia{}, pacer)

	// Act
	result, err := uc.FromURLs(context.Background(), urls, false, domain.MediaOptions{})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SuccessCount != 3 || result.FailedCount != 2 {
		t.Errorf("counts: got %d/%d, want 3/2", result.SuccessCount, result.FailedCount)
	}
	if result.SuccessCount+result.FailedCount != len(urls) {
		t.Errorf("accounting: %d+%d != %d", result.SuccessCount, result.FailedCount, len(urls))
	}
	if len(result.Failures) != 2 {
		t.Fatalf("got %d failure records, want 2", len(result.Failures))
	}
	if result.Failures[0].URL != "u1" || result.Failures[1].URL != "u3" {
		t.Errorf("failure urls: got %q, %q", result.Failures[0].URL, result.Failures[1].URL)
	}
	if len(extractor.detailCalls) != len(urls) {
		t.Errorf("detail visited %d items, want all %d", len(extractor.detailCalls), len(urls))
	}
}

func TestBatchFromURLs_PausesBetweenItemsNotAfterLast(t *testing.T) {
	// Arrange
	urls := []string{"u0", "u1", "u2"}
	pacer := &mockPacer{}
	uc := NewBatchNotesUseCase(&mockSession{hasCredentials: true}, &mockExtractor{}, &mockMedia{}, pacer)

	// Act
	if _, err := uc.FromURLs(context.Background(), urls, false, domain.MediaOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Assert
	if pacer.pauses != len(urls)-1 {
		t.Errorf("got %d pauses, want %d", pacer.pauses, len(urls)-1)
	}
}

func TestBatchFromFavorites_EmptyList_IsValidEmptyResult(t *testing.T) {
	// Arrange
	uc := NewBatchNotesUseCase(&mockSession{hasCredentials: true}, &mockExtractor{refs: nil}, &mockMedia{}, &mockPacer{})

	// Act
	result, err := uc.FromFavorites(context.Background(), 10, false, domain.MediaOptions{})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SuccessCount != 0 || result.FailedCount != 0 || len(result.Notes) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestBatchFromFavorites_WithoutCredentials_ReturnsTypedError(t *testing.T) {
	// Arrange
	uc := NewBatchNotesUseCase(&mockSession{hasCredentials: false}, &mockExtractor{}, &mockMedia{}, &mockPacer{})

	// Act
	_, err := uc.FromFavorites(context.Background(), 10, false, domain.MediaOptions{})

	// Assert
	if !errors.Is(err, domain.ErrAuthenticationRequired) {
		t.Errorf("got %v, want ErrAuthenticationRequired", err)
	}
}

func TestBatchFromURLs_CancelledPause_StopsEarly(t *testing.T) {
	// Arrange
	pacer := &mockPacer{err: context.Canceled}
	extractor := &mockExtractor{}
	uc := NewBatchNotesUseCase(&mockSession{hasCredentials: true}, extractor, &mockMedia{}, pacer)

	// Act
	result, err := uc.FromURLs(context.Background(), []string{"u0", "u1", "u2"}, false, domain.MediaOptions{})

	// Assert
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if result.SuccessCount != 1 {
		t.Errorf("got %d completed items before the stop, want 1", result.SuccessCount)
	}
}
