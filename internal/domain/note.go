// Package domain contains the core business entities and rules.
package domain

// NoteRef is a lightweight pointer to a note obtained from a list page
// (favorites or search). It is not yet hydrated with full content.
type NoteRef struct {
	NoteID string `json:"note_id"`
	URL    string `json:"url"`
	// XsecToken is the short-lived access token the platform requires on
	// detail pages. Refs without it still work sometimes; callers must
	// tolerate degraded access.
	XsecToken  string `json:"xsec_token,omitempty"`
	XsecSource string `json:"xsec_source,omitempty"`
	Title      string `json:"title,omitempty"`
	CoverURL   string `json:"cover_url,omitempty"`
	// Author is always serialized; omitempty never elides struct
	// values, so an unresolved author appears as an empty object.
	Author Author `json:"author"`
}

// Usable reports whether the ref carries enough to be fetched.
// A ref missing either the ID or the URL is dropped, never partially used.
func (r NoteRef) Usable() bool {
	return r.NoteID != "" && r.URL != ""
}

// Author identifies a note's author.
type Author struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Metrics holds the engagement counters of a note.
// Absent values default to 0, never null.
type Metrics struct {
	Likes    int `json:"likes"`
	Collects int `json:"collects"`
	Comments int `json:"comments"`
}

// Note is a fully hydrated note obtained from a detail page.
// Immutable once returned by the extractor.
type Note struct {
	NoteID      string   `json:"note_id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Author      Author   `json:"author"`
	Tags        []string `json:"tags,omitempty"`
	Metrics     Metrics  `json:"metrics"`
	Images      []Image  `json:"images,omitempty"`
	MediaURLs   []string `json:"media_urls,omitempty"`
	PublishTime string   `json:"publish_time,omitempty"`
}

// Image is one fetched (and possibly transformed) media payload.
type Image struct {
	SourceURL string `json:"source_url"`
	Bytes     []byte `json:"-"`
	Size      int    `json:"size"`
	MimeType  string `json:"mime_type"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	// OriginalSize and CompressionRatio are recorded only for
	// transformed images. Ratio is 1 - size/originalSize.
	OriginalSize     int     `json:"original_size,omitempty"`
	CompressionRatio float64 `json:"compression_ratio,omitempty"`
}

// MediaOptions controls the optional transform step applied to fetched
// media payloads.
type MediaOptions struct {
	Transform    bool
	MaxDimension int
	Quality      int
}

// BatchFailure records one reference that failed during a batch run.
type BatchFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// BatchResult aggregates a best-effort batch fetch. Partial success is
// never discarded: N references with M failures still yield N-M notes.
type BatchResult struct {
	SuccessCount int            `json:"success_count"`
	FailedCount  int            `json:"failed_count"`
	Notes        []Note         `json:"notes"`
	Failures     []BatchFailure `json:"failures"`
}

// SearchResult is the outcome of a keyword search.
type SearchResult struct {
	Keyword string    `json:"keyword"`
	Results []NoteRef `json:"results"`
}

// SortMode selects the ordering of search results.
type SortMode string

const (
	SortGeneral SortMode = "general"
	SortPopular SortMode = "popular"
	SortLatest  SortMode = "latest"
)

// LoginStatus is the outcome of a session probe.
type LoginStatus struct {
	LoggedIn bool   `json:"logged_in"`
	Message  string `json:"message"`
}

// LoginResult is the reported outcome of an interactive login.
// A timeout is a result, not an error.
type LoginResult struct {
	Authenticated    bool     `json:"authenticated"`
	IdentityResolved bool     `json:"identity_resolved"`
	TimedOut         bool     `json:"timed_out"`
	Warnings         []string `json:"warnings,omitempty"`
}

// IdentitySentinel is the literal value meaning "resolve lazily";
// it must never be persisted as a real identifier.
const IdentitySentinel = "me"

// IdentityMinLen guards persisted identifiers against garbage writes.
const IdentityMinLen = 6

// ValidIdentity reports whether id may be persisted as a resolved
// account identifier.
func ValidIdentity(id string) bool {
	return id != "" && id != IdentitySentinel && len(id) >= IdentityMinLen
}
