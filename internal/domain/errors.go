package domain

import "errors"

var (
	// ErrAuthenticationRequired is returned when an operation needs a
	// valid session and none exists. Callers surface it, never retry it.
	ErrAuthenticationRequired = errors.New("not logged in: run login first")

	// ErrPageUnavailable is returned when the expected list container
	// never rendered. Distinct from an empty result: a rendered
	// container with zero matches is a legitimate empty list.
	ErrPageUnavailable = errors.New("page content never rendered")

	// ErrNoteIDNotFound is returned when no extraction strategy could
	// recover a note ID from a detail page.
	ErrNoteIDNotFound = errors.New("note id not found on page")

	// ErrInvalidNoteURL is returned when a note URL cannot be parsed.
	ErrInvalidNoteURL = errors.New("invalid note URL format")

	// ErrNavigationFailed is returned when the browser could not load a
	// page within its deadline.
	ErrNavigationFailed = errors.New("page navigation failed")
)
