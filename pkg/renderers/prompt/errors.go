package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// errInvalidAnswer marks an answer rejected before it reaches the form.
	errInvalidAnswer = errors.New("prompt: invalid answer")
)
