package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrTooManyAttempts is returned when an answer keeps failing
	// validation.
	ErrTooManyAttempts = errors.New("prompt: too many invalid answers")
)
