package errors

import "errors"

// Recoverable user errors: the bot re-prompts and session state is unchanged.
var (
	ErrInvalidLink    = errors.New("not a valid video link")
	ErrNotVideo       = errors.New("object is not a video")
	ErrLimitExceeded  = errors.New("selection limit exceeded")
	ErrEmptySelection = errors.New("no files selected")

	ErrNoActiveSession = errors.New("no active session")
	ErrInvalidState    = errors.New("operation not valid in current session state")

	ErrSettingsNotFound = errors.New("settings not found")
	ErrTaskNotFound     = errors.New("task not found")
)
