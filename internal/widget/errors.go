package widget

import "errors"

var (
	// ErrBusy indicates a lookup is already outstanding.
	ErrBusy = errors.New("a lookup is already in progress")

	// ErrInvalidTransition indicates an operation not allowed in the current status.
	ErrInvalidTransition = errors.New("invalid widget transition")
)
