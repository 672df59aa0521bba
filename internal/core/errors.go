package core

import "errors"

// Domain error taxonomy. The REST gateway maps these to status codes;
// socket-side validation failures are silent drops and surface nothing.
var (
	// ErrForbidden means the caller is authenticated but is not a
	// participant of the room it addressed.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput means a malformed room identifier, an empty
	// message body, or a self-pair room.
	ErrInvalidInput = errors.New("invalid input")
)
