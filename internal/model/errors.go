package model

import "errors"

var (
	// ErrValidationRejected marks local input that failed a precondition.
	ErrValidationRejected = errors.New("validation rejected")
	// ErrRemoteReadFailed marks a failed subscription or fetch.
	ErrRemoteReadFailed = errors.New("remote read failed")
	// ErrRemoteWriteFailed marks a failed create, update or delete.
	ErrRemoteWriteFailed = errors.New("remote write failed")
	// ErrPartialSuccess marks a multi-step operation that failed after
	// completing some steps.
	ErrPartialSuccess = errors.New("partial success")

	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidPath       = errors.New("invalid document path")
	ErrUnsupported       = errors.New("operation not supported")
	ErrInvalidCredential = errors.New("invalid credentials")
)

// Notice is a transient, non-blocking user-facing message.
type Notice struct {
	Message string
}
