package service

import (
	"errors"

	"github.com/dtroode/themekeeper/internal/model"
)

// User-facing messages for remote outcomes.
const (
	MsgThemesLoadFailed  = "Failed to load themes"
	MsgThemeDeleteFailed = "Failed to delete theme"
	MsgThemeSaveFailed   = "Failed to save theme"
	MsgThemeDeleted      = "Theme and tests deleted"
	MsgThemeSaved        = "Theme saved"
	MsgThemeNotFound     = "Theme not found"
	MsgUsersLoadFailed   = "Failed to load users"
	MsgUserCreateFailed  = "Failed to create user"
	MsgProfileFailed     = "Failed to update profile"
	MsgUserSaveFailed    = "Failed to save user data"
	MsgUserCreated       = "User created"
	MsgUserNotFound      = "User not found"
)

// OperationError is a failed remote call together with the message shown
// to the administrator.
type OperationError struct {
	// Kind is model.ErrRemoteReadFailed, model.ErrRemoteWriteFailed or
	// model.ErrNotFound.
	Kind    error
	Message string
	Err     error
	// ShowCause appends the underlying error to the notice.
	ShowCause bool
}

func (e *OperationError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func readFailed(message string, err error) error {
	return &OperationError{Kind: model.ErrRemoteReadFailed, Message: message, Err: err}
}

func writeFailed(message string, err error) error {
	return &OperationError{Kind: model.ErrRemoteWriteFailed, Message: message, Err: err}
}

func notFound(message string, err error) error {
	return &OperationError{Kind: model.ErrNotFound, Message: message, Err: err}
}

// NoticeFor converts an error returned by the managers into the transient
// notification shown to the administrator.
func NoticeFor(err error) model.Notice {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return model.Notice{Message: validationErr.Reason.Message()}
	}

	var sagaErr *SagaError
	if errors.As(err, &sagaErr) {
		return model.Notice{Message: sagaErr.Message}
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		if opErr.ShowCause {
			return model.Notice{Message: opErr.Message + ": " + opErr.Err.Error()}
		}
		return model.Notice{Message: opErr.Message}
	}

	return model.Notice{Message: "Something went wrong"}
}
