package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotLoggedIn        = errors.New("user is not logged in")
	ErrUnknownLoginState  = errors.New("unknown login state")
	ErrRoomNotFound       = errors.New("room not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrUnavailable        = errors.New("remote store unavailable")
	ErrInvalidAvatar      = errors.New("invalid avatar file")
	ErrInvalidInformation = errors.New("invalid information")
)

// Field validation errors. All of them wrap ErrValidation.
var (
	ErrValidation       = errors.New("validation failed")
	ErrFullNameTooShort = fmt.Errorf("%w: full name must be at least 3 characters", ErrValidation)
	ErrAddressEmpty     = fmt.Errorf("%w: address must not be empty", ErrValidation)
	ErrPhoneInvalid     = fmt.Errorf("%w: invalid phone number", ErrValidation)
)

// UnknownLoginStateError describes a login state no branch knows how to handle.
func UnknownLoginStateError(state LoginState) error {
	return fmt.Errorf("%w: %T", ErrUnknownLoginState, state)
}

// RemoteOperationError carries the opaque cause returned by a remote store.
type RemoteOperationError struct {
	Op    string
	Cause error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *RemoteOperationError) Unwrap() error {
	return e.Cause
}

func NewRemoteOperationError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	var remote *RemoteOperationError
	if errors.As(cause, &remote) {
		return cause
	}
	return &RemoteOperationError{Op: op, Cause: cause}
}

type UpdateErrorKind string

const (
	UpdateErrorNotLoggedIn      UpdateErrorKind = "not_logged_in"
	UpdateErrorTimeout          UpdateErrorKind = "timeout"
	UpdateErrorUnavailable      UpdateErrorKind = "unavailable"
	UpdateErrorPermissionDenied UpdateErrorKind = "permission_denied"
	UpdateErrorNotFound         UpdateErrorKind = "not_found"
	UpdateErrorInvalidAvatar    UpdateErrorKind = "invalid_avatar"
	UpdateErrorInvalidInput     UpdateErrorKind = "invalid_input"
	UpdateErrorUnknown          UpdateErrorKind = "unknown"
)

// ClassifyUpdateError maps a profile update failure onto a kind the client can
// render. Adapters are expected to wrap driver errors with the sentinels above.
func ClassifyUpdateError(err error) UpdateErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotLoggedIn):
		return UpdateErrorNotLoggedIn
	case errors.Is(err, context.DeadlineExceeded):
		return UpdateErrorTimeout
	case errors.Is(err, ErrUnavailable):
		return UpdateErrorUnavailable
	case errors.Is(err, ErrPermissionDenied):
		return UpdateErrorPermissionDenied
	case errors.Is(err, ErrUserNotFound):
		return UpdateErrorNotFound
	case errors.Is(err, ErrInvalidAvatar):
		return UpdateErrorInvalidAvatar
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidUserID):
		return UpdateErrorInvalidInput
	default:
		return UpdateErrorUnknown
	}
}
