package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the coordinator and by Directory implementations.
// Directory adapters map provider-specific rejections onto these so the core
// never branches on provider error types.
var (
	// ErrInvalidCode means the submitted code does not match the pending code,
	// the code was already consumed, or no code was ever issued for the phone.
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrSessionExpired means the opaque login session reference is stale or unknown.
	ErrSessionExpired = errors.New("login session expired")

	// ErrTooManyAttempts means the pending code burned through its attempt budget
	// and a new code must be requested.
	ErrTooManyAttempts = errors.New("too many incorrect attempts")

	// ErrNotAuthorized is the directory's generic credential rejection.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrUserNotFound means the directory has no record for the given key.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists means the directory already has a record for the given key.
	ErrUserExists = errors.New("user already exists")
)

// DirectoryError wraps a failed identity-directory call (transport or provider
// fault, not a credential rejection). Op names the directory operation.
type DirectoryError struct {
	Op  string
	Err error
}

func (e *DirectoryError) Error() string { return fmt.Sprintf("directory: %s: %v", e.Op, e.Err) }
func (e *DirectoryError) Unwrap() error { return e.Err }

// DeliveryError wraps a failed SMS dispatch.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("sms delivery: %v", e.Err) }
func (e *DeliveryError) Unwrap() error { return e.Err }
