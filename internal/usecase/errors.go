package usecase

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError blocks an operation locally; it never produces a remote
// call and never touches the cache.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// RemoteRejectionError means the remote store answered with success=false
// and a reason string.
type RemoteRejectionError struct {
	Op     string
	Reason string
}

func (e *RemoteRejectionError) Error() string {
	return e.Reason
}

func IsRemoteRejection(err error) bool {
	var r *RemoteRejectionError
	return errors.As(err, &r)
}

// TransportError means the call itself failed before a verdict came back.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

// NotFoundError means the operation referenced an id absent from the active
// set (never existed, or already converted).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsEmailRejection reports whether a remote failure called out the email
// field. That distinction decides whether a failed commit hands the session
// back for correction or closes it with a generic failure.
func IsEmailRejection(err error) bool {
	var r *RemoteRejectionError
	if errors.As(err, &r) {
		return strings.Contains(strings.ToLower(r.Reason), "email")
	}
	return false
}
