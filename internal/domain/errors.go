package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("no %s found with that ID", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Msg != "" && e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError signals a unique-constraint violation (duplicate key).
type ConflictError struct {
	Field string
	Value string
	Err   error
}

func (e ConflictError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("duplicate %q value entered: %q", e.Field, e.Value)
	}
	return "duplicate value"
}

func (e ConflictError) Unwrap() error { return e.Err }

// UnauthorizedError covers missing, invalid and expired credentials.
type UnauthorizedError struct {
	Msg string
	Err error
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "you are not logged in"
}

func (e UnauthorizedError) Unwrap() error { return e.Err }

// ForbiddenError: valid credential, insufficient role.
type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "you do not have permission to perform this action"
}

// UpstreamError wraps failures from external collaborators (payment, email).
type UpstreamError struct {
	Provider string
	Err      error
}

func (e UpstreamError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s request failed", e.Provider)
	}
	return "upstream request failed"
}

func (e UpstreamError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target UpstreamError
	return errors.As(err, &target)
}

// IsOperational reports whether err is an anticipated, explicitly signaled
// failure. Anything else is treated as a defect and never leaks details to
// production clients.
func IsOperational(err error) bool {
	return IsNotFound(err) || IsValidation(err) || IsConflict(err) ||
		IsUnauthorized(err) || IsForbidden(err) || IsUpstream(err)
}
