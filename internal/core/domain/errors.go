package domain

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("access token is required")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Reason is the stable machine-readable cause of a policy denial.
type Reason string

const (
	ReasonNotSelf    Reason = "forbidden-not-self"
	ReasonRoleChange Reason = "forbidden-role-change"
	ReasonLastAdmin  Reason = "forbidden-last-admin"
	ReasonNotAdmin   Reason = "forbidden-not-admin"
)

// ForbiddenError is returned when the caller is authenticated but the
// requested operation is denied.
type ForbiddenError struct {
	Reason  Reason
	Message string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + string(e.Reason)
}

// ValidationError carries field-level messages in the "<field>: <message>" form.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

// Kind classifies every error the service can surface.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// KindOf maps err onto the closed set of kinds. Anything unrecognised is
// KindInternal.
func KindOf(err error) Kind {
	var ve *ValidationError
	var fe *ForbiddenError
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, ErrMissingToken), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrInvalidCredentials):
		return KindUnauthorized
	case errors.As(err, &fe):
		return KindForbidden
	case errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrEmailTaken):
		return KindConflict
	default:
		return KindInternal
	}
}
