package service

import "errors"

// Kind classifies a service error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConfiguration
)

// Error is an expected failure with a caller-safe message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

var (
	ErrUserExists         = newError(KindValidation, "user already exists")
	ErrPasswordMismatch   = newError(KindValidation, "passwords do not match")
	ErrInvalidCredentials = newError(KindAuthentication, "invalid credentials")
	ErrAccountInactive    = newError(KindAuthentication, "account is not active")
	ErrEmailNotVerified   = newError(KindAuthentication, "email not verified")
	// ErrInvalidToken hides whether a token was expired, tampered with,
	// of the wrong type or revoked.
	ErrInvalidToken          = newError(KindAuthentication, "invalid token")
	ErrMissingRefreshToken   = newError(KindAuthentication, "no refresh token provided")
	ErrInvalidOrExpiredToken = newError(KindValidation, "invalid or expired token")
	ErrUserNotFound          = newError(KindNotFound, "user not found")
	ErrRoleNotFound          = newError(KindNotFound, "role not found")
	ErrObjectNotFound        = newError(KindNotFound, "business object not found")
	ErrRoleNotAssigned       = newError(KindNotFound, "role not assigned to user")
	ErrDefaultRoleMissing    = newError(KindConfiguration, "default role 'user' not found")
	ErrPermissionDenied      = newError(KindAuthorization, "insufficient permissions")
)

// KindOf returns the kind of err, or KindInternal for anything that is not
// a service Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
