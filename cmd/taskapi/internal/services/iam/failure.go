package iam

import "fmt"

// FailureReason tags why a request could not be authenticated.
type FailureReason string

const (
	MissingHeader         FailureReason = "missing_header"
	MalformedHeader       FailureReason = "malformed_header"
	InvalidOrExpiredToken FailureReason = "invalid_or_expired_token"
	UserNotFound          FailureReason = "user_not_found"
)

// Message returns the client-facing reason string. These strings are part
// of the API contract.
func (r FailureReason) Message() string {
	switch r {
	case MissingHeader:
		return "Authorization header not found"
	case MalformedHeader:
		return "Invalid Authorization header format"
	case InvalidOrExpiredToken:
		return "Invalid or expired token"
	case UserNotFound:
		return "User not found"
	default:
		return "Authentication failed"
	}
}

// AuthFailure is an authentication-domain failure. The cause, when present,
// is kept for logging and is never shown to the client.
type AuthFailure struct {
	Reason FailureReason
	cause  error
}

// NewAuthFailure builds an AuthFailure for reason, optionally wrapping cause.
func NewAuthFailure(reason FailureReason, cause error) *AuthFailure {
	return &AuthFailure{Reason: reason, cause: cause}
}

func (f *AuthFailure) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %v", f.Reason.Message(), f.cause)
	}
	return f.Reason.Message()
}

func (f *AuthFailure) Unwrap() error {
	return f.cause
}

// Message is the client-facing reason string.
func (f *AuthFailure) Message() string {
	return f.Reason.Message()
}
