package auth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes let callers branch on an outcome without matching messages.
const (
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
	TextCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	TextCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	TextCodeInvalidSessionToken = "INVALID_SESSION_TOKEN"
	TextCodeInvalidResetToken   = "INVALID_RESET_TOKEN"
	TextCodeUnknownEmail        = "UNKNOWN_EMAIL"
	TextCodeInvalidField        = "INVALID_FIELD"
	TextCodeInvalidUser         = "INVALID_USER"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// ErrNoEmptyString rejects empty passwords before they reach the hasher
var ErrNoEmptyString = goerrors.New("password cannot be an empty string", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrMismatchedHashAndPassword is the single credential failure reported to
// callers; a missing account and a wrong password are indistinguishable.
var ErrMismatchedHashAndPassword = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials)

// ErrDuplicateEmail reports a registration against an already used email
var ErrDuplicateEmail = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail)

// ErrInvalidSessionToken covers unknown, destroyed, and expired session tokens
var ErrInvalidSessionToken = goerrors.New("session token is unknown or expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidSessionToken)

// ErrInvalidResetToken covers unknown and already redeemed reset tokens
var ErrInvalidResetToken = goerrors.New("reset token is invalid or already used", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidResetToken)

// ErrUnknownEmail reports a password reset request for an unregistered email
var ErrUnknownEmail = goerrors.New("no user registered for this email", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUnknownEmail)

// ErrInvalidField reports a store lookup or update outside the closed
// credential field set.
var ErrInvalidField = goerrors.New("unknown credential field", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidField)

// ErrInvalidUser reports a session operation against an empty user id
var ErrInvalidUser = goerrors.New("invalid user id", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidUser)

// HasTextCode checks whether err or any of its causes carries the given
// text code.
func HasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	for goerrors.As(err, &rich) {
		if rich.TextCode == code {
			return true
		}
		err = rich.Source
	}
	return false
}

// IsDuplicateEmailError will check for duplicate registrations
func IsDuplicateEmailError(err error) bool {
	return HasTextCode(err, TextCodeDuplicateEmail)
}

// IsInvalidCredentialsError will check for failed password verification
func IsInvalidCredentialsError(err error) bool {
	return HasTextCode(err, TextCodeInvalidCredentials)
}

// IsInvalidTokenError matches both session and reset token failures
func IsInvalidTokenError(err error) bool {
	return HasTextCode(err, TextCodeInvalidSessionToken) ||
		HasTextCode(err, TextCodeInvalidResetToken)
}

// IsUnknownEmailError will check for reset requests against missing accounts
func IsUnknownEmailError(err error) bool {
	return HasTextCode(err, TextCodeUnknownEmail)
}
