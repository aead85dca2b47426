package auth

import "errors"

// Flow outcomes surfaced to handlers. Authentication failures are
// terminal for the attempt: there are no retry semantics.
var (
	// ErrInvalidCredentials merges wrong password and unknown email into
	// one outcome so responses cannot be used for account enumeration
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a malformed, expired or wrongly signed token
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenRevoked indicates a structurally valid token whose jti was revoked
	ErrTokenRevoked = errors.New("token has been revoked")

	// ErrUserInactive indicates the token subject exists but is deactivated
	ErrUserInactive = errors.New("user is inactive")

	// ErrInvalidTwoFactorCode indicates a wrong or stale TOTP code
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")

	// ErrTwoFactorNotConfigured indicates a 2FA operation against an
	// account that has no two-factor protection enabled
	ErrTwoFactorNotConfigured = errors.New("two-factor authentication is not enabled")

	// ErrPasswordPolicy indicates a password rejected by the registration policy
	ErrPasswordPolicy = errors.New("password does not meet policy requirements")

	// ErrDuplicateEmail indicates a registration attempt with a taken email
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidEmail indicates a syntactically invalid email at registration
	ErrInvalidEmail = errors.New("invalid email address")
)
