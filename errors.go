package tenauth

import (
	"errors"
	"net/http"

	"github.com/tenauth/tenauth/jwt"
)

// Token verification failures are re-exported from the jwt package so that
// callers can match them without importing both packages. All four map to an
// unauthenticated response; the split exists for logging and tests, never for
// anything a token holder can observe.
var (
	// ErrTokenMalformed is an exported constant or variable used by the authentication core.
	ErrTokenMalformed = jwt.ErrMalformed
	// ErrTokenExpired is an exported constant or variable used by the authentication core.
	ErrTokenExpired = jwt.ErrExpired
	// ErrBadSignature is an exported constant or variable used by the authentication core.
	ErrBadSignature = jwt.ErrBadSignature
	// ErrBadIssuer is an exported constant or variable used by the authentication core.
	ErrBadIssuer = jwt.ErrBadIssuer
	// ErrSigningUnavailable is an exported constant or variable used by the authentication core.
	ErrSigningUnavailable = jwt.ErrSigningUnavailable
)

var (
	// ErrRevoked is an exported constant or variable used by the authentication core.
	// It covers both an already-rotated and an explicitly logged-out refresh
	// token; the two are indistinguishable to the caller.
	ErrRevoked = errors.New("refresh token revoked")
	// ErrForbidden is an exported constant or variable used by the authentication core.
	ErrForbidden = errors.New("You don't have enough permissions")
	// ErrStoreUnavailable is an exported constant or variable used by the authentication core.
	ErrStoreUnavailable = errors.New("refresh store unavailable")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication core.
	ErrInvalidCredentials = errors.New("Email or Password does not match")
	// ErrAccountExists is an exported constant or variable used by the authentication core.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountInvalid is an exported constant or variable used by the authentication core.
	ErrAccountInvalid = errors.New("invalid account request")
	// ErrRoleInvalid is an exported constant or variable used by the authentication core.
	ErrRoleInvalid = errors.New("invalid role")
	// ErrEngineNotReady is an exported constant or variable used by the authentication core.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// StatusForError maps a core failure to its HTTP-equivalent status. Every
// token-verification failure and revocation collapses to 401 so that a
// replaying caller cannot tell expiry, signature mismatch, and revocation
// apart. Infrastructure failures are 500-class and never silently swallowed.
func StatusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusNotFound
	case errors.Is(err, ErrAccountExists), errors.Is(err, ErrAccountInvalid), errors.Is(err, ErrRoleInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrSigningUnavailable), errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrEngineNotReady):
		return http.StatusInternalServerError
	case errors.Is(err, ErrTokenMalformed),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrBadSignature),
		errors.Is(err, ErrBadIssuer),
		errors.Is(err, ErrRevoked):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
