// Package common defines shared sentinel errors used across authd components.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrDuplicateIdentity is returned when registration collides with an
	// existing email, or when the store reports a uniqueness violation.
	ErrDuplicateIdentity = errors.New("identity already exists")

	// ErrInvalidCredentials covers both unknown-email and wrong-password
	// logins. The two cases are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenRevoked        = errors.New("token revoked")

	// ErrStoreUnavailable wraps transport failures talking to Postgres or
	// Redis. It is never masked as an auth failure.
	ErrStoreUnavailable = errors.New("store unavailable")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
)
