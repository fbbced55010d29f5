// Package revocation records tokens that must no longer be honored, keyed by
// the raw token string, until their natural expiry. Entries self-expire; the
// store never needs a sweep.
package revocation

import (
	"context"
	"time"
)

// Store is the blacklist consulted and written by the auth service.
type Store interface {
	// IsRevoked reports whether the token has a live revocation entry.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// Revoke marks the token revoked until expiresAt. A token that is
	// already past its expiry is not recorded; it is dead anyway.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error

	// TryRevoke atomically marks the token revoked and reports whether this
	// call was the one that did it. A false return means the token was
	// already revoked. Refresh rotation depends on this being a single
	// check-and-set; a separate read-then-write would race between
	// concurrent refreshes of the same token.
	TryRevoke(ctx context.Context, token string, expiresAt time.Time) (bool, error)
}
