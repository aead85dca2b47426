package storage

import (
	"context"
	"time"
)

// RevocationStorage defines interface for the revoked-token registry.
// The registry is append-only: there is no delete path.
type RevocationStorage interface {
	// RevokeToken records a jti as revoked at the given time.
	// Idempotent: revoking an already-revoked jti is a no-op, not an error.
	// Once RevokeToken returns, IsTokenRevoked must observe the jti.
	RevokeToken(ctx context.Context, jti string, revokedAt time.Time) error

	// IsTokenRevoked reports whether the jti has been revoked
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}
