package sqlite

import (
	"context"
	"fmt"
	"time"
)

// RevokeToken records a jti as revoked.
// INSERT ... ON CONFLICT DO NOTHING делает операцию атомарной и идемпотентной:
// два параллельных logout с одним jti не конфликтуют.
func (s *Storage) RevokeToken(ctx context.Context, jti string, revokedAt time.Time) error {
	query := `
		INSERT INTO revoked_tokens (jti, revoked_at)
		VALUES (?, ?)
		ON CONFLICT (jti) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query, jti, revokedAt)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsTokenRevoked reports whether the jti has been revoked
func (s *Storage) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = ?)`

	var revoked bool
	if err := s.db.QueryRowContext(ctx, query, jti).Scan(&revoked); err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return revoked, nil
}
