// Package token issues and verifies the signed session credentials.
//
// A token carries three pieces of state: the subject user ID, the
// expiration instant and a unique jti used as the unit of revocation.
// Full sessions and TOTP login challenges are produced by the same
// codec but carry a signed kind claim, so one can never be accepted
// where the other is expected.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind tags what a token is good for
type Kind string

const (
	// KindSession marks a full session token issued after complete authentication
	KindSession Kind = "session"
	// KindChallenge marks a short-lived token issued after password
	// verification while a TOTP code is still outstanding
	KindChallenge Kind = "totp_challenge"
)

// ErrInvalidToken covers every verification failure: malformed token,
// bad signature, expired token, wrong kind. The reasons are deliberately
// not distinguished to the caller.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the signed token payload
type Claims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// Config содержит конфигурацию для подписи токенов
type Config struct {
	Secret       []byte
	SessionTTL   time.Duration
	ChallengeTTL time.Duration
	Issuer       string
}

// Issue builds a signed token for the user with a freshly generated jti.
// Returns the encoded token and its jti.
func Issue(cfg Config, userID string, kind Kind, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.New().String()

	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, jti, nil
}

// IssueSession issues a full session token with the configured session lifetime
func IssueSession(cfg Config, userID string) (string, string, error) {
	return Issue(cfg, userID, KindSession, cfg.SessionTTL)
}

// IssueChallenge issues a TOTP challenge token with the configured challenge lifetime
func IssueChallenge(cfg Config, userID string) (string, string, error) {
	return Issue(cfg, userID, KindChallenge, cfg.ChallengeTTL)
}

// Verify validates signature and expiration and checks the token kind.
// A token whose expiration equals the current instant is already expired.
// The codec does not consult the revocation registry, that is the caller's job.
func Verify(cfg Config, tokenString string, want Kind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Kind != want {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
