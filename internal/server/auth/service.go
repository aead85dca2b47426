// Package auth drives the login, logout and two-factor protocols.
//
// The service composes the credential store, the token codec, the
// revocation registry and the TOTP manager. Session state lives
// entirely in the transported token and the durable revocation
// registry: no in-memory state is held between requests, so every
// operation can run concurrently with any other.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/farmgate-dev/farmgate/internal/crypto"
	"github.com/farmgate-dev/farmgate/internal/models"
	"github.com/farmgate-dev/farmgate/internal/server/storage"
	"github.com/farmgate-dev/farmgate/internal/server/token"
	"github.com/farmgate-dev/farmgate/internal/server/totp"
	"github.com/farmgate-dev/farmgate/internal/validation"
)

// Service is the session orchestrator
type Service struct {
	logger     *slog.Logger
	users      storage.UserStorage
	revocation storage.RevocationStorage
	totp       *totp.Manager
	tokenCfg   token.Config
}

// NewService creates the orchestrator over its collaborators
func NewService(
	logger *slog.Logger,
	users storage.UserStorage,
	revocation storage.RevocationStorage,
	totpManager *totp.Manager,
	tokenCfg token.Config,
) *Service {
	return &Service{
		logger:     logger,
		users:      users,
		revocation: revocation,
		totp:       totpManager,
		tokenCfg:   tokenCfg,
	}
}

// TokenConfig returns the codec configuration the service signs with
func (s *Service) TokenConfig() token.Config {
	return s.tokenCfg
}

// LoginResult describes the outcome of a successful login step.
// When RequiresTOTP is set, Token is a short-lived challenge token and
// the client must follow up with a code; otherwise Token is a full
// session token.
type LoginResult struct {
	User         *models.User
	Token        string
	ExpiresIn    int64 // seconds
	RequiresTOTP bool
}

// Register creates a new active user.
// Политика пароля применяется только здесь: при входе существующие
// пароли не перепроверяются.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPasswordPolicy, err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))

	return user, nil
}

// Login verifies credentials and issues either a full session token or,
// for accounts with two-factor protection, a 5-minute challenge token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Неизвестный email неотличим от неверного пароля
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := crypto.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		challenge, _, err := token.IssueChallenge(s.tokenCfg, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to issue challenge token: %w", err)
		}

		s.logger.InfoContext(ctx, "login pending two-factor code", slog.String("user_id", user.ID))

		return &LoginResult{
			User:         user,
			Token:        challenge,
			ExpiresIn:    int64(s.tokenCfg.ChallengeTTL.Seconds()),
			RequiresTOTP: true,
		}, nil
	}

	return s.issueSession(ctx, user)
}

// VerifyTOTP completes a two-factor login. The challenge token proves
// the password step; an invalid or expired one means the whole login
// must be restarted.
func (s *Service) VerifyTOTP(ctx context.Context, challengeToken, code string) (*LoginResult, error) {
	claims, err := token.Verify(s.tokenCfg, challengeToken, token.KindChallenge)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// 2FA могла быть выключена между шагами логина — закрываемся
	if !user.TwoFactorEnabled || user.TwoFactorSecret == "" {
		return nil, ErrTwoFactorNotConfigured
	}

	if !s.totp.VerifyCode(code, user.TwoFactorSecret) {
		s.logger.WarnContext(ctx, "two-factor code rejected", slog.String("user_id", user.ID))
		return nil, ErrInvalidTwoFactorCode
	}

	return s.issueSession(ctx, user)
}

// issueSession выпускает полный session token и отмечает вход
func (s *Service) issueSession(ctx context.Context, user *models.User) (*LoginResult, error) {
	sessionToken, _, err := token.IssueSession(s.tokenCfg, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Не критичная ошибка, логируем но не прерываем
		s.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "session issued", slog.String("user_id", user.ID))

	return &LoginResult{
		User:      user,
		Token:     sessionToken,
		ExpiresIn: int64(s.tokenCfg.SessionTTL.Seconds()),
	}, nil
}

// Logout revokes the session token's jti.
// Logout never fails from the client's perspective: an invalid or
// already-expired token still results in a logged-out client, and a
// registry failure is logged as best-effort.
func (s *Service) Logout(ctx context.Context, sessionToken string) {
	claims, err := token.Verify(s.tokenCfg, sessionToken, token.KindSession)
	if err != nil {
		return
	}

	if err := s.revocation.RevokeToken(ctx, claims.ID, time.Now()); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke token", slog.Any("error", err))
		return
	}

	s.logger.InfoContext(ctx, "token revoked", slog.String("user_id", claims.Subject))
}

// Authenticate resolves a session token to its user.
// Порядок проверок фиксирован: подпись и срок действия, затем реестр
// отзыва, затем существование пользователя — сначала самые дешевые и
// решающие проверки, чтобы не ходить в БД с заведомо невалидным токеном.
func (s *Service) Authenticate(ctx context.Context, sessionToken string) (*models.User, error) {
	claims, err := token.Verify(s.tokenCfg, sessionToken, token.KindSession)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revocation.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return user, nil
}

// ChangePassword verifies the current password and stores a new hash.
// Политика прочности здесь намеренно не перепроверяется — поведение
// исходного продукта сохранено.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error {
	if err := crypto.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed", slog.String("user_id", user.ID))

	return nil
}

// UpdateProfile applies a partial profile update: only provided fields overwrite
func (s *Service) UpdateProfile(ctx context.Context, user *models.User, patch models.UserPatch) (*models.User, error) {
	patch.Apply(user)

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// BeginTOTPSetup re-authenticates the user and produces new enrollment
// material. Nothing is persisted: the secret only becomes active once
// ConfirmTOTPSetup proves the authenticator app works. A failed attempt
// leaves no pending state, setup restarts from scratch.
func (s *Service) BeginTOTPSetup(ctx context.Context, user *models.User, password string) (*totp.Setup, error) {
	if err := crypto.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	setup, err := s.totp.GenerateSecret(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate setup material: %w", err)
	}

	return setup, nil
}

// ConfirmTOTPSetup verifies a code against the submitted secret and, on
// success, persists the secret and enables two-factor protection as a pair.
func (s *Service) ConfirmTOTPSetup(ctx context.Context, user *models.User, password, secret, code string) error {
	if err := crypto.VerifyPassword(password, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	if !s.totp.VerifyCode(code, secret) {
		return ErrInvalidTwoFactorCode
	}

	if err := s.users.UpdateTwoFactor(ctx, user.ID, true, secret); err != nil {
		return fmt.Errorf("failed to enable two-factor: %w", err)
	}

	user.TwoFactorEnabled = true
	user.TwoFactorSecret = secret

	s.logger.InfoContext(ctx, "two-factor enabled", slog.String("user_id", user.ID))

	return nil
}

// DisableTOTP requires a valid current code, then clears the secret and
// disables two-factor protection as a pair.
func (s *Service) DisableTOTP(ctx context.Context, user *models.User, password, code string) error {
	if err := crypto.VerifyPassword(password, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	if !user.TwoFactorEnabled || user.TwoFactorSecret == "" {
		return ErrTwoFactorNotConfigured
	}

	if !s.totp.VerifyCode(code, user.TwoFactorSecret) {
		return ErrInvalidTwoFactorCode
	}

	if err := s.users.UpdateTwoFactor(ctx, user.ID, false, ""); err != nil {
		return fmt.Errorf("failed to disable two-factor: %w", err)
	}

	user.TwoFactorEnabled = false
	user.TwoFactorSecret = ""

	s.logger.InfoContext(ctx, "two-factor disabled", slog.String("user_id", user.ID))

	return nil
}
