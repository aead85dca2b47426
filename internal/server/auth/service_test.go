package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmgate-dev/farmgate/internal/models"
	"github.com/farmgate-dev/farmgate/internal/server/token"
	totpmgr "github.com/farmgate-dev/farmgate/internal/server/totp"
)

func newTestService(users *mockUserStorage, revocation *mockRevocationStorage) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := token.Config{
		Secret:       []byte("test-secret-key"),
		SessionTTL:   60 * time.Minute,
		ChallengeTTL: 5 * time.Minute,
		Issuer:       "farmgate-test",
	}

	return NewService(logger, users, revocation, totpmgr.NewManager("Digital Farm Platform"), cfg)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		email     string
		password  string
		wantError error
	}{
		{
			name:     "valid registration",
			email:    "alice@example.com",
			password: "Str0ng!Pass",
		},
		{
			name:      "invalid email",
			email:     "not-an-email",
			password:  "Str0ng!Pass",
			wantError: ErrInvalidEmail,
		},
		{
			name:      "password too short",
			email:     "alice@example.com",
			password:  "S0r!t",
			wantError: ErrPasswordPolicy,
		},
		{
			name:      "password missing symbol",
			email:     "alice@example.com",
			password:  "Str0ngPass1",
			wantError: ErrPasswordPolicy,
		},
		{
			name:      "password missing uppercase",
			email:     "alice@example.com",
			password:  "str0ng!pass",
			wantError: ErrPasswordPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMockUserStorage(), newMockRevocationStorage())

			user, err := svc.Register(ctx, tt.email, tt.password)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.email, user.Email)
			assert.True(t, user.IsActive)
			assert.NotEmpty(t, user.ID)
			// Хэш не равен исходному паролю
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMockUserStorage(), newMockRevocationStorage())

	_, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.com", "Other!Pass9")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestService_Login_IssuesValidSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMockUserStorage(), newMockRevocationStorage())

	registered, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.False(t, result.RequiresTOTP)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, int64(3600), result.ExpiresIn)

	// Выданный токен сразу проходит аутентификацию
	user, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	require.NotNil(t, user.LastLogin)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMockUserStorage(), newMockRevocationStorage())

	_, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	// Неизвестный email и неверный пароль дают одну и ту же ошибку
	_, err = svc.Login(ctx, "nobody@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "alice@example.com", "Wrong!Pass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Logout_RevokesSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMockUserStorage(), newMockRevocationStorage())

	_, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	svc.Logout(ctx, result.Token)

	// После logout токен отклоняется, хотя подпись и срок еще валидны
	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Повторный logout того же токена безопасен
	svc.Logout(ctx, result.Token)

	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestService_Logout_GarbageToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMockUserStorage(), newMockRevocationStorage())

	// Невалидный токен не роняет logout
	svc.Logout(ctx, "not-a-jwt")
	svc.Logout(ctx, "")
}

func TestService_Logout_IndependentSessions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMockUserStorage(), newMockRevocationStorage())

	_, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	first, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	second, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	// Отзыв одной сессии не трогает другую: каждая имеет свой jti
	svc.Logout(ctx, first.Token)

	_, err = svc.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.Authenticate(ctx, second.Token)
	assert.NoError(t, err)
}

func TestService_Authenticate_Failures(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStorage()
	svc := newTestService(users, newMockRevocationStorage())

	_, err := svc.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Токен удаленного пользователя невалиден
	registered, err := svc.Register(ctx, "gone@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "gone@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	users.mu.Lock()
	delete(users.users, registered.ID)
	users.mu.Unlock()

	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Authenticate_InactiveUser(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStorage()
	svc := newTestService(users, newMockRevocationStorage())

	registered, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	users.mu.Lock()
	users.users[registered.ID].IsActive = false
	users.mu.Unlock()

	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrUserInactive)
}

// enableTwoFactor проводит полный цикл включения 2FA и возвращает секрет
func enableTwoFactor(t *testing.T, ctx context.Context, svc *Service, users *mockUserStorage, userID, password string) string {
	t.Helper()

	user, err := users.GetUserByID(ctx, userID)
	require.NoError(t, err)

	setup, err := svc.BeginTOTPSetup(ctx, user, password)
	require.NoError(t, err)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmTOTPSetup(ctx, user, password, setup.Secret, code))

	return setup.Secret
}

func TestService_TwoFactorLogin(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStorage()
	svc := newTestService(users, newMockRevocationStorage())

	registered, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	secret := enableTwoFactor(t, ctx, svc, users, registered.ID, "Str0ng!Pass")

	// Логин с включенной 2FA выдает challenge, не сессию
	result, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.True(t, result.RequiresTOTP)
	assert.Equal(t, int64(300), result.ExpiresIn)

	// Challenge token не принимается как сессия
	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Неверный код отклоняется, challenge остается пригодным
	_, err = svc.VerifyTOTP(ctx, result.Token, "000000")
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	session, err := svc.VerifyTOTP(ctx, result.Token, code)
	require.NoError(t, err)
	assert.False(t, session.RequiresTOTP)

	user, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestService_VerifyTOTP_InvalidChallenge(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMockUserStorage(), newMockRevocationStorage())

	_, err := svc.VerifyTOTP(ctx, "not-a-jwt", "123456")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Session token не годится вместо challenge
	_, err = svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	_, err = svc.VerifyTOTP(ctx, result.Token, "123456")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_VerifyTOTP_DisabledMidChallenge(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStorage()
	svc := newTestService(users, newMockRevocationStorage())

	registered, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	secret := enableTwoFactor(t, ctx, svc, users, registered.ID, "Str0ng!Pass")

	result, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	require.True(t, result.RequiresTOTP)

	// 2FA выключили между шагами — challenge закрывается, а не пропускается
	require.NoError(t, users.UpdateTwoFactor(ctx, registered.ID, false, ""))

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	_, err = svc.VerifyTOTP(ctx, result.Token, code)
	assert.ErrorIs(t, err, ErrTwoFactorNotConfigured)
}

func TestService_BeginTOTPSetup(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStorage()
	svc := newTestService(users, newMockRevocationStorage())

	registered, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	user, err := users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)

	_, err = svc.BeginTOTPSetup(ctx, user, "Wrong!Pass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	setup, err := svc.BeginTOTPSetup(ctx, user, "Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.NotEmpty(t, setup.ProvisioningURI)
	assert.NotEmpty(t, setup.QRCodePNG)

	// До подтверждения ничего не сохраняется
	stored, err := users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled)
	assert.Empty(t, stored.TwoFactorSecret)
}

func TestService_ConfirmTOTPSetup_WrongCode(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStorage()
	svc := newTestService(users, newMockRevocationStorage())

	registered, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	user, err := users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)

	setup, err := svc.BeginTOTPSetup(ctx, user, "Str0ng!Pass")
	require.NoError(t, err)

	err = svc.ConfirmTOTPSetup(ctx, user, "Str0ng!Pass", setup.Secret, "000000")
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)

	// Неудачное подтверждение не включает 2FA
	stored, err := users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled)
}

func TestService_DisableTOTP(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStorage()
	svc := newTestService(users, newMockRevocationStorage())

	registered, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	secret := enableTwoFactor(t, ctx, svc, users, registered.ID, "Str0ng!Pass")

	user, err := users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	_, err = users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)

	err = svc.DisableTOTP(ctx, user, "Wrong!Pass1", code)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.DisableTOTP(ctx, user, "Str0ng!Pass", "000000")
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)

	require.NoError(t, svc.DisableTOTP(ctx, user, "Str0ng!Pass", code))

	// После отключения логин снова выдает сессию сразу
	result, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.False(t, result.RequiresTOTP)

	stored, err := users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled)
	assert.Empty(t, stored.TwoFactorSecret)
}

func TestService_DisableTOTP_NotConfigured(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStorage()
	svc := newTestService(users, newMockRevocationStorage())

	registered, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	user, err := users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)

	err = svc.DisableTOTP(ctx, user, "Str0ng!Pass", "123456")
	assert.ErrorIs(t, err, ErrTwoFactorNotConfigured)
}

func TestService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStorage()
	svc := newTestService(users, newMockRevocationStorage())

	registered, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	user, err := users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user, "Wrong!Pass1", "New!Pass123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, user, "Str0ng!Pass", "New!Pass123"))

	_, err = svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "alice@example.com", "New!Pass123")
	assert.NoError(t, err)
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStorage()
	svc := newTestService(users, newMockRevocationStorage())

	registered, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	user, err := users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)

	name := "Alice Visser"
	phone := "+31612345678"

	updated, err := svc.UpdateProfile(ctx, user, models.UserPatch{
		FullName: &name,
		Phone:    &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Visser", updated.FullName)
	assert.Equal(t, "+31612345678", updated.Phone)

	// Непереданные поля не затираются
	stored, err := users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Visser", stored.FullName)
	assert.Empty(t, stored.JobTitle)
}

func TestService_StorageFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("register propagates storage error", func(t *testing.T) {
		users := newMockUserStorage()
		users.createErr = assert.AnError
		svc := newTestService(users, newMockRevocationStorage())

		_, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("authenticate propagates registry error", func(t *testing.T) {
		users := newMockUserStorage()
		revocation := newMockRevocationStorage()
		svc := newTestService(users, revocation)

		_, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
		require.NoError(t, err)

		result, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
		require.NoError(t, err)

		revocation.checkErr = assert.AnError

		// Сбой реестра не превращается в "разрешено"
		_, err = svc.Authenticate(ctx, result.Token)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("logout swallows registry error", func(t *testing.T) {
		users := newMockUserStorage()
		revocation := newMockRevocationStorage()
		svc := newTestService(users, revocation)

		_, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
		require.NoError(t, err)

		result, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
		require.NoError(t, err)

		revocation.revokeErr = assert.AnError

		svc.Logout(ctx, result.Token)

		// Отзыв не записался, сессия остается живой
		revocation.revokeErr = nil
		_, err = svc.Authenticate(ctx, result.Token)
		assert.NoError(t, err)
	})
}

func TestService_Login_LastLoginFailureNotFatal(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStorage()
	svc := newTestService(users, newMockRevocationStorage())

	_, err := svc.Register(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	users.updateLastLoginErr = assert.AnError

	// Ошибка отметки last_login не мешает выдать сессию
	result, err := svc.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}
