package auth

import (
	"context"
	"sync"
	"time"

	"github.com/farmgate-dev/farmgate/internal/models"
	"github.com/farmgate-dev/farmgate/internal/server/storage"
)

// mockUserStorage — in-memory реализация UserStorage для тестов
type mockUserStorage struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by ID

	// Подменяемые ошибки для негативных сценариев
	createErr          error
	updateLastLoginErr error
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}

	for _, u := range m.users {
		if u.Email == user.Email {
			return storage.ErrUserAlreadyExists
		}
	}

	clone := *user
	m.users[user.ID] = &clone

	return nil
}

func (m *mockUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}

	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	clone := *u

	return &clone, nil
}

func (m *mockUserStorage) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[user.ID]
	if !ok {
		return storage.ErrUserNotFound
	}

	u.FullName = user.FullName
	u.Phone = user.Phone
	u.JobTitle = user.JobTitle

	return nil
}

func (m *mockUserStorage) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	u.PasswordHash = passwordHash

	return nil
}

func (m *mockUserStorage) UpdateTwoFactor(_ context.Context, userID string, enabled bool, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	u.TwoFactorEnabled = enabled
	u.TwoFactorSecret = secret

	return nil
}

func (m *mockUserStorage) UpdateLastLogin(_ context.Context, userID string, lastLogin time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateLastLoginErr != nil {
		return m.updateLastLoginErr
	}

	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	u.LastLogin = &lastLogin

	return nil
}

// mockRevocationStorage — in-memory реестр отозванных токенов
type mockRevocationStorage struct {
	mu      sync.Mutex
	revoked map[string]time.Time

	revokeErr error
	checkErr  error
}

func newMockRevocationStorage() *mockRevocationStorage {
	return &mockRevocationStorage{revoked: make(map[string]time.Time)}
}

func (m *mockRevocationStorage) RevokeToken(_ context.Context, jti string, revokedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.revokeErr != nil {
		return m.revokeErr
	}

	// Первый отзыв побеждает, повтор — no-op
	if _, ok := m.revoked[jti]; !ok {
		m.revoked[jti] = revokedAt
	}

	return nil
}

func (m *mockRevocationStorage) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.checkErr != nil {
		return false, m.checkErr
	}

	_, ok := m.revoked[jti]

	return ok, nil
}
