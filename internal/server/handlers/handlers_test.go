package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/farmgate-dev/farmgate/internal/models"
	"github.com/farmgate-dev/farmgate/internal/server/auth"
	"github.com/farmgate-dev/farmgate/internal/server/storage/sqlite"
	"github.com/farmgate-dev/farmgate/internal/server/token"
	"github.com/farmgate-dev/farmgate/internal/server/totp"
)

// testEnv собирает сервис поверх in-memory sqlite для handler тестов
type testEnv struct {
	service *auth.Service
	logger  *slog.Logger
	cookies CookieConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := token.Config{
		Secret:       []byte("test-secret-key"),
		SessionTTL:   60 * time.Minute,
		ChallengeTTL: 5 * time.Minute,
		Issuer:       "farmgate-test",
	}

	service := auth.NewService(logger, store, store, totp.NewManager("Digital Farm Platform"), cfg)

	return &testEnv{
		service: service,
		logger:  logger,
		cookies: CookieConfig{SameSite: http.SameSiteLaxMode},
	}
}

// registerUser создает пользователя через сервис и возвращает его
func (e *testEnv) registerUser(t *testing.T, email, password string) *models.User {
	t.Helper()

	user, err := e.service.Register(context.Background(), email, password)
	require.NoError(t, err)

	return user
}

// jsonRequest собирает запрос с JSON телом
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	return req
}

// authedRequest кладет пользователя в контекст, как это делает middleware
func authedRequest(t *testing.T, method, target string, body any, user *models.User) *http.Request {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = jsonRequest(t, method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	return req.WithContext(ContextWithUser(req.Context(), user))
}

// responseCookie находит cookie по имени в ответе
func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// decodeResponse разбирает JSON тело ответа
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}
