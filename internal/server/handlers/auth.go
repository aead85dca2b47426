package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/farmgate-dev/farmgate/internal/server/auth"
	"github.com/farmgate-dev/farmgate/pkg/api"
)

// AuthHandler обрабатывает запросы аутентификации
type AuthHandler struct {
	logger  *slog.Logger
	service *auth.Service
	cookies CookieConfig
}

// NewAuthHandler создает новый handler для аутентификации
func NewAuthHandler(logger *slog.Logger, service *auth.Service, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		service: service,
		cookies: cookies,
	}
}

// Register обрабатывает POST /api/v1/auth/register
// Регистрация нового пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(ctx, req.Email, req.Password)
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	resp := api.RegisterResponse{
		UserID:  user.ID,
		Message: "User registered successfully",
	}

	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// Login обрабатывает POST /api/v1/auth/login
// При выключенной 2FA выдает session cookie; при включенной — challenge
// cookie и requires_totp=true, сессия открывается только после кода
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	if result.RequiresTOTP {
		h.cookies.setCookie(w, ChallengeCookie, result.Token, int(result.ExpiresIn))
	} else {
		h.cookies.setCookie(w, SessionCookie, result.Token, int(result.ExpiresIn))
	}

	resp := api.LoginResponse{
		Email:        result.User.Email,
		FullName:     result.User.FullName,
		RequiresTOTP: result.RequiresTOTP,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// VerifyTOTP обрабатывает POST /api/v1/auth/totp
// Второй шаг логина: challenge cookie + код из приложения
func (h *AuthHandler) VerifyTOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	challenge, err := r.Cookie(ChallengeCookie)
	if err != nil {
		sendError(h.logger, w, "two-factor challenge expired, restart login", http.StatusUnauthorized)
		return
	}

	var req api.TOTPLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode totp login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.VerifyTOTP(ctx, challenge.Value, req.Code)
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	// Challenge исчерпан, открываем полную сессию
	h.cookies.clearCookie(w, ChallengeCookie)
	h.cookies.setCookie(w, SessionCookie, result.Token, int(result.ExpiresIn))

	resp := api.LoginResponse{
		Email:    result.User.Email,
		FullName: result.User.FullName,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Всегда отвечает успехом: отзыв токена — best effort, cookie гасится
// безусловно
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		h.service.Logout(ctx, cookie.Value)
	}

	h.cookies.clearCookie(w, SessionCookie)

	sendJSON(h.logger, w, api.MessageResponse{Message: "Logged out"}, http.StatusOK)
}
