package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/farmgate-dev/farmgate/internal/server/auth"
	"github.com/farmgate-dev/farmgate/pkg/api"
)

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func sendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	sendJSON(logger, w, resp, statusCode)
}

// sendServiceError переводит ошибки оркестратора в HTTP статусы.
// Всё, что не является известной sentinel ошибкой, превращается в
// generic 500 без деталей.
func sendServiceError(logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		sendError(logger, w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, auth.ErrUserInactive):
		sendError(logger, w, "not authenticated", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrInvalidTwoFactorCode):
		sendError(logger, w, "authenticator code is invalid", http.StatusBadRequest)
	case errors.Is(err, auth.ErrTwoFactorNotConfigured):
		sendError(logger, w, "two-factor authentication is not enabled", http.StatusBadRequest)
	case errors.Is(err, auth.ErrPasswordPolicy):
		sendError(logger, w, "password does not meet policy requirements", http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidEmail):
		sendError(logger, w, "invalid email address", http.StatusBadRequest)
	case errors.Is(err, auth.ErrDuplicateEmail):
		sendError(logger, w, "email already registered", http.StatusConflict)
	default:
		logger.Error("internal error", slog.Any("error", err))
		sendError(logger, w, "internal server error", http.StatusInternalServerError)
	}
}
