package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/farmgate-dev/farmgate/internal/models"
	"github.com/farmgate-dev/farmgate/internal/server/auth"
	"github.com/farmgate-dev/farmgate/pkg/api"
)

// UserHandler обрабатывает запросы профиля
// Все методы требуют auth middleware: пользователь берется из контекста
type UserHandler struct {
	logger  *slog.Logger
	service *auth.Service
}

// NewUserHandler создает новый handler для профиля
func NewUserHandler(logger *slog.Logger, service *auth.Service) *UserHandler {
	return &UserHandler{
		logger:  logger,
		service: service,
	}
}

// Profile обрабатывает GET /api/v1/user/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		sendError(h.logger, w, "not authenticated", http.StatusUnauthorized)
		return
	}

	sendJSON(h.logger, w, profileResponse(user), http.StatusOK)
}

// UpdateProfile обрабатывает PUT /api/v1/user/profile
// Частичное обновление: затрагиваются только переданные поля
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req api.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode profile request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	patch := models.UserPatch{
		FullName: req.FullName,
		Phone:    req.Phone,
		JobTitle: req.JobTitle,
	}

	updated, err := h.service.UpdateProfile(ctx, user, patch)
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, profileResponse(updated), http.StatusOK)
}

// UpdatePassword обрабатывает PUT /api/v1/user/password
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req api.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode password request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.ChangePassword(ctx, user, req.CurrentPassword, req.NewPassword); err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, api.MessageResponse{Message: "Password updated successfully"}, http.StatusOK)
}

// profileResponse собирает DTO профиля из модели
func profileResponse(user *models.User) api.ProfileResponse {
	return api.ProfileResponse{
		ID:               user.ID,
		Email:            user.Email,
		FullName:         user.FullName,
		Phone:            user.Phone,
		JobTitle:         user.JobTitle,
		TwoFactorEnabled: user.TwoFactorEnabled,
	}
}
