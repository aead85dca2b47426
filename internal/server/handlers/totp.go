package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/farmgate-dev/farmgate/internal/server/auth"
	"github.com/farmgate-dev/farmgate/pkg/api"
)

// TOTPHandler обрабатывает управление двухфакторной защитой
// Все методы требуют auth middleware
type TOTPHandler struct {
	logger  *slog.Logger
	service *auth.Service
}

// NewTOTPHandler создает новый handler для 2FA
func NewTOTPHandler(logger *slog.Logger, service *auth.Service) *TOTPHandler {
	return &TOTPHandler{
		logger:  logger,
		service: service,
	}
}

// Setup обрабатывает POST /api/v1/totp/setup
// Генерирует новый секрет и QR код. Состояние пользователя не меняется:
// секрет активируется только после подтверждения кодом
func (h *TOTPHandler) Setup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req api.TOTPSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode totp setup request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	setup, err := h.service.BeginTOTPSetup(ctx, user, req.Password)
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	resp := api.TOTPSetupResponse{
		Secret:          setup.Secret,
		ProvisioningURI: setup.ProvisioningURI,
		QRCode:          setup.QRCodePNG,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Confirm обрабатывает POST /api/v1/totp/confirm
// Проверяет код против секрета из setup и включает 2FA
func (h *TOTPHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req api.TOTPConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode totp confirm request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Secret == "" {
		sendError(h.logger, w, "secret is required, use the setup endpoint first", http.StatusBadRequest)
		return
	}

	if err := h.service.ConfirmTOTPSetup(ctx, user, req.Password, req.Secret, req.Code); err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, api.MessageResponse{Message: "2FA enabled successfully"}, http.StatusOK)
}

// Disable обрабатывает POST /api/v1/totp/disable
// Требует пароль и действующий код
func (h *TOTPHandler) Disable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req api.TOTPDisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode totp disable request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.DisableTOTP(ctx, user, req.Password, req.Code); err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, api.MessageResponse{Message: "2FA disabled successfully"}, http.StatusOK)
}

// Status обрабатывает GET /api/v1/totp/status
func (h *TOTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		sendError(h.logger, w, "not authenticated", http.StatusUnauthorized)
		return
	}

	resp := api.TOTPStatusResponse{
		TwoFactorEnabled: user.TwoFactorEnabled,
		Email:            user.Email,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}
