// Package api contains the wire types shared by the HTTP handlers and clients
package api

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`    // email пользователя, уникальный
	Password string `json:"password"` // пароль, проверяется политикой прочности
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	UserID  string `json:"user_id"` // UUID пользователя
	Message string `json:"message"` // сообщение об успешной регистрации
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse представляет ответ на шаг логина
// При RequiresTOTP=true сессия еще не открыта: выдан challenge cookie
// и клиент должен отправить код из приложения-аутентификатора
type LoginResponse struct {
	Email        string `json:"email"`
	FullName     string `json:"full_name,omitempty"`
	RequiresTOTP bool   `json:"requires_totp"`
}

// TOTPLoginRequest представляет второй шаг логина с кодом
type TOTPLoginRequest struct {
	Code string `json:"code"` // 6-значный код из приложения
}

// ProfileResponse представляет профиль пользователя
type ProfileResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FullName         string `json:"full_name,omitempty"`
	Phone            string `json:"phone,omitempty"`
	JobTitle         string `json:"job_title,omitempty"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

// UpdateProfileRequest представляет частичное обновление профиля
// Отсутствующие поля не изменяются
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	JobTitle *string `json:"job_title,omitempty"`
}

// UpdatePasswordRequest представляет смену пароля
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TOTPSetupRequest представляет запрос на начало настройки 2FA
type TOTPSetupRequest struct {
	Password string `json:"password"` // повторная проверка пароля
}

// TOTPSetupResponse содержит материал для привязки аутентификатора
type TOTPSetupResponse struct {
	Secret          string `json:"secret"`           // base32 секрет для ручного ввода
	ProvisioningURI string `json:"provisioning_uri"` // otpauth://totp/... URI
	QRCode          string `json:"qr_code"`          // base64 PNG
}

// TOTPConfirmRequest подтверждает настройку 2FA кодом из приложения
type TOTPConfirmRequest struct {
	Password string `json:"password"`
	Secret   string `json:"secret"` // секрет из ответа setup
	Code     string `json:"code"`   // 6-значный код
}

// TOTPDisableRequest представляет запрос на отключение 2FA
type TOTPDisableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"` // текущий код для подтверждения
}

// TOTPStatusResponse представляет состояние 2FA пользователя
type TOTPStatusResponse struct {
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	Email            string `json:"email"`
}

// MessageResponse представляет простой ответ с сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`   // HTTP статус текст
	Message string `json:"message"` // описание ошибки
}
