package handlers

import "net/http"

// Имена cookie. Полная сессия и 2FA challenge никогда не делят cookie:
// у каждого токена свое имя и свой max-age, совпадающий с его TTL.
const (
	// SessionCookie carries the full session token
	SessionCookie = "access_token"
	// ChallengeCookie carries the short-lived TOTP challenge token
	ChallengeCookie = "totp_challenge"
)

// CookieConfig содержит атрибуты безопасности для выдаваемых cookie
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
}

// setCookie выдает httpOnly cookie с токеном
func (c CookieConfig) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// clearCookie немедленно гасит cookie
func (c CookieConfig) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}
