package middleware

import (
	"log/slog"
	"net/http"

	"github.com/farmgate-dev/farmgate/internal/server/auth"
	"github.com/farmgate-dev/farmgate/internal/server/handlers"
)

// AuthMiddleware создает middleware для проверки session cookie.
// Принимается только полный session token: challenge cookie с шага
// логина здесь бесполезен, у него другой вид и другое имя cookie.
func AuthMiddleware(logger *slog.Logger, service *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(handlers.SessionCookie)
			if err != nil {
				logger.Warn("missing session cookie", "path", r.URL.Path)
				http.Error(w, "Unauthorized: not authenticated", http.StatusUnauthorized)
				return
			}

			// Порядок внутри: подпись/срок, реестр отзыва, пользователь
			user, err := service.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				logger.Warn("session rejected", "error", err)
				http.Error(w, "Unauthorized: invalid session", http.StatusUnauthorized)
				return
			}

			ctx := handlers.ContextWithUser(r.Context(), user)

			logger.Debug("user authenticated", "user_id", user.ID)

			// Передаем запрос дальше с обновленным контекстом
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
