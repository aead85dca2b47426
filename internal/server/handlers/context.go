package handlers

import (
	"context"

	"github.com/farmgate-dev/farmgate/internal/models"
)

// contextKey тип для ключей контекста (избегаем коллизий с другими пакетами)
type contextKey string

// UserKey ключ контекста с аутентифицированным пользователем
const UserKey contextKey = "user"

// UserFromContext extracts the authenticated user placed by the auth middleware
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok
}

// ContextWithUser returns a context carrying the authenticated user
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
