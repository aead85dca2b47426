// Package server assembles and runs the farmgate HTTP application:
// storage, the session orchestrator, routes and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farmgate-dev/farmgate/internal/server/auth"
	"github.com/farmgate-dev/farmgate/internal/server/config"
	"github.com/farmgate-dev/farmgate/internal/server/handlers"
	"github.com/farmgate-dev/farmgate/internal/server/middleware"
	"github.com/farmgate-dev/farmgate/internal/server/storage/sqlite"
	"github.com/farmgate-dev/farmgate/internal/server/token"
	"github.com/farmgate-dev/farmgate/internal/server/totp"
)

// shutdownTimeout время на завершение обработки активных запросов
const shutdownTimeout = 10 * time.Second

// App is the assembled server application
type App struct {
	config  *config.Config
	logger  *slog.Logger
	storage *sqlite.Storage
	version string
}

// NewApp creates the application: opens storage and wires the services
func NewApp(ctx context.Context, cfg *config.Config, version string) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	return &App{
		config:  cfg,
		logger:  logger,
		storage: store,
		version: version,
	}, nil
}

// routes собирает mux со всеми эндпоинтами
func (app *App) routes() http.Handler {
	tokenCfg := token.Config{
		Secret:       []byte(app.config.JWTSecret),
		SessionTTL:   app.config.SessionTokenTTL,
		ChallengeTTL: app.config.ChallengeTokenTTL,
		Issuer:       "farmgate",
	}

	totpManager := totp.NewManager(app.config.TOTPIssuer)
	service := auth.NewService(app.logger, app.storage, app.storage, totpManager, tokenCfg)

	cookies := handlers.CookieConfig{
		Secure:   app.config.SecureCookie,
		SameSite: app.config.SameSite(),
	}

	authHandler := handlers.NewAuthHandler(app.logger, service, cookies)
	userHandler := handlers.NewUserHandler(app.logger, service)
	totpHandler := handlers.NewTOTPHandler(app.logger, service)
	healthHandler := handlers.NewHealthHandler(app.logger, app.version)

	requireAuth := middleware.AuthMiddleware(app.logger, service)

	mux := http.NewServeMux()

	// Открытые эндпоинты
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/totp", authHandler.VerifyTOTP)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)

	// Защищенные эндпоинты: session cookie обязателен
	mux.Handle("GET /api/v1/user/profile", requireAuth(http.HandlerFunc(userHandler.Profile)))
	mux.Handle("PUT /api/v1/user/profile", requireAuth(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("PUT /api/v1/user/password", requireAuth(http.HandlerFunc(userHandler.UpdatePassword)))
	mux.Handle("POST /api/v1/totp/setup", requireAuth(http.HandlerFunc(totpHandler.Setup)))
	mux.Handle("POST /api/v1/totp/confirm", requireAuth(http.HandlerFunc(totpHandler.Confirm)))
	mux.Handle("POST /api/v1/totp/disable", requireAuth(http.HandlerFunc(totpHandler.Disable)))
	mux.Handle("GET /api/v1/totp/status", requireAuth(http.HandlerFunc(totpHandler.Status)))

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(app.logger)(handler)
	handler = middleware.RecoveryMiddleware(app.logger)(handler)

	return handler
}

// Run starts the HTTP server and blocks until shutdown
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)

	srv := &http.Server{
		Addr:              app.config.ListenAddr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server started", "addr", app.config.ListenAddr, "version", app.version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	if err := app.storage.Close(); err != nil {
		return fmt.Errorf("storage close error: %w", err)
	}

	return nil
}

// initSignalHandler отменяет контекст при SIGINT/SIGTERM/SIGQUIT
func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}
