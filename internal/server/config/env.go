package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables recognized by the server
const (
	EnvListenAddr        = "FARMGATE_LISTEN_ADDR"
	EnvDatabasePath      = "FARMGATE_DATABASE_PATH"
	EnvJWTSecret         = "FARMGATE_JWT_SECRET"
	EnvSessionTTLMinutes = "FARMGATE_SESSION_TTL_MINUTES"
	EnvSecureCookie      = "FARMGATE_SECURE_COOKIE"
	EnvTOTPIssuer        = "FARMGATE_TOTP_ISSUER"
)

// parseEnv overlays Config fields from environment variables.
// Unset or malformed values leave the current value untouched.
func parseEnv(config *Config) {
	if v := os.Getenv(EnvListenAddr); v != "" {
		config.ListenAddr = v
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		config.DatabasePath = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		config.JWTSecret = v
	}
	if v := os.Getenv(EnvSessionTTLMinutes); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			config.SessionTokenTTL = time.Duration(minutes) * time.Minute
		}
	}
	if v := os.Getenv(EnvSecureCookie); v != "" {
		if secure, err := strconv.ParseBool(v); err == nil {
			config.SecureCookie = secure
		}
	}
	if v := os.Getenv(EnvTOTPIssuer); v != "" {
		config.TOTPIssuer = v
	}
}
