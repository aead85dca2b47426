// Package config handles configuration for the server component,
// including defaults, environment overlay, and command-line flags.
package config

import (
	"net/http"
	"time"
)

// Config holds runtime settings for the farmgate server.
//
// Fields:
//   - ListenAddr: bind address for the HTTP endpoint.
//   - DatabasePath: path to the SQLite database file.
//   - JWTSecret: HMAC secret for signing tokens (HS256). Do not use test defaults in prod.
//   - SessionTokenTTL / ChallengeTokenTTL: token lifetimes; the challenge
//     lifetime bounds the window between password and TOTP code.
//   - SecureCookie: whether auth cookies carry the Secure attribute.
//   - TOTPIssuer: issuer name shown in authenticator apps.
type Config struct {
	ListenAddr        string
	DatabasePath      string
	JWTSecret         string
	SessionTokenTTL   time.Duration
	ChallengeTokenTTL time.Duration
	SecureCookie      bool
	TOTPIssuer        string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.DatabasePath = "farmgate.db"
	c.JWTSecret = "dev-secret-change-me"
	c.SessionTokenTTL = 60 * time.Minute
	c.ChallengeTokenTTL = 5 * time.Minute
	c.SecureCookie = false
	c.TOTPIssuer = "Digital Farm Platform"
}

// SameSite returns the cookie SameSite policy.
// Lax everywhere: cookie-carried credentials are not sent on
// cross-site subrequests while top-level navigation keeps working.
func (c *Config) SameSite() http.SameSite {
	return http.SameSiteLaxMode
}

// LoadConfig builds a Config by applying defaults, then overlaying
// values from the environment and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
