package config

import (
	"flag"
	"time"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   SQLite database path
//	-s string   JWT HMAC secret key
//	-t int      session token lifetime, minutes
//	-secure     set the Secure attribute on auth cookies
func parseFlags(config *Config) {
	flag.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	flag.StringVar(&config.DatabasePath, "d", config.DatabasePath, "SQLite database path")
	flag.StringVar(&config.JWTSecret, "s", config.JWTSecret, "secret key for token signing")

	sessionTTLMinutes := flag.Int("t", int(config.SessionTokenTTL.Minutes()), "session token lifetime (in minutes)")

	flag.BoolVar(&config.SecureCookie, "secure", config.SecureCookie, "set Secure attribute on cookies")

	flag.Parse()

	config.SessionTokenTTL = time.Duration(*sessionTTLMinutes) * time.Minute
}
