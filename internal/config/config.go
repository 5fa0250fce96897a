package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type SessionBackend string

const (
	SessionsSQL    SessionBackend = "sql"
	SessionsMemory SessionBackend = "memory"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	SessionStore SessionBackend
	SessionTTL   time.Duration
	TokenTTL     time.Duration
	HMACSecret   string

	CredentialsFile string
	AdminUser       string
	AdminPassHash   string // bcrypt; empty disables the built-in admin

	SpoolDir       string
	MaxUploadBytes int64

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
	SecureCookies      bool
}

// CORSOrigins returns the allowed origins for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:     mode,
		HTTPAddr: envOr("HTTP_ADDR", ":8000"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		SessionStore: SessionBackend(envOr("SESSION_STORE", string(SessionsSQL))),
		SessionTTL:   envDuration("SESSION_TTL", 12*time.Hour),
		TokenTTL:     envDuration("TOKEN_TTL", 8*time.Hour),
		HMACSecret:   envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),

		CredentialsFile: envOr("CREDENTIALS_FILE", "credentials.txt"),
		AdminUser:       envOr("ADMIN_USER", "admin"),
		AdminPassHash:   os.Getenv("ADMIN_PASS_HASH"),

		SpoolDir:       envOr("SPOOL_DIR", filepath.Join(os.TempDir(), "quizparse")),
		MaxUploadBytes: envInt("MAX_UPLOAD_BYTES", 32<<20),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://quiz.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:8000"),
		SecureCookies:      envBool("SECURE_COOKIES", mode == ModeOnline),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(k), 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
