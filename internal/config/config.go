package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once in main and passed by reference into the components
// that need it. Business logic never reads the environment directly.
type Config struct {
	Port     string
	DBDSN    string
	MediaDir string
	LogFile  string

	CORSOrigin string

	// Auth tokens
	JWTSecret string
	JWTTTL    time.Duration

	// One-time token validity windows
	ResetTokenTTL  time.Duration
	VerifyTokenTTL time.Duration

	BcryptCost int

	// Outbound mail
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Base URL used in verification/reset links
	PublicURL string
}

func Load() Config {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	cfg := Config{
		Port:     getenv("PORT", "8080"),
		DBDSN:    getenv("DB_DSN", "storefront.db"),
		MediaDir: getenv("MEDIA_DIR", "./media"),
		LogFile:  getenv("LOG_FILE", "./storefront.log"),

		CORSOrigin: getenv("CORS_ORIGIN", "http://localhost:3000"),

		JWTSecret: getenv("JWT_SECRET", "dev-only-secret-change-me"),
		JWTTTL:    getdur("JWT_TTL", 90*24*time.Hour),

		ResetTokenTTL:  getdur("RESET_TOKEN_TTL", 10*time.Minute),
		VerifyTokenTTL: getdur("VERIFY_TOKEN_TTL", time.Hour),

		BcryptCost: getint("BCRYPT_COST", 12),

		SMTPHost: getenv("EMAIL_HOST", "localhost"),
		SMTPPort: getint("EMAIL_PORT", 587),
		SMTPUser: os.Getenv("EMAIL_USER"),
		SMTPPass: os.Getenv("EMAIL_PASS"),
		MailFrom: getenv("EMAIL_FROM", "support@localhost"),

		PublicURL: getenv("PUBLIC_URL", "http://localhost:8080"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s", cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.LogFile)
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[config] invalid int for %s=%q, using %d", k, v, def)
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("[config] invalid duration for %s=%q, using %s", k, v, def)
	}
	return def
}
