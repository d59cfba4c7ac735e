package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	AppEnv  string // development | production
	GinMode string

	MongoURI string
	MongoDB  string

	JWTSecret     string
	JWTExpiresIn  time.Duration
	JWTCookieDays int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string

	StripeSecret   string
	StripeWHSecret string

	RateLimitMax    int
	RateLimitWindow time.Duration
}

func (e Env) IsProduction() bool {
	return e.AppEnv == "production"
}

// LoadEnv reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr: getString("APP_ADDR", ":8080"),
		AppEnv:  getString("APP_ENV", "development"),
		GinMode: strings.TrimSpace(os.Getenv("GIN_MODE")),

		MongoURI: getString("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getString("MONGO_DB", "tourbook"),

		JWTSecret:     getString("JWT_SECRET", ""),
		JWTExpiresIn:  getDuration("JWT_EXPIRES_IN", 90*24*time.Hour),
		JWTCookieDays: getInt("JWT_COOKIE_EXPIRES_IN", 90),

		SMTPHost:     getString("EMAIL_HOST", "localhost"),
		SMTPPort:     getInt("EMAIL_PORT", 587),
		SMTPUser:     strings.TrimSpace(os.Getenv("EMAIL_USERNAME")),
		SMTPPassword: os.Getenv("EMAIL_PASSWORD"),
		EmailFrom:    getString("EMAIL_FROM", "Tourbook <noreply@tourbook.local>"),

		StripeSecret:   strings.TrimSpace(os.Getenv("STRIPE_SECRET")),
		StripeWHSecret: strings.TrimSpace(os.Getenv("STRIPE_WH_SECRET")),

		RateLimitMax:    getInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", time.Hour),
	}
}

func getString(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
