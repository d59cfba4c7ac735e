package config

import (
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	for _, key := range []string{"APP_ADDR", "APP_ENV", "JWT_EXPIRES_IN", "JWT_COOKIE_EXPIRES_IN", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW"} {
		t.Setenv(key, "")
	}

	env := LoadEnv()

	if env.AppAddr != ":8080" {
		t.Fatalf("AppAddr = %q", env.AppAddr)
	}
	if env.IsProduction() {
		t.Fatalf("default environment should not be production")
	}
	if env.JWTExpiresIn != 90*24*time.Hour {
		t.Fatalf("JWTExpiresIn = %v", env.JWTExpiresIn)
	}
	if env.RateLimitMax != 100 || env.RateLimitWindow != time.Hour {
		t.Fatalf("rate limit defaults: max=%d window=%v", env.RateLimitMax, env.RateLimitWindow)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_EXPIRES_IN", "24h")
	t.Setenv("RATE_LIMIT_MAX", "50")

	env := LoadEnv()

	if !env.IsProduction() {
		t.Fatalf("APP_ENV override ignored")
	}
	if env.JWTExpiresIn != 24*time.Hour {
		t.Fatalf("JWTExpiresIn = %v", env.JWTExpiresIn)
	}
	if env.RateLimitMax != 50 {
		t.Fatalf("RateLimitMax = %d", env.RateLimitMax)
	}
}

func TestLoadEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "plenty")
	t.Setenv("JWT_EXPIRES_IN", "soon")

	env := LoadEnv()

	if env.RateLimitMax != 100 {
		t.Fatalf("RateLimitMax = %d, want fallback", env.RateLimitMax)
	}
	if env.JWTExpiresIn != 90*24*time.Hour {
		t.Fatalf("JWTExpiresIn = %v, want fallback", env.JWTExpiresIn)
	}
}
