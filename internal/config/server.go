package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ServerConfig holds dayboard-server settings read from the environment
type ServerConfig struct {
	Port           string
	DatabaseDriver string // postgres or sqlite
	DatabaseURL    string // DSN for postgres, file path for sqlite
	RedisURL       string
	CacheTTL       time.Duration
	JWTSecret      string
	JWKSURL        string
	JWTAudience    string
	JWTIssuer      string
	AdminSubjects  []string
	Location       *time.Location
	LogLevel       string
	LogJSON        bool
}

// LoadServer reads the server settings
func LoadServer() (*ServerConfig, error) {
	cfg := &ServerConfig{
		Port:           getEnv("PORT", "8080"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/dayboard?sslmode=disable"),
		RedisURL:       os.Getenv("REDIS_URL"),
		CacheTTL:       5 * time.Minute,
		JWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
		JWKSURL:        os.Getenv("AUTH_JWKS_URL"),
		JWTAudience:    os.Getenv("AUTH_AUDIENCE"),
		JWTIssuer:      os.Getenv("AUTH_ISSUER"),
		AdminSubjects:  splitList(os.Getenv("ADMIN_SUBJECTS")),
		Location:       time.Local,
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		LogJSON:        os.Getenv("LOG_FORMAT") == "json",
	}

	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl < 0 {
			return nil, fmt.Errorf("invalid CACHE_TTL %q", raw)
		}
		cfg.CacheTTL = ttl
	}

	if tz := os.Getenv("TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if cfg.JWTSecret != "" && cfg.JWKSURL != "" {
		return nil, fmt.Errorf("set only one of AUTH_JWT_SECRET and AUTH_JWKS_URL")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
