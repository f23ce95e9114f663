package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	AppEnv                  string
	LogLevel                string
	AllowedOrigin           string
	DatabaseURL             string
	SQLitePath              string
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	AuthSecret              string
	TokenTTLHours           int
	MLServiceURL            string
	MLTimeoutSeconds        int
	ForecastCacheTTLSeconds int
	Timezone                string
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	_ = godotenv.Load()

	secret := strings.TrimSpace(os.Getenv("AUTH_SECRET"))
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	}

	return Config{
		Port:                    getEnv("PORT", "5000"),
		AppEnv:                  getEnv("APP_ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		AllowedOrigin:           getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:              strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getInt("REDIS_DB", 0, 0),
		AuthSecret:              secret,
		TokenTTLHours:           getInt("TOKEN_TTL_HOURS", 168, 1),
		MLServiceURL:            getEnv("ML_SERVICE_URL", "http://localhost:8000"),
		MLTimeoutSeconds:        getInt("ML_TIMEOUT_SECONDS", 10, 1),
		ForecastCacheTTLSeconds: getInt("FORECAST_CACHE_TTL_SECONDS", 300, 1),
		Timezone:                getEnv("TIMEZONE", "UTC"),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c Config) MLTimeout() time.Duration {
	return time.Duration(c.MLTimeoutSeconds) * time.Second
}

func (c Config) ForecastCacheTTL() time.Duration {
	return time.Duration(c.ForecastCacheTTLSeconds) * time.Second
}

// Location resolves TIMEZONE. Day boundaries in analytics and date filters
// are taken in this zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key string, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}

// getInt falls back when the value is missing, malformed or below min.
func getInt(key string, fallback int, min int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || v < min {
		return fallback
	}
	return v
}
