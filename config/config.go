// Package config loads runtime configuration from the environment.
// File: config/config.go
package config

import (
	"os"
	"strings"
)

// Config carries every tunable the application reads at startup.
type Config struct {
	Env            string
	ServerPort     string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	JWTSecret      string
	JudgeURL       string
	JudgeAPIKey    string
	JudgeAPIHost   string
	SessionSecret  string
	ApplicationURL string
	AllowedOrigins []string
	MetricsEnabled bool
}

// Load reads configuration from environment variables, falling back to
// development defaults so the server boots locally with no .env file.
func Load() *Config {
	return &Config{
		Env:            getEnv("APP_ENV", "development"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "codeclash"),
		JWTSecret:      getEnv("JWT_SECRET", "super-secret-key-change-me"),
		JudgeURL:       getEnv("JUDGE_URL", "https://judge0-ce.p.rapidapi.com"),
		JudgeAPIKey:    getEnv("JUDGE_API_KEY", ""),
		JudgeAPIHost:   getEnv("JUDGE_API_HOST", "judge0-ce.p.rapidapi.com"),
		SessionSecret:  getEnv("SESSION_SECRET", "secret"),
		ApplicationURL: getEnv("APPLICATION_URL", "http://localhost:8080"),
		AllowedOrigins: splitEnv("WS_ALLOWED_ORIGINS"),
		MetricsEnabled: getEnv("METRICS_ENABLED", "false") == "true",
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// splitEnv reads a comma-separated list, dropping empty entries.
func splitEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
