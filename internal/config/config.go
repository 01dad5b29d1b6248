package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all daemon configuration.
type Config struct {
	// ListenAddr is the TCP address of the exam protocol.
	ListenAddr string
	// AdminAddr is the HTTP report API address; empty disables it.
	AdminAddr string
	GinMode   string
	LogLevel  string
	LogFormat string
	// BankDir holds tests.yaml and the question files.
	BankDir     string
	DBDriver    string
	DatabaseURL string
	// SweepInterval is how often expired variants are collected.
	SweepInterval time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults. It loads .env if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", "127.0.0.1:65001"),
		AdminAddr:     getEnv("ADMIN_ADDR", "127.0.0.1:8080"),
		GinMode:       getEnv("GIN_MODE", "release"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "pretty"),
		BankDir:       getEnv("BANK_DIR", "./bank"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL:   getEnv("DATABASE_URL", "file:marks.db?_pragma=busy_timeout(5000)"),
		SweepInterval: time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 2)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
