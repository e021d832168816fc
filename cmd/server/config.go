package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// config is read from the environment once at startup.
type config struct {
	DatabaseURL        string
	LogLevel           string
	Env                string
	Port               string
	DBMaxConns         int
	AttributeCacheSize int
	Compression        bool
	CompressThreshold  int
	ShutdownTimeout    time.Duration
	FilterLocation     *time.Location
}

func loadConfig() config {
	return config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Env:                getEnv("APP_ENV", "development"),
		Port:               getEnv("APP_PORT", "8080"),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 20),
		AttributeCacheSize: getEnvInt("ATTRIBUTE_CACHE_SIZE", 1024),
		Compression:        getEnvBool("COMPRESSION_ENABLED", true),
		CompressThreshold:  getEnvInt("COMPRESSION_THRESHOLD", 1024),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		FilterLocation:     getEnvLocation("FILTER_TIMEZONE", time.UTC),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvLocation(key string, defaultValue *time.Location) *time.Location {
	if value := os.Getenv(key); value != "" {
		if loc, err := time.LoadLocation(value); err == nil {
			return loc
		}
	}
	return defaultValue
}
