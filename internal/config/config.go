// Package config reads service settings from the process environment.
// Callers load an optional .env file with godotenv before calling Load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the settings shared by cmd/server and cmd/dbtool.
type Config struct {
	Port            string
	ShutdownTimeout int // seconds

	StoreDriver string
	StorePath   string
	SQLitePath  string
	LenientLoad bool
	SeedPath    string

	DatabaseURL string

	RedisAddr string
	RedisKey  string

	S3Bucket    string
	S3Key       string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// Load builds a Config from the environment, applying defaults.
func Load() (Config, error) {
	lenient, err := GetBool("STORE_LENIENT_LOAD", false)
	if err != nil {
		return Config{}, err
	}
	pathStyle, err := GetBool("S3_PATH_STYLE", false)
	if err != nil {
		return Config{}, err
	}
	shutdown, err := GetInt("SHUTDOWN_TIMEOUT", 10)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Port:            Get("PORT", "8080"),
		ShutdownTimeout: shutdown,

		StoreDriver: strings.ToLower(Get("STORE_DRIVER", "file")),
		StorePath:   Get("STORE_PATH", "packages.csv"),
		SQLitePath:  Get("SQLITE_PATH", "packages.db"),
		LenientLoad: lenient,
		SeedPath:    Get("SEED_PATH", ""),
		DatabaseURL: Get("DATABASE_URL", ""),
		RedisAddr:   Get("REDIS_ADDR", "localhost:6379"),
		RedisKey:    Get("REDIS_KEY", "warehouse:packages"),
		S3Bucket:    Get("S3_BUCKET", ""),
		S3Key:       Get("S3_KEY", "packages.csv"),
		S3Region:    Get("S3_REGION", "us-east-1"),
		S3Endpoint:  Get("S3_ENDPOINT", ""),
		S3PathStyle: pathStyle,
	}, nil
}

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetBool(key string, fallback bool) (bool, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a boolean: %w", key, v, err)
	}
	return b, nil
}

func GetInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, v, err)
	}
	return n, nil
}
