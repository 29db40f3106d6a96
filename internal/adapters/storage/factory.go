package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/Zinaxy/HailAndCottonPrac/internal/config"
	"github.com/Zinaxy/HailAndCottonPrac/internal/platform/db"
	"github.com/Zinaxy/HailAndCottonPrac/internal/ports"
)

// Supported STORE_DRIVER values.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

// Open selects a snapshot backend by driver name. The returned close func
// releases any connection the backend holds and is never nil.
func Open(ctx context.Context, driver string, cfg config.Config) (ports.SnapshotStore, func() error, error) {
	noop := func() error { return nil }

	switch driver {
	case "", DriverFile:
		return NewFileSnapshotStore(cfg.StorePath), noop, nil

	case DriverSQLite:
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		if err := InitSchema(conn); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return NewSQLSnapshotStore(conn, DialectSQLite), conn.Close, nil

	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("open store: DATABASE_URL is required for driver %q", driver)
		}
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		if err := InitSchema(conn); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return NewSQLSnapshotStore(conn, DialectPostgres), conn.Close, nil

	case DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("open store: ping redis %q: %w", cfg.RedisAddr, err)
		}
		return NewRedisSnapshotStore(client, cfg.RedisKey), client.Close, nil

	case DriverS3:
		s, err := OpenS3(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Key:       cfg.S3Key,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return s, noop, nil

	default:
		return nil, nil, fmt.Errorf("open store: unknown driver %q", driver)
	}
}

// Location names the resource a driver would open with cfg. File-backed
// drivers resolve to an absolute path, so a text snapshot and a SQLite
// database pointed at the same file compare equal.
func Location(driver string, cfg config.Config) string {
	switch driver {
	case "", DriverFile:
		return absPath(cfg.StorePath)
	case DriverSQLite:
		return absPath(cfg.SQLitePath)
	case DriverPostgres:
		return cfg.DatabaseURL
	case DriverRedis:
		return "redis://" + cfg.RedisAddr + "/" + cfg.RedisKey
	case DriverS3:
		return "s3://" + cfg.S3Bucket + "/" + cfg.S3Key
	default:
		return driver
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
