package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Zinaxy/HailAndCottonPrac/internal/adapters/storage"
	"github.com/Zinaxy/HailAndCottonPrac/internal/config"
	"github.com/Zinaxy/HailAndCottonPrac/internal/domain"
	"github.com/Zinaxy/HailAndCottonPrac/internal/ports"
)

// dbtool copies the package snapshot from one backend to another, e.g. a
// packages.csv file into postgres. Every record is decoded before anything
// is written so a malformed source never reaches the target.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sourceDriver := strings.ToLower(config.Get("SOURCE_DRIVER", storage.DriverFile))
	sourceCfg := cfg
	sourceCfg.StorePath = config.Get("SOURCE_PATH", cfg.StorePath)
	sourceCfg.SQLitePath = config.Get("SOURCE_SQLITE_PATH", cfg.SQLitePath)

	if err := checkDistinct(sourceDriver, sourceCfg, cfg.StoreDriver, cfg); err != nil {
		return err
	}

	source, closeSource, err := storage.Open(ctx, sourceDriver, sourceCfg)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer closeQuietly("source", closeSource)

	target, closeTarget, err := storage.Open(ctx, cfg.StoreDriver, cfg)
	if err != nil {
		return fmt.Errorf("open target: %w", err)
	}
	defer closeQuietly("target", closeTarget)

	log.Printf("Migrating snapshot source=%s target=%s", sourceDriver, cfg.StoreDriver)
	n, err := migrate(ctx, source, target)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Printf("Migration complete. records=%d", n)
	return nil
}

// checkDistinct refuses a migration whose source and target resolve to the
// same resource, whatever drivers name them.
func checkDistinct(sourceDriver string, sourceCfg config.Config, targetDriver string, targetCfg config.Config) error {
	src := storage.Location(sourceDriver, sourceCfg)
	if src == storage.Location(targetDriver, targetCfg) {
		return fmt.Errorf("source and target are the same store (%s); set STORE_DRIVER, SOURCE_PATH or SQLITE_PATH", src)
	}
	return nil
}

func closeQuietly(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Printf("close %s: %v", name, err)
	}
}

func migrate(ctx context.Context, source, target ports.SnapshotStore) (int, error) {
	lines, err := source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate: load source: %w", err)
	}

	records := make([]string, 0, len(lines))
	for i, line := range lines {
		record, ok := domain.NormalizeRecordLine(line)
		if !ok {
			continue
		}
		if _, err := domain.DecodeRecord(record); err != nil {
			return 0, fmt.Errorf("migrate: source line %d: %w", i+1, err)
		}
		records = append(records, record)
	}

	if err := target.Replace(ctx, records); err != nil {
		return 0, fmt.Errorf("migrate: replace target: %w", err)
	}
	return len(records), nil
}
