package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Zinaxy/HailAndCottonPrac/internal/adapters/notify"
	"github.com/Zinaxy/HailAndCottonPrac/internal/adapters/storage"
	"github.com/Zinaxy/HailAndCottonPrac/internal/api"
	"github.com/Zinaxy/HailAndCottonPrac/internal/config"
	"github.com/Zinaxy/HailAndCottonPrac/internal/services"
)

// main is the application composition root.
// It wires the snapshot backend and placement notifier behind ports,
// loads the inventory and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}

// run serves until ctx is cancelled or the listener fails.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	snapshots, closeStore, err := storage.Open(ctx, cfg.StoreDriver, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	warehouse := services.NewWarehouse(
		snapshots,
		services.WithNotifier(notify.NewLogNotifier(nil)),
		services.WithLenientLoad(cfg.LenientLoad),
	)

	// A malformed snapshot stops startup unless lenient load is enabled.
	if err := warehouse.Initialize(ctx); err != nil {
		return err
	}
	log.Printf("Inventory loaded driver=%s packages=%d", cfg.StoreDriver, warehouse.Len())

	if cfg.SeedPath != "" {
		n, err := storage.SeedFromJSON(ctx, warehouse, cfg.SeedPath)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("Seeded packages count=%d path=%s", n, cfg.SeedPath)
		}
	}

	router := api.NewRouter(warehouse)

	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
