package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinup/internal/stubapi"
	"clinup/pkg/config"
	"clinup/pkg/db"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := slog.LevelInfo
	if cfg.AppEnv == "dev" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var store stubapi.Store
	if cfg.UsePostgres() {
		conn, err := db.Open(ctx, cfg)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer conn.Close()

		migrations := cfg.MigrationsPath
		if migrations == "" {
			migrations = "file://migrations"
		}
		if err := db.Migrate(migrations, cfg); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		store = stubapi.NewPostgres(conn)
	} else {
		log.Printf("no database configured, keeping data in memory")
		store = stubapi.NewMemory()
	}

	if cfg.Stub.Seed {
		if err := seed(ctx, store); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	router := stubapi.NewRouter(stubapi.Dependencies{
		Cfg:    cfg,
		Store:  store,
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              cfg.Stub.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("stub api listening on %s", cfg.Stub.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}

// seed loads the demo data once; a database that already holds the demo host is left alone.
func seed(ctx context.Context, store stubapi.Store) error {
	_, err := store.UserByEmail(ctx, stubapi.SeedHostEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, stubapi.ErrNotFound) {
		return err
	}
	d, err := stubapi.Seed(ctx, store, 0)
	if err != nil {
		return err
	}
	log.Printf("seeded %s / %s (password %q), reservations %s..%s",
		stubapi.SeedHostEmail, stubapi.SeedProviderEmail, stubapi.SeedPassword, d.Open, d.Paid)
	return nil
}
