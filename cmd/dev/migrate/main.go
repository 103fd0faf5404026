package main

import (
	"context"
	"fmt"
	"os"

	"clinup/pkg/config"
	"clinup/pkg/db"
)

func main() {
	cfg := config.Load()
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "file://migrations"
	}
	if !cfg.UsePostgres() {
		fmt.Fprintln(os.Stderr, "set DATABASE_URL or DB_HOST to migrate the stub api database")
		os.Exit(1)
	}

	// DIRECT_URL wins over DATABASE_URL for migrations.
	if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}

	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime db open failed: %v\n", err)
		os.Exit(1)
	}
	pool.Close()

	fmt.Println("migrations applied")
}
