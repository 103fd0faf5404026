package db

import (
	"testing"

	"clinup/pkg/config"
)

func TestConnStrings_PreferExplicitURLs(t *testing.T) {
	cfg := config.Config{
		DatabaseURL: "postgres://runtime",
		DirectURL:   "postgres://direct",
	}
	if got := runtimeConnString(cfg); got != "postgres://runtime" {
		t.Fatalf("runtime: got %q", got)
	}
	if got := migrationConnString(cfg); got != "postgres://direct" {
		t.Fatalf("migration: got %q", got)
	}
}

func TestDSN_DefaultsHostAndSSL(t *testing.T) {
	got := dsn(config.DBConfig{User: "u", Password: "p", Port: "5432", Name: "clinup"})
	want := "postgres://u:p@localhost:5432/clinup?sslmode=disable"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
