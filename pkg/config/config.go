package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	// API is what the client side (CLI, library users) talks to.
	API APIConfig

	// Stub configures the local stand-in backend under cmd/dev/stubapi.
	Stub StubConfig

	MigrationsPath string

	// DATABASE_URL: runtime connection, DIRECT_URL: migrations.
	// When both are empty and DB_HOST is unset the stand-in keeps everything in memory.
	DatabaseURL string
	DirectURL   string

	DB DBConfig
}

type APIConfig struct {
	BaseURL string

	// TokenFile is where the bearer token survives between CLI invocations.
	TokenFile string

	HTTPTimeout time.Duration

	// ReceiptDir receives downloaded receipts and CSV exports.
	ReceiptDir string
}

type StubConfig struct {
	HTTPAddr  string
	JWTSecret string
	TokenTTL  time.Duration

	// RateLimit is requests per second per client address; 0 disables limiting.
	RateLimit float64
	RateBurst int

	PaymentSessionTTL time.Duration

	// AllowedOrigins may call the stand-in from a browser (Expo web, Metro).
	AllowedOrigins []string

	// Seed loads the demo host, provider and reservations at startup.
	Seed bool
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8000"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		API: APIConfig{
			BaseURL:     strings.TrimRight(env("CLINUP_API_URL", "http://127.0.0.1:8000"), "/"),
			TokenFile:   env("CLINUP_TOKEN_FILE", defaultTokenFile()),
			HTTPTimeout: envDuration("CLINUP_HTTP_TIMEOUT", 20*time.Second),
			ReceiptDir:  env("CLINUP_RECEIPT_DIR", "."),
		},
		Stub: StubConfig{
			HTTPAddr:          httpAddr,
			JWTSecret:         env("JWT_SECRET", "dev-secret-change-me"),
			TokenTTL:          envDuration("JWT_TTL", 24*time.Hour),
			RateLimit:         envFloat("STUB_RATE_LIMIT", 20),
			RateBurst:         envInt("STUB_RATE_BURST", 40),
			PaymentSessionTTL: envDuration("PAYMENT_SESSION_TTL", 30*time.Minute),
			AllowedOrigins:    envList("STUB_ALLOWED_ORIGINS", "http://localhost:8081,http://localhost:19006"),
			Seed:              env("STUB_SEED", "true") == "true",
		},
		DB: DBConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "clinup"),
			User:     env("DB_USER", "clinup"),
			Password: env("DB_PASSWORD", "clinup"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
	}
}

// UsePostgres reports whether a database has been configured for the stand-in backend.
func (c Config) UsePostgres() bool {
	return strings.TrimSpace(c.DatabaseURL) != "" || strings.TrimSpace(c.DB.Host) != ""
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envInt(key string, fallback int) int {
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

func envList(key, fallback string) []string {
	var out []string
	for _, v := range strings.Split(env(key, fallback), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".clinup-token"
	}
	return dir + string(os.PathSeparator) + "clinup" + string(os.PathSeparator) + "token.json"
}
