package api

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
)

// DefaultCustomerSeedFile seeds the in-memory repository when CUSTOMER_SEED_FILE is unset.
const DefaultCustomerSeedFile = "configs/customers.yaml"

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	ServiceName       string
	Environment       string
	Port              string
	LogLevel          slog.Level
	PostgresDSN       string
	PostgresDriver    platformpostgres.Driver
	AutoMigrate       bool
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	OTLPEndpoint      string
	OTLPInsecure      bool
	CustomerSeedFile  string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
// Files named in envFiles are loaded first without overriding variables that are already set;
// missing files are ignored.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}
	cfg := Config{
		ServiceName:       envDefault("SERVICE_NAME", "orders-api"),
		Environment:       envDefault("ENVIRONMENT", "local"),
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		OTLPEndpoint:      strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTLPInsecure:      strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")) != "0",
		CustomerSeedFile:  customerSeedFile(os.Getenv("CUSTOMER_SEED_FILE"), DefaultCustomerSeedFile),
	}
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("PORT must be a TCP port number, got %q", cfg.Port)
	}
	if cfg.LogLevel, err = platformobservability.ParseLevel(os.Getenv("LOG_LEVEL")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.PostgresDriver, err = platformpostgres.ParseDriver(os.Getenv("POSTGRES_DRIVER")); err != nil {
		return Config{}, fmt.Errorf("POSTGRES_DRIVER: %w", err)
	}
	cfg.AutoMigrate = true
	if raw := strings.TrimSpace(os.Getenv("DB_AUTO_MIGRATE")); raw != "" {
		if cfg.AutoMigrate, err = strconv.ParseBool(raw); err != nil {
			return Config{}, fmt.Errorf("DB_AUTO_MIGRATE must be a boolean, got %q", raw)
		}
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Observability maps the settings onto the observability bootstrap config.
func (c Config) Observability(serviceName string) platformobservability.Config {
	return platformobservability.Config{
		ServiceName:  serviceName,
		Environment:  c.Environment,
		LogLevel:     c.LogLevel,
		OTLPEndpoint: c.OTLPEndpoint,
		OTLPInsecure: c.OTLPInsecure,
	}
}

func loadEnvFiles(files []string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// customerSeedFile prefers the configured path and falls back to fallback
// only when that file exists.
func customerSeedFile(configured, fallback string) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return ""
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
