// Package config reads the client's environment-driven settings.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"
)

// StoreKind selects the local persistent store adapter.
type StoreKind string

const (
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
	StoreMemory   StoreKind = "memory"
)

const (
	defaultAPIURL        = "http://localhost:8080"
	defaultStoreDSN      = "sqlite:file:lpg-cart.db"
	defaultHTTPTimeout   = 10 * time.Second
	defaultProbeInterval = 15 * time.Second
)

// Config carries environment-driven settings for the cart client.
type Config struct {
	APIURL   string
	APIToken string
	OwnerID  string

	StoreKind StoreKind
	// StoreDSN is the adapter-specific part of LOCAL_STORE_DSN, without the kind prefix.
	StoreDSN string

	HTTPTimeout   time.Duration
	ProbeInterval time.Duration

	LogLevel   slog.Level
	OtelStdout bool
}

// Load reads environment variables, applies defaults and validates basic constraints.
// The owner id falls back to the API token when unset.
func Load() (Config, error) {
	cfg := Config{
		APIURL:     envDefault("CART_API_URL", defaultAPIURL),
		APIToken:   strings.TrimSpace(os.Getenv("CART_API_TOKEN")),
		OwnerID:    strings.TrimSpace(os.Getenv("CART_OWNER_ID")),
		OtelStdout: isTruthy(os.Getenv("OTEL_STDOUT")),
	}
	if cfg.OwnerID == "" {
		cfg.OwnerID = cfg.APIToken
	}

	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return Config{}, fmt.Errorf("CART_API_URL is not a valid URL: %w", err)
	}

	kind, dsn, err := ParseStoreDSN(envDefault("LOCAL_STORE_DSN", defaultStoreDSN))
	if err != nil {
		return Config{}, err
	}
	cfg.StoreKind, cfg.StoreDSN = kind, dsn

	if cfg.HTTPTimeout, err = durationEnv("HTTP_TIMEOUT", defaultHTTPTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ProbeInterval, err = durationEnv("PROBE_INTERVAL", defaultProbeInterval); err != nil {
		return Config{}, err
	}

	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL is not valid: %w", err)
		}
	}

	return cfg, nil
}

// ParseStoreDSN splits "sqlite:<path>", "postgres:<url>" or "memory".
func ParseStoreDSN(raw string) (StoreKind, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == string(StoreMemory) {
		return StoreMemory, "", nil
	}

	kind, dsn, ok := strings.Cut(raw, ":")
	if !ok || strings.TrimSpace(dsn) == "" {
		return "", "", fmt.Errorf("LOCAL_STORE_DSN[%s] must look like sqlite:<path>, postgres:<url> or memory", raw)
	}

	switch StoreKind(kind) {
	case StoreSQLite, StorePostgres:
		return StoreKind(kind), dsn, nil
	default:
		return "", "", fmt.Errorf("LOCAL_STORE_DSN kind[%s] is not supported", kind)
	}
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
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
