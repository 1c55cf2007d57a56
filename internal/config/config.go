package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP       HTTPConfig
	Bunq       BunqConfig
	TokenStore TokenStoreConfig
	Graph      GraphConfig
	Logging    LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
}

// Mode selects the account data source.
type Mode string

const (
	ModeDemo Mode = "demo"
	ModeLive Mode = "live"
)

// BunqConfig describes the upstream banking API and the demo data source.
type BunqConfig struct {
	Mode              Mode
	BaseURL           string
	APIKey            string
	PublicKeyFile     string
	DeviceDescription string
	RequestTimeout    time.Duration
	DemoLatency       bool
	DemoSeed          int64
}

// Demo reports whether the mock data source is selected.
func (c BunqConfig) Demo() bool {
	return c.Mode != ModeLive
}

// TokenStoreConfig controls where credentials are persisted between runs.
type TokenStoreConfig struct {
	Path   string // empty keeps tokens in memory
	Secret string // non-empty seals values at rest
}

// GraphConfig describes connectivity to the optional Neo4j mirror.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultHost              = "0.0.0.0"
	defaultPort              = 8080
	defaultReadTimeout       = 10 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultLoggingLevel      = "info"
	defaultLoggingFormat     = "text"
	defaultGraphMaxSessions  = 10
	defaultBunqBaseURL       = "https://api.bunq.com/v1"
	defaultDeviceDescription = "Bunq Dashboard"
	defaultRequestTimeout    = 30 * time.Second
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host:            valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Bunq: BunqConfig{
			BaseURL:           strings.TrimRight(valueOrDefault("BUNQ_BASE_URL", defaultBunqBaseURL), "/"),
			APIKey:            os.Getenv("BUNQ_API_KEY"),
			PublicKeyFile:     os.Getenv("BUNQ_PUBLIC_KEY_FILE"),
			DeviceDescription: valueOrDefault("BUNQ_DEVICE_DESCRIPTION", defaultDeviceDescription),
			RequestTimeout:    defaultRequestTimeout,
			DemoLatency:       parseBoolWithDefault("BUNQ_DEMO_LATENCY", true),
			DemoSeed:          int64(parseIntWithDefault("BUNQ_DEMO_SEED", 0)),
		},
		TokenStore: TokenStoreConfig{
			Path:   os.Getenv("TOKEN_STORE_PATH"),
			Secret: os.Getenv("TOKEN_STORE_SECRET"),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Graph: GraphConfig{
			URI:            os.Getenv("GRAPH_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       os.Getenv("GRAPH_USERNAME"),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	mode, err := parseMode("BUNQ_MODE")
	if err != nil {
		return Config{}, err
	}
	cfg.Bunq.Mode = mode

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"BUNQ_REQUEST_TIMEOUT", &cfg.Bunq.RequestTimeout},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.target); err != nil {
			return Config{}, err
		}
	}

	cfg.HTTP.MetricsEnabled = parseBoolWithDefault("SERVER_METRICS_ENABLED", false)
	cfg.HTTP.AllowedOriginsCSV = os.Getenv("SERVER_ALLOWED_ORIGINS")

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*target = d
	return nil
}

func parseMode(key string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "", string(ModeDemo), "test", "mock":
		return ModeDemo, nil
	case string(ModeLive), "real":
		return ModeLive, nil
	default:
		return "", fmt.Errorf("invalid %s value %q: want demo or live", key, os.Getenv(key))
	}
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
