package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Storage drivers accepted by CARS_STORE.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config aggregates every setting the service reads at startup.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
	Events  EventsConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	events, err := loadEventsConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Storage: storage, Log: logCfg, Events: events}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	origins := parseListEnv("CORS_ALLOWED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are taken verbatim.
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// StorageConfig selects and configures the car Store.
type StorageConfig struct {
	Driver          string
	FilePath        string
	DatabaseURL     string
	SerializeWrites bool
}

func loadStorageConfig() (StorageConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("CARS_STORE", DriverFile))
	switch driver {
	case DriverFile, DriverPostgres, DriverMemory:
	default:
		return StorageConfig{}, fmt.Errorf("invalid CARS_STORE value %q: want %s, %s or %s", driver, DriverFile, DriverPostgres, DriverMemory)
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if driver == DriverPostgres && databaseURL == "" {
		return StorageConfig{}, fmt.Errorf("DATABASE_URL is required when CARS_STORE=%s", DriverPostgres)
	}

	serialize, err := parseBoolEnv("CARS_SERIALIZE_WRITES", true)
	if err != nil {
		return StorageConfig{}, err
	}

	return StorageConfig{
		Driver:          driver,
		FilePath:        getEnvOrDefault("CARS_FILE", "cars.json"),
		DatabaseURL:     databaseURL,
		SerializeWrites: serialize,
	}, nil
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() (LogConfig, error) {
	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json"))
	if format != "json" && format != "console" {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q", format)
	}
	return LogConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format: format,
	}, nil
}

// EventsConfig toggles the change feed endpoints.
type EventsConfig struct {
	Enabled bool
}

func loadEventsConfig() (EventsConfig, error) {
	enabled, err := parseBoolEnv("CARS_EVENTS_ENABLED", true)
	if err != nil {
		return EventsConfig{}, err
	}
	return EventsConfig{Enabled: enabled}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseListEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
