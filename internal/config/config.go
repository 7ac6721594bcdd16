package config

import (
	"os"
	"strconv"
	"strings"

	"gokaizen/domain/study"
	"gokaizen/internal/errors"
)

// Supported archive drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logging    LoggingConfig
	Simulation study.SimulationParams
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
}

// DatabaseConfig holds the optional archive connection.
// An empty URL disables the archive.
type DatabaseConfig struct {
	URL    string
	Driver string
}

// Enabled reports whether an archive database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Verbose    bool
	LogsFolder string
}

// defaultOrigins are the local frontend dev servers
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:     *loadServerConfig(),
		Database:   *loadDatabaseConfig(),
		Logging:    *loadLoggingConfig(),
		Simulation: loadSimulationDefaults(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8000"),
		GinMode:        getEnvOrDefault("GIN_MODE", "release"),
		AllowedOrigins: getEnvListOrDefault("ALLOWED_ORIGINS", defaultOrigins),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:    os.Getenv("DATABASE_URL"),
		Driver: getEnvOrDefault("DB_DRIVER", DriverPostgres),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Verbose:    getEnvBoolOrDefault("LOG_VERBOSE", false),
		LogsFolder: os.Getenv("LOGS_FOLDER"),
	}
}

func loadSimulationDefaults() study.SimulationParams {
	d := study.DefaultSimulationParams()
	return study.SimulationParams{
		NBefore:    getEnvIntOrDefault("SIM_N_BEFORE", d.NBefore),
		NAfter:     getEnvIntOrDefault("SIM_N_AFTER", d.NAfter),
		BeforeMean: getEnvFloatOrDefault("SIM_BEFORE_MEAN", d.BeforeMean),
		AfterMean:  getEnvFloatOrDefault("SIM_AFTER_MEAN", d.AfterMean),
		BeforeStd:  getEnvFloatOrDefault("SIM_BEFORE_STD", d.BeforeStd),
		AfterStd:   getEnvFloatOrDefault("SIM_AFTER_STD", d.AfterStd),
	}
}

func validateConfig(config *Config) error {
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric, got " + strconv.Quote(config.Server.Port))
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	if config.Database.Enabled() {
		switch config.Database.Driver {
		case DriverPostgres, DriverSQLite:
		default:
			return errors.ConfigInvalid("DB_DRIVER must be postgres or sqlite3")
		}
	}
	s := config.Simulation
	if s.NBefore <= 0 || s.NAfter <= 0 || s.BeforeMean <= 0 || s.AfterMean <= 0 || s.BeforeStd <= 0 || s.AfterStd <= 0 {
		return errors.ConfigInvalid("simulation defaults must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
