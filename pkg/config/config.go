// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the application configuration
type Config struct {
	// Data directories
	RawDataDir      string
	PreparedDataDir string
	CubeOutputDir   string

	// Warehouse connection
	Warehouse *WarehouseConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		RawDataDir:      getEnv("RAW_DATA_DIR", filepath.Join(dataDir, "raw")),
		PreparedDataDir: getEnv("PREPARED_DATA_DIR", filepath.Join(dataDir, "prepared")),
		CubeOutputDir:   getEnv("CUBE_OUTPUT_DIR", filepath.Join(dataDir, "olap_cubing_outputs")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
	}

	whConfig, err := LoadWarehouseConfig(dataDir)
	if err != nil {
		return nil, errors.New("failed to load warehouse configuration: " + err.Error())
	}
	cfg.Warehouse = whConfig

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.RawDataDir == "" {
		return errors.New("raw data directory is required")
	}

	if c.PreparedDataDir == "" {
		return errors.New("prepared data directory is required")
	}

	if c.Warehouse == nil {
		return errors.New("warehouse configuration is required")
	}

	return c.Warehouse.Validate()
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
