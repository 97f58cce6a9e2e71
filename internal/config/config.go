// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir       string // Base directory for the database and snapshot dumps
	DriverURL     string // Base URL of the UI-automation driver (e.g. http://localhost:4723)
	DeviceName    string // Device identifier (emulator serial or real device ID)
	AppPackage    string // Android package name of the target app
	AppActivity   string // Activity launched when the session opens
	LanguagePair  string // Language-pair marker token as rendered by the app
	ScrapeCron    string // Cron expression for scheduled scrape sessions ("" disables)
	DumpSnapshots bool   // Persist every captured screen snapshot for replay
	LogLevel      string
	Port          int
	DevMode       bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("BOOKHOUND_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:       absDataDir,
		DriverURL:     getEnv("BOOKHOUND_DRIVER_URL", "http://localhost:4723"),
		DeviceName:    getEnv("BOOKHOUND_DEVICE_NAME", "emulator-5554"),
		AppPackage:    getEnv("BOOKHOUND_APP_PACKAGE", "com.wordsynknetwork.moj"),
		AppActivity:   getEnv("BOOKHOUND_APP_ACTIVITY", ".MainActivity"),
		LanguagePair:  getEnv("BOOKHOUND_LANGUAGE_PAIR", "English to Polish"),
		ScrapeCron:    getEnv("BOOKHOUND_SCRAPE_CRON", ""),
		DumpSnapshots: getEnvAsBool("BOOKHOUND_DUMP_SNAPSHOTS", false),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Port:          getEnvAsInt("BOOKHOUND_PORT", 8011),
		DevMode:       getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DriverURL == "" {
		return fmt.Errorf("driver URL must not be empty")
	}
	if c.LanguagePair == "" {
		return fmt.Errorf("language pair marker must not be empty")
	}
	if c.AppPackage == "" {
		return fmt.Errorf("app package must not be empty")
	}
	return nil
}

// DatabasePath returns the path of the bookings database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "bookings.db")
}

// SnapshotDir returns the directory snapshot dumps are written to.
func (c *Config) SnapshotDir() string {
	return filepath.Join(c.DataDir, "snapshots")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
