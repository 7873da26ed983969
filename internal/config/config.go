// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Data        DataConfig
	Server      ServerConfig
	Auth        AuthConfig
	Progression ProgressionConfig
	Jobs        JobsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds storage configuration.
type DataConfig struct {
	// Dir is the base directory for the database and key files.
	Dir string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name         string
	Host         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes)
	AccessTokenKey []byte
	// AccessTokenDuration e.g. 15m
	AccessTokenDuration time.Duration
}

// ProgressionConfig holds the tunables of the progression engine.
type ProgressionConfig struct {
	// Timezone is the canonical zone for streak days and leaderboard windows.
	Timezone string
	// FreezeCostCoins is the coin price of one streak freeze (default: 50).
	FreezeCostCoins int
	// MaxFreezes is the cap on held freezes (default: 3).
	MaxFreezes int
	// LeaderboardCacheTTL bounds staleness of cached top-N pages (default: 30s).
	LeaderboardCacheTTL time.Duration
}

// JobsConfig holds background job cadences.
type JobsConfig struct {
	MissionSweepInterval time.Duration // expire past-due missions (default: 10m)
	RankRefreshInterval  time.Duration // rewarm leaderboard caches (default: 5m)
	ReconcileInterval    time.Duration // ledger mirror reconciliation (default: 24h)
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataDir := flag.String("data-dir", "", "Base directory for database and key files")
	serverName := flag.String("server-name", "", "Name for the server")

	// Auth flags
	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")

	// Server flags
	serverHost := flag.String("host", "", "Server bind host (default: 0.0.0.0)")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	// Progression flags
	timezone := flag.String("timezone", "", "Canonical timezone for streaks and leaderboards (default: UTC)")
	freezeCost := flag.String("freeze-cost", "", "Coin price of one streak freeze (default: 50)")
	maxFreezes := flag.String("max-freezes", "", "Maximum held streak freezes (default: 3)")
	leaderboardCacheTTL := flag.String("leaderboard-cache-ttl", "", "Leaderboard cache TTL (default: 30s)")

	// Job flags
	missionSweepInterval := flag.String("mission-sweep-interval", "", "Mission expiry sweep cadence (default: 10m)")
	rankRefreshInterval := flag.String("rank-refresh-interval", "", "Leaderboard cache rewarm cadence (default: 5m)")
	reconcileInterval := flag.String("reconcile-interval", "", "Ledger reconciliation cadence (default: 24h)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			Dir: getConfigValue(*dataDir, "DATA_DIR", ""),
		},
		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "EcoMinds Server"),
			Host: getConfigValue(*serverHost, "SERVER_HOST", "0.0.0.0"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Auth: AuthConfig{
			AccessTokenKey: nil, // Set by auth.LoadOrGenerateKey in main
		},
		Progression: ProgressionConfig{
			Timezone:        getConfigValue(*timezone, "PROGRESSION_TIMEZONE", "UTC"),
			FreezeCostCoins: getIntConfigValue(*freezeCost, "FREEZE_COST_COINS", 50),
			MaxFreezes:      getIntConfigValue(*maxFreezes, "MAX_FREEZES", 3),
		},
	}

	// Parse auth durations.
	accessDurationStr := getConfigValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m")
	accessDuration, err := time.ParseDuration(accessDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid access token duration %q: %w", accessDurationStr, err)
	}
	cfg.Auth.AccessTokenDuration = accessDuration

	// Parse server timeouts.
	cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	// Parse progression and job cadences.
	cfg.Progression.LeaderboardCacheTTL, err = parseDurationValue(*leaderboardCacheTTL, "LEADERBOARD_CACHE_TTL", "30s")
	if err != nil {
		return nil, err
	}
	cfg.Jobs.MissionSweepInterval, err = parseDurationValue(*missionSweepInterval, "MISSION_SWEEP_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	cfg.Jobs.RankRefreshInterval, err = parseDurationValue(*rankRefreshInterval, "RANK_REFRESH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	cfg.Jobs.ReconcileInterval, err = parseDurationValue(*reconcileInterval, "RECONCILE_INTERVAL", "24h")
	if err != nil {
		return nil, err
	}

	// Expand and validate the data directory.
	if err := cfg.expandDataDir(); err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.Dir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}

	if _, err := time.LoadLocation(c.Progression.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Progression.Timezone, err)
	}

	if c.Progression.FreezeCostCoins < 0 {
		return fmt.Errorf("freeze cost cannot be negative: %d", c.Progression.FreezeCostCoins)
	}
	if c.Progression.MaxFreezes < 1 {
		return fmt.Errorf("max freezes must be at least 1: %d", c.Progression.MaxFreezes)
	}

	return nil
}

// Location returns the canonical timezone for streak days and windows.
// Validate guarantees the zone parses, so errors here mean the config was mutated.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Progression.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataDir expands ~ and makes the path absolute.
func (c *Config) expandDataDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "EcoMinds", "data")

	expanded, err := expandPath(c.Data.Dir, defaultPath)
	if err != nil {
		return err
	}
	c.Data.Dir = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(strings.ReplaceAll(envKey, "_", " ")), strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
