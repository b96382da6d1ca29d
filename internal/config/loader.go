package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load loads configuration from file, falling back to defaults when no
// config file is present. Environment variables prefixed with OPDPULSE_
// override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/opdpulse")
	}

	setDefaults(v)

	v.SetEnvPrefix("OPDPULSE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)

	// Storage defaults
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.archive_file", "snapshots.snappy")

	// Queue defaults
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.type", "nats")
	v.SetDefault("queue.url", "nats://localhost:4222")
	v.SetDefault("queue.subject", "opd.queue.snapshots")

	// Detector defaults
	v.SetDefault("detector.window_size", 50)
	v.SetDefault("detector.min_snapshots", 10)
	v.SetDefault("detector.surge_zscore", 2.5)
	v.SetDefault("detector.alert_cooldown", "1h")
	v.SetDefault("detector.growth_min_delta", 10)

	// Predictor defaults
	v.SetDefault("predictor.trees", 100)
	v.SetDefault("predictor.seed", 42)
	v.SetDefault("predictor.max_depth", 8)
	v.SetDefault("predictor.forecast_hours", 24)
	v.SetDefault("predictor.assumed_doctors", 3)
	v.SetDefault("predictor.minutes_per_visit", 10)

	// Department board defaults
	v.SetDefault("departments", []string{"General", "Ortho", "ENT", "Cardiology", "Pediatrics"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ArchivePath returns the full path of the snapshot archive file
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Storage.DataDir, c.Storage.ArchiveFile)
}
