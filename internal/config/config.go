package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig    `mapstructure:"server"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Queue       QueueConfig     `mapstructure:"queue"`
	Detector    DetectorConfig  `mapstructure:"detector"`
	Predictor   PredictorConfig `mapstructure:"predictor"`
	Auth        AuthConfig      `mapstructure:"auth"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Departments []string        `mapstructure:"departments"` // Departments shown on the status board
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address (e.g. 0.0.0.0)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// StorageConfig represents snapshot storage configuration
type StorageConfig struct {
	DataDir     string `mapstructure:"data_dir"`     // Directory for the snapshot archive
	ArchiveFile string `mapstructure:"archive_file"` // Archive file name inside DataDir
}

// QueueConfig represents the snapshot ingestion queue configuration
type QueueConfig struct {
	Enabled  bool   `mapstructure:"enabled"`  // Enable queue-based ingestion
	Type     string `mapstructure:"type"`     // nats (default), redis, kafka, memory
	URL      string `mapstructure:"url"`      // Queue server URL
	Subject  string `mapstructure:"subject"`  // Subject/topic carrying snapshot messages
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`       // Redis database number
	RedisStream   string `mapstructure:"redis_stream"`   // Redis stream prefix
	RedisGroup    string `mapstructure:"redis_group"`    // Redis consumer group
	RedisConsumer string `mapstructure:"redis_consumer"` // Redis consumer name

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`  // Kafka broker addresses
	KafkaGroupID string   `mapstructure:"kafka_group_id"` // Kafka consumer group ID
}

// DetectorConfig represents anomaly detector configuration
type DetectorConfig struct {
	WindowSize     int           `mapstructure:"window_size"`     // Snapshots read per analysis pass
	MinSnapshots   int           `mapstructure:"min_snapshots"`   // Below this the detector does nothing
	SurgeZScore    float64       `mapstructure:"surge_zscore"`    // Z-score threshold for crowd surges
	AlertCooldown  time.Duration `mapstructure:"alert_cooldown"`  // Suppression window per issue type
	GrowthMinDelta int           `mapstructure:"growth_min_delta"` // Queue growth threshold over 3 snapshots
}

// PredictorConfig represents wait-time predictor configuration
type PredictorConfig struct {
	Trees           int `mapstructure:"trees"`            // Trees in the regression forest
	Seed            int `mapstructure:"seed"`             // Seed for deterministic training
	MaxDepth        int `mapstructure:"max_depth"`        // Max regression tree depth
	ForecastHours   int `mapstructure:"forecast_hours"`   // Default forecast horizon
	AssumedDoctors  int `mapstructure:"assumed_doctors"`  // Staffing assumption for forecasts
	MinutesPerVisit int `mapstructure:"minutes_per_visit"` // Heuristic minutes/patient/doctor
}

// AuthConfig represents API key authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	APIKeys []string `mapstructure:"api_keys"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("detector config: %w", err)
	}
	if err := c.Predictor.Validate(); err != nil {
		return fmt.Errorf("predictor config: %w", err)
	}
	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	return nil
}

// Validate validates storage configuration
func (c *StorageConfig) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.ArchiveFile == "" {
		return fmt.Errorf("archive_file is required")
	}
	return nil
}

// Validate validates detector configuration
func (c *DetectorConfig) Validate() error {
	if c.WindowSize < c.MinSnapshots {
		return fmt.Errorf("window_size (%d) must be at least min_snapshots (%d)", c.WindowSize, c.MinSnapshots)
	}
	if c.MinSnapshots < 3 {
		return fmt.Errorf("min_snapshots must be at least 3")
	}
	if c.SurgeZScore <= 0 {
		return fmt.Errorf("surge_zscore must be positive")
	}
	if c.AlertCooldown <= 0 {
		return fmt.Errorf("alert_cooldown must be positive")
	}
	return nil
}

// Validate validates predictor configuration
func (c *PredictorConfig) Validate() error {
	if c.Trees < 1 {
		return fmt.Errorf("trees must be at least 1")
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1")
	}
	if c.ForecastHours < 1 {
		return fmt.Errorf("forecast_hours must be at least 1")
	}
	if c.AssumedDoctors < 1 {
		return fmt.Errorf("assumed_doctors must be at least 1")
	}
	return nil
}
