// Package config provides configuration management for the object storage simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jainsameer1991/object-storage/internal/topology"
	"github.com/spf13/viper"
)

// Config holds all configuration for the simulator.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Cluster     ClusterConfig     `mapstructure:"cluster"`
	CORS        CORSConfig        `mapstructure:"cors"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ClusterConfig describes the simulated topology and its timing.
type ClusterConfig struct {
	PartitionServers int           `mapstructure:"partition_servers"`
	ExtentNodes      int           `mapstructure:"extent_nodes"`
	Files            []string      `mapstructure:"files"`
	FilesManifest    string        `mapstructure:"files_manifest"`
	ElectionDelay    time.Duration `mapstructure:"election_delay"`
	RebalanceSeed    int64         `mapstructure:"rebalance_seed"`
}

// CORSConfig holds cross-origin settings for the dashboard.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimiterConfig holds rate limiter configuration.
type RateLimiterConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/object-storage/")
	}

	v.SetEnvPrefix("OBJECT_STORAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional, defaults and env still apply
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Cluster defaults
	v.SetDefault("cluster.partition_servers", 3)
	v.SetDefault("cluster.extent_nodes", 5)
	v.SetDefault("cluster.files", []string{})
	v.SetDefault("cluster.files_manifest", "")
	v.SetDefault("cluster.election_delay", "300ms")
	v.SetDefault("cluster.rebalance_seed", 0)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})

	// Rate limiter defaults
	v.SetDefault("rate_limiter.enabled", true)
	v.SetDefault("rate_limiter.requests_per_second", 1000.0)
	v.SetDefault("rate_limiter.burst_size", 100)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Cluster.PartitionServers < 1 {
		return fmt.Errorf("at least one partition server is required, got %d", c.Cluster.PartitionServers)
	}

	if c.Cluster.ExtentNodes < 3 {
		return fmt.Errorf("at least three extent nodes are required, got %d", c.Cluster.ExtentNodes)
	}

	if c.Cluster.ElectionDelay <= 0 {
		return fmt.Errorf("election delay must be positive")
	}

	if len(c.Cluster.Files) > 0 {
		if err := topology.ValidateFiles(c.Cluster.Files); err != nil {
			return fmt.Errorf("invalid cluster files: %w", err)
		}
	}

	if c.RateLimiter.Enabled {
		if c.RateLimiter.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate limiter requests per second must be positive")
		}
		if c.RateLimiter.BurstSize <= 0 {
			return fmt.Errorf("rate limiter burst size must be positive")
		}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
		}
		if c.Metrics.Port == c.Server.Port {
			return fmt.Errorf("metrics port %d conflicts with server port", c.Metrics.Port)
		}
	}

	return nil
}

// ResolveFiles returns the demo file set: the manifest if configured, then the
// inline list, then the built-in defaults.
func (c *ClusterConfig) ResolveFiles() ([]string, error) {
	if c.FilesManifest != "" {
		files, err := topology.LoadManifest(c.FilesManifest)
		if err != nil {
			return nil, fmt.Errorf("failed to load files manifest: %w", err)
		}
		return files, nil
	}
	if len(c.Files) > 0 {
		return append([]string(nil), c.Files...), nil
	}
	return append([]string(nil), topology.DefaultFiles...), nil
}
