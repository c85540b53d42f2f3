package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the entire application configuration
type Config struct {
	Downloaders []DownloaderConfig `mapstructure:"downloaders"`
	Directories []DirectoryConfig  `mapstructure:"directories"`
	Scheduler   SchedulerConfig    `mapstructure:"scheduler"`
	Logging     LoggingConfig      `mapstructure:"logging"`
	Database    DatabaseConfig     `mapstructure:"database"`
}

// DownloaderConfig describes one qBittorrent instance to manage
type DownloaderConfig struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Category limits the managed snapshot to items in this qBittorrent
	// category. Empty manages every item.
	Category string `mapstructure:"category"`

	// MaxActive caps how many items may be simultaneously active across all
	// monitored directories of this downloader. 0 means no cap.
	MaxActive int `mapstructure:"max_active"`

	// MaxActiveGB caps the summed remaining size of active items. 0 means
	// no cap.
	MaxActiveGB float64 `mapstructure:"max_active_gb"`
}

// MaxActiveBytes returns the capacity budget in bytes
func (d DownloaderConfig) MaxActiveBytes() int64 {
	return int64(d.MaxActiveGB * 1024 * 1024 * 1024)
}

// DirectoryConfig describes one monitored download directory
type DirectoryConfig struct {
	Path           string  `mapstructure:"path"`
	LowWatermarkGB float64 `mapstructure:"low_watermark_gb"`
}

// LowWatermarkBytes returns the watermark in bytes
func (d DirectoryConfig) LowWatermarkBytes() int64 {
	return int64(d.LowWatermarkGB * 1024 * 1024 * 1024)
}

// SchedulerConfig contains cycle scheduling settings
type SchedulerConfig struct {
	TickInterval   string `mapstructure:"tick_interval"`
	CommandTimeout string `mapstructure:"command_timeout"`

	// ReleaseOrder picks the resume ordering: "age" resumes oldest pauses
	// first, "size" resumes smallest remaining first.
	ReleaseOrder string `mapstructure:"release_order"`

	// SmartSkip keeps trying smaller candidates after an oversized one
	// does not fit the headroom. When false, release stops at the first
	// misfit.
	SmartSkip bool `mapstructure:"smart_skip"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from the specified file path
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Set defaults
	viper.SetDefault("scheduler.tick_interval", "2m")
	viper.SetDefault("scheduler.command_timeout", "30s")
	viper.SetDefault("scheduler.release_order", "age")
	viper.SetDefault("scheduler.smart_skip", true)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("database.path", "ledger.db")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Downloaders) == 0 {
		return fmt.Errorf("at least one downloader is required")
	}

	seen := make(map[string]bool, len(c.Downloaders))
	for i, d := range c.Downloaders {
		if d.Name == "" {
			return fmt.Errorf("downloaders[%d].name is required", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate downloader name: %s", d.Name)
		}
		seen[d.Name] = true
		if d.URL == "" {
			return fmt.Errorf("downloader %s: url is required", d.Name)
		}
		if d.MaxActive < 0 {
			return fmt.Errorf("downloader %s: max_active must not be negative", d.Name)
		}
		if d.MaxActiveGB < 0 {
			return fmt.Errorf("downloader %s: max_active_gb must not be negative", d.Name)
		}
	}

	if len(c.Directories) == 0 {
		return fmt.Errorf("at least one monitored directory is required")
	}
	for i, dir := range c.Directories {
		if dir.Path == "" {
			return fmt.Errorf("directories[%d].path is required", i)
		}
		if !filepath.IsAbs(dir.Path) {
			return fmt.Errorf("directory %s: path must be absolute", dir.Path)
		}
		if dir.LowWatermarkGB <= 0 {
			return fmt.Errorf("directory %s: low_watermark_gb must be positive", dir.Path)
		}
	}

	// Validate scheduler intervals
	if _, err := time.ParseDuration(c.Scheduler.TickInterval); err != nil {
		return fmt.Errorf("invalid scheduler.tick_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.Scheduler.CommandTimeout); err != nil {
		return fmt.Errorf("invalid scheduler.command_timeout: %w", err)
	}

	switch c.Scheduler.ReleaseOrder {
	case "age", "size":
		// Valid orderings
	default:
		return fmt.Errorf("invalid scheduler.release_order: %s", c.Scheduler.ReleaseOrder)
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// GetTickInterval returns the tick interval as time.Duration
func (c *SchedulerConfig) GetTickInterval() time.Duration {
	d, _ := time.ParseDuration(c.TickInterval)
	if d == 0 {
		return 2 * time.Minute
	}
	return d
}

// GetCommandTimeout returns the external-call timeout as time.Duration
func (c *SchedulerConfig) GetCommandTimeout() time.Duration {
	d, _ := time.ParseDuration(c.CommandTimeout)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}
