// Package config loads server and device settings with viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DUMP_HIERARCHY_SERVER_PORT.
const EnvPrefix = "DUMP_HIERARCHY"

// Config is the full application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"     yaml:"logger"`
	Server     ServerConfig     `mapstructure:"server"     yaml:"server"`
	Selector   SelectorConfig   `mapstructure:"selector"   yaml:"selector"`
	Input      InputConfig      `mapstructure:"input"      yaml:"input"`
	Watch      WatchConfig      `mapstructure:"watch"      yaml:"watch"`
	Screenshot ScreenshotConfig `mapstructure:"screenshot" yaml:"screenshot"`
	Device     DeviceConfig     `mapstructure:"device"     yaml:"device"`
}

// LoggerConfig configures the zap logger and its optional rotated file sink.
type LoggerConfig struct {
	Level       string `mapstructure:"level"        yaml:"level"`
	Format      string `mapstructure:"format"       yaml:"format"`
	AddSource   bool   `mapstructure:"add_source"   yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file"     yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size"     yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups"  yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"      yaml:"max_age"`
	Compress    bool   `mapstructure:"compress"     yaml:"compress"`
}

// ServerConfig configures the control-plane listener.
type ServerConfig struct {
	Host       string `mapstructure:"host"        yaml:"host"`
	Port       int    `mapstructure:"port"        yaml:"port"`
	MaxWorkers int    `mapstructure:"max_workers" yaml:"max_workers"`
	// ReadTimeout bounds reading one request; 0 disables the deadline.
	ReadTimeout  time.Duration `mapstructure:"read_timeout"   yaml:"read_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	// DumpCacheTTL is how long a /dump result may be reused; 0 disables caching.
	DumpCacheTTL time.Duration `mapstructure:"dump_cache_ttl" yaml:"dump_cache_ttl"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SelectorConfig configures element lookups.
type SelectorConfig struct {
	DefaultTimeout time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"   yaml:"poll_interval"`
}

// InputConfig configures the fixed pauses of gestures and text input.
type InputConfig struct {
	ClickDelay        time.Duration `mapstructure:"click_delay"         yaml:"click_delay"`
	MultiPointerDelay time.Duration `mapstructure:"multi_pointer_delay" yaml:"multi_pointer_delay"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"        yaml:"settle_delay"`
	SwipeDuration     time.Duration `mapstructure:"swipe_duration"      yaml:"swipe_duration"`
}

// WatchConfig configures the change-watch loop.
type WatchConfig struct {
	EventTimeout time.Duration `mapstructure:"event_timeout" yaml:"event_timeout"`
}

// ScreenshotConfig holds screenshot defaults.
type ScreenshotConfig struct {
	DefaultQuality int     `mapstructure:"default_quality" yaml:"default_quality"`
	DefaultScale   float64 `mapstructure:"default_scale"   yaml:"default_scale"`
}

// DeviceConfig selects the device backend.
type DeviceConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Fixture string `mapstructure:"fixture" yaml:"fixture"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "dump-hierarchy")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Server --
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 9000)
	v.SetDefault("server.max_workers", 16)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 8<<20)
	v.SetDefault("server.dump_cache_ttl", "500ms")

	// -- Selector --
	v.SetDefault("selector.default_timeout", "5s")
	v.SetDefault("selector.poll_interval", "100ms")

	// -- Input --
	v.SetDefault("input.click_delay", "50ms")
	v.SetDefault("input.multi_pointer_delay", "5ms")
	v.SetDefault("input.settle_delay", "100ms")
	v.SetDefault("input.swipe_duration", "500ms")

	// -- Watch --
	v.SetDefault("watch.event_timeout", "1s")

	// -- Screenshot --
	v.SetDefault("screenshot.default_quality", 80)
	v.SetDefault("screenshot.default_scale", 1.0)

	// -- Device --
	v.SetDefault("device.backend", "sim")
	v.SetDefault("device.fixture", "")
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path on top of defaults and
// environment variables.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper decodes and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefaultConfig returns the configuration with every default applied.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return cfg
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxWorkers <= 0 {
		errs = append(errs, fmt.Errorf("server.max_workers must be a positive integer"))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must not be negative"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be a positive integer"))
	}
	if c.Server.DumpCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("server.dump_cache_ttl must not be negative"))
	}
	if c.Selector.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("selector.poll_interval must be positive"))
	}
	if c.Selector.DefaultTimeout < 0 {
		errs = append(errs, fmt.Errorf("selector.default_timeout must not be negative"))
	}
	if c.Watch.EventTimeout <= 0 {
		errs = append(errs, fmt.Errorf("watch.event_timeout must be positive"))
	}
	if q := c.Screenshot.DefaultQuality; q < 1 || q > 100 {
		errs = append(errs, fmt.Errorf("screenshot.default_quality must be between 1 and 100, got %d", q))
	}
	if s := c.Screenshot.DefaultScale; s < 0.1 || s > 1 {
		errs = append(errs, fmt.Errorf("screenshot.default_scale must be between 0.1 and 1.0, got %g", s))
	}
	if c.Device.Backend == "" {
		errs = append(errs, fmt.Errorf("device.backend is required"))
	}
	return errors.Join(errs...)
}
