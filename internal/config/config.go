package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"media-library/internal/logging"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full server configuration, loaded from an optional YAML file
// with MEDIALIB_* environment overrides.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Libraries []LibraryConfig `mapstructure:"libraries" validate:"required,min=1,dive"`
	Previews  PreviewsConfig  `mapstructure:"previews"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	MetricsPort     int           `mapstructure:"metrics_port" validate:"min=0,max=65535"`
	MetricsEnabled  bool          `mapstructure:"metrics_enabled"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       float64       `mapstructure:"rate_limit" validate:"min=0"`
	RateBurst       int           `mapstructure:"rate_burst" validate:"min=0"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// LibraryConfig describes one exposed library root.
type LibraryConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	Path string `mapstructure:"path" validate:"required"`
	Icon string `mapstructure:"icon"`
}

// PreviewsConfig configures thumbnail and poster generation.
type PreviewsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	CacheDir     string `mapstructure:"cache_dir"`
	VideoPosters bool   `mapstructure:"video_posters"`
	FFmpegPath   string `mapstructure:"ffmpeg_path"`
	MaxProcesses int    `mapstructure:"max_processes" validate:"min=0"`
}

// UploadsConfig configures the upload endpoint.
type UploadsConfig struct {
	MaxSize int64 `mapstructure:"max_size" validate:"min=0"`
}

// Load reads configuration from path (or the default search locations when
// path is empty), applies environment overrides and defaults, and validates
// the result. A missing config file is not an error; the environment and
// defaults still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("media-library")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/media-library")
	}

	v.SetEnvPrefix("MEDIALIB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		logging.Debug("No config file found, using environment and defaults")
	} else {
		logging.Info("Loaded configuration from %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in zero values with working defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MetricsPort == 0 {
		c.Server.MetricsPort = 9090
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 100
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = 200
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Previews.CacheDir == "" {
		c.Previews.CacheDir = "/cache/previews"
	}
	if c.Previews.FFmpegPath == "" {
		c.Previews.FFmpegPath = "ffmpeg"
	}
	if c.Uploads.MaxSize == 0 {
		c.Uploads.MaxSize = 10 << 30 // 10 GiB
	}
	for i := range c.Libraries {
		if c.Libraries[i].Icon == "" {
			c.Libraries[i].Icon = "folder"
		}
	}
}

// Validate checks struct tags plus the rules tags cannot express: at least
// one library and no duplicate names (case-insensitive, to match registry
// lookup semantics).
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("invalid configuration: field %s failed %q validation", f.Namespace(), f.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Libraries))
	for _, lib := range c.Libraries {
		key := strings.ToLower(strings.TrimSpace(lib.Name))
		if key == "" {
			return fmt.Errorf("invalid configuration: library with blank name (path %q)", lib.Path)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("invalid configuration: duplicate library name %q", lib.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// LibraryNames returns the configured library names in order.
func (c *Config) LibraryNames() []string {
	names := make([]string, len(c.Libraries))
	for i, lib := range c.Libraries {
		names[i] = lib.Name
	}
	return names
}
