// Package config loads the dashboard configuration from defaults, an
// optional YAML file and SENSORDASH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/luki/sensordash/internal/logging"
	"github.com/luki/sensordash/internal/sensor"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config materialises application configuration.
type Config struct {
	App          AppConfig       `mapstructure:"app"`
	Logging      logging.Config  `mapstructure:"logging"`
	Session      SessionConfig   `mapstructure:"session"`
	Generator    GeneratorConfig `mapstructure:"generator"`
	Export       ExportConfig    `mapstructure:"export"`
	ChannelsFile string          `mapstructure:"channels_file"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name string `mapstructure:"name"`
}

// SessionConfig governs the refresh cadence and window size.
type SessionConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	MaxPoints int           `mapstructure:"max_points"`
	Seed      uint64        `mapstructure:"seed"` // 0 = random
}

// GeneratorConfig overrides the per-channel random walks.
type GeneratorConfig struct {
	Walks map[string]WalkConfig `mapstructure:"walks"`
}

// WalkConfig is a partial walk override; unset fields keep the default.
type WalkConfig struct {
	Baseline *float64 `mapstructure:"baseline"`
	Step     *float64 `mapstructure:"step"`
	Min      *float64 `mapstructure:"min"`
	Max      *float64 `mapstructure:"max"`
	Decimals *int32   `mapstructure:"decimals"`
}

// ExportConfig sets where snapshot exports are written.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SENSORDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindWalkEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sensordash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sensordash")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.time_format", "")
	v.SetDefault("logging.caller", false)
	v.SetDefault("logging.pretty", false)
	v.SetDefault("logging.file", "")

	v.SetDefault("session.interval", "2s")
	v.SetDefault("session.max_points", 30)
	v.SetDefault("session.seed", 0)

	v.SetDefault("export.dir", "exports")
	v.SetDefault("channels_file", "")
}

// walkFields are the keys of generator.walks.<id>.
var walkFields = []string{"baseline", "step", "min", "max", "decimals"}

// bindWalkEnv makes SENSORDASH_GENERATOR_WALKS_<ID>_<FIELD> visible to
// Unmarshal; the walk keys have no defaults for AutomaticEnv to match.
func bindWalkEnv(v *viper.Viper) error {
	for _, id := range sensor.Channels {
		for _, field := range walkFields {
			key := fmt.Sprintf("generator.walks.%s.%s", id, field)
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("bind env %s: %w", key, err)
			}
		}
	}
	return nil
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Session.Interval < 100*time.Millisecond {
		return fmt.Errorf("%w: session.interval must be at least 100ms, got %s", ErrInvalid, c.Session.Interval)
	}
	if c.Session.MaxPoints < 1 || c.Session.MaxPoints > 10000 {
		return fmt.Errorf("%w: session.max_points must be between 1 and 10000, got %d", ErrInvalid, c.Session.MaxPoints)
	}
	if c.Export.Dir == "" {
		return fmt.Errorf("%w: export.dir must not be empty", ErrInvalid)
	}
	if _, err := c.Walks(); err != nil {
		return err
	}
	return nil
}

// Walks merges the configured overrides onto the default walk table.
func (c *Config) Walks() (map[sensor.ChannelID]sensor.Walk, error) {
	walks := sensor.DefaultWalks()
	for name, o := range c.Generator.Walks {
		id := sensor.ChannelID(strings.ToLower(name))
		w, ok := walks[id]
		if !ok {
			return nil, fmt.Errorf("%w: generator.walks: unknown channel %q", ErrInvalid, name)
		}
		if o.Baseline != nil {
			w.Baseline = *o.Baseline
		}
		if o.Step != nil {
			w.Step = *o.Step
		}
		if o.Min != nil {
			w.Min = *o.Min
		}
		if o.Max != nil {
			w.Max = *o.Max
		}
		if o.Decimals != nil {
			w.Decimals = *o.Decimals
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("%w: generator.walks.%s: %v", ErrInvalid, id, err)
		}
		walks[id] = w
	}
	return walks, nil
}
