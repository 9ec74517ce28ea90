package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/luki/sensordash/internal/sensor"
)

type channelFile struct {
	Channels []sensor.ChannelSpec `yaml:"channels"`
}

// LoadChannels reads channel specs from a YAML file:
//
//	channels:
//	  - id: pulse
//	    label: Heart Rate
//	    unit: BPM
//	    min: 50
//	    max: 110
//	    thresholds: {warning: 90, critical: 100, low_critical: 60}
//
// An empty path yields the built-in table.
func LoadChannels(path string) ([]sensor.ChannelSpec, error) {
	if path == "" {
		return sensor.DefaultChannels(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read channels file: %w", err)
	}

	var f channelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse channels file: %w", err)
	}

	channels := ApplyChannelDefaults(f.Channels)
	if err := ValidateChannels(channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// ApplyChannelDefaults fills empty label, unit and decimals fields from the
// built-in spec of the same id. An empty list yields the built-in table.
func ApplyChannelDefaults(channels []sensor.ChannelSpec) []sensor.ChannelSpec {
	if len(channels) == 0 {
		return sensor.DefaultChannels()
	}
	out := make([]sensor.ChannelSpec, len(channels))
	for i, c := range channels {
		if def, ok := sensor.DefaultChannel(c.ID); ok {
			if c.Label == "" {
				c.Label = def.Label
			}
			if c.Unit == "" {
				c.Unit = def.Unit
			}
			if c.Decimals == 0 {
				c.Decimals = def.Decimals
			}
		}
		out[i] = c
	}
	return out
}

// ValidateChannels checks ids, ranges and threshold ordering.
func ValidateChannels(channels []sensor.ChannelSpec) error {
	seen := make(map[sensor.ChannelID]bool)
	for _, c := range channels {
		if !sensor.Known(c.ID) {
			return fmt.Errorf("%w: channel %q is not a known channel", ErrInvalid, c.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: channel %q listed twice", ErrInvalid, c.ID)
		}
		seen[c.ID] = true

		if c.Min >= c.Max {
			return fmt.Errorf("%w: channel %q: min %v must be below max %v", ErrInvalid, c.ID, c.Min, c.Max)
		}
		if c.Thresholds.Warning >= c.Thresholds.Critical {
			return fmt.Errorf("%w: channel %q: warning %v must be below critical %v",
				ErrInvalid, c.ID, c.Thresholds.Warning, c.Thresholds.Critical)
		}
		if c.Decimals < 0 {
			return fmt.Errorf("%w: channel %q: decimals must not be negative", ErrInvalid, c.ID)
		}
	}
	return nil
}
