package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/luki/sensordash/internal/sensor"
)

func TestLoadChannelsDefault(t *testing.T) {
	channels, err := LoadChannels("")
	if err != nil {
		t.Fatalf("LoadChannels: %v", err)
	}
	if len(channels) != 3 || channels[0].ID != sensor.Temperature {
		t.Errorf("unexpected default channels: %+v", channels)
	}
}

func TestLoadChannelsFile(t *testing.T) {
	path := writeFile(t, "channels.yaml", `
channels:
  - id: pulse
    min: 40
    max: 120
    thresholds:
      warning: 95
      critical: 110
      low_critical: 55
  - id: sound
    label: Noise
    unit: dBA
    min: 20
    max: 110
    thresholds:
      warning: 75
      critical: 90
  - id: temperature
    min: 15
    max: 45
    thresholds:
      warning: 36
      critical: 39
`)

	channels, err := LoadChannels(path)
	if err != nil {
		t.Fatalf("LoadChannels: %v", err)
	}
	if len(channels) != 3 {
		t.Fatalf("got %d channels, want 3", len(channels))
	}

	pulse := channels[0]
	if pulse.Label != "Heart Rate" || pulse.Unit != "BPM" {
		t.Errorf("pulse defaults not applied: %+v", pulse)
	}
	if pulse.Min != 40 || pulse.Max != 120 {
		t.Errorf("pulse range = [%v, %v]", pulse.Min, pulse.Max)
	}
	if pulse.Thresholds.LowCritical == nil || *pulse.Thresholds.LowCritical != 55 {
		t.Errorf("pulse low critical = %v", pulse.Thresholds.LowCritical)
	}

	sound := channels[1]
	if sound.Label != "Noise" || sound.Unit != "dBA" {
		t.Errorf("sound overrides lost: %+v", sound)
	}
	if sound.Thresholds.LowCritical != nil {
		t.Errorf("sound should have no low critical, got %v", *sound.Thresholds.LowCritical)
	}

	if channels[2].Decimals != 1 {
		t.Errorf("temperature decimals = %d, want 1", channels[2].Decimals)
	}
}

func TestLoadChannelsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown id", `
channels:
  - id: humidity
    min: 0
    max: 100
    thresholds: {warning: 70, critical: 90}
`},
		{"duplicate", `
channels:
  - id: sound
    min: 30
    max: 100
    thresholds: {warning: 70, critical: 85}
  - id: sound
    min: 30
    max: 100
    thresholds: {warning: 70, critical: 85}
`},
		{"inverted range", `
channels:
  - id: sound
    min: 100
    max: 30
    thresholds: {warning: 70, critical: 85}
`},
		{"thresholds out of order", `
channels:
  - id: sound
    min: 30
    max: 100
    thresholds: {warning: 90, critical: 85}
`},
	}

	for _, tt := range tests {
		path := writeFile(t, "channels.yaml", tt.content)
		_, err := LoadChannels(path)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: got %v, want ErrInvalid", tt.name, err)
		}
	}
}

func TestLoadChannelsBadFile(t *testing.T) {
	if _, err := LoadChannels(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeFile(t, "broken.yaml", "channels: [::")
	if _, err := LoadChannels(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestApplyChannelDefaultsEmpty(t *testing.T) {
	channels := ApplyChannelDefaults(nil)
	if len(channels) != len(sensor.Channels) {
		t.Errorf("empty list should fall back to defaults, got %d", len(channels))
	}
}
