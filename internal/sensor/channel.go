package sensor

import "math"

// Status is the alert tier of a channel value.
type Status int

const (
	StatusNormal Status = iota
	StatusWarning
	StatusCritical
)

func (s Status) String() string {
	switch s {
	case StatusWarning:
		return "Warning"
	case StatusCritical:
		return "Critical"
	default:
		return "Normal"
	}
}

// Thresholds are the alert levels of a channel. Warning must be below
// Critical. LowCritical, when set, marks values at or below it as critical.
type Thresholds struct {
	Warning     float64  `yaml:"warning"`
	Critical    float64  `yaml:"critical"`
	LowCritical *float64 `yaml:"low_critical,omitempty"`
}

// ChannelSpec is the static display and alerting configuration of a channel.
// Min and Max are the display range; the generator clamps independently.
type ChannelSpec struct {
	ID         ChannelID  `yaml:"id"`
	Label      string     `yaml:"label"`
	Unit       string     `yaml:"unit"`
	Min        float64    `yaml:"min"`
	Max        float64    `yaml:"max"`
	Decimals   int        `yaml:"decimals"`
	Thresholds Thresholds `yaml:"thresholds"`
}

// Status maps a value to its alert tier.
func (c ChannelSpec) Status(v float64) Status {
	t := c.Thresholds
	switch {
	case v >= t.Critical:
		return StatusCritical
	case t.LowCritical != nil && v <= *t.LowCritical:
		return StatusCritical
	case v >= t.Warning:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Fraction returns where v sits inside the display range, clamped to [0, 1].
func (c ChannelSpec) Fraction(v float64) float64 {
	span := c.Max - c.Min
	if span <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, (v-c.Min)/span))
}

func floatPtr(v float64) *float64 { return &v }

// DefaultChannels returns a fresh copy of the built-in channel table.
func DefaultChannels() []ChannelSpec {
	return []ChannelSpec{
		{
			ID:         Temperature,
			Label:      "Temperature",
			Unit:       "°C",
			Min:        20,
			Max:        40,
			Decimals:   1,
			Thresholds: Thresholds{Warning: 35, Critical: 38},
		},
		{
			// Wider than the generator clamp of [60, 100] for visual headroom.
			ID:         Pulse,
			Label:      "Heart Rate",
			Unit:       "BPM",
			Min:        50,
			Max:        110,
			Thresholds: Thresholds{Warning: 90, Critical: 100, LowCritical: floatPtr(60)},
		},
		{
			ID:         Sound,
			Label:      "Sound Intensity",
			Unit:       "dB",
			Min:        30,
			Max:        100,
			Thresholds: Thresholds{Warning: 70, Critical: 85},
		},
	}
}

// DefaultChannel returns the built-in spec for id.
func DefaultChannel(id ChannelID) (ChannelSpec, bool) {
	return Lookup(DefaultChannels(), id)
}

// Lookup finds the spec for id in specs.
func Lookup(specs []ChannelSpec, id ChannelID) (ChannelSpec, bool) {
	for _, s := range specs {
		if s.ID == id {
			return s, true
		}
	}
	return ChannelSpec{}, false
}
