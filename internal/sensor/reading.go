// Package sensor provides the simulated readings shown on the dashboard: the
// channel table, the reading record and a bounded random-walk generator.
package sensor

import "time"

// ChannelID identifies one monitored quantity.
type ChannelID string

const (
	Temperature ChannelID = "temperature"
	Pulse       ChannelID = "pulse"
	Sound       ChannelID = "sound"
)

// Channels lists every known channel in display order.
var Channels = []ChannelID{Temperature, Pulse, Sound}

// Known reports whether id names one of the built-in channels.
func Known(id ChannelID) bool {
	for _, c := range Channels {
		if c == id {
			return true
		}
	}
	return false
}

const timeLabelLayout = "15:04:05"

// Reading represents a single simulated sample across all channels.
type Reading struct {
	Timestamp   int64   // milliseconds since epoch
	TimeLabel   string  // e.g. "14:03:07"
	Temperature float64 // °C, one decimal
	Pulse       float64 // BPM, whole number
	Sound       float64 // dB, whole number
}

// Time returns the reading's timestamp as a local time.Time.
func (r Reading) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Value returns the value of one channel, or 0 for an unknown id.
func (r Reading) Value(id ChannelID) float64 {
	switch id {
	case Temperature:
		return r.Temperature
	case Pulse:
		return r.Pulse
	case Sound:
		return r.Sound
	}
	return 0
}

func (r *Reading) set(id ChannelID, v float64) {
	switch id {
	case Temperature:
		r.Temperature = v
	case Pulse:
		r.Pulse = v
	case Sound:
		r.Sound = v
	}
}

// TimeLabel formats a timestamp (ms since epoch) as 24-hour HH:MM:SS.
func TimeLabel(ms int64) string {
	return time.UnixMilli(ms).Format(timeLabelLayout)
}
