// Package history provides the bounded rolling window of readings that feeds
// the dashboard, with per-channel min/max/avg statistics.
package history

import (
	"github.com/luki/sensordash/internal/sensor"
)

// DefaultMaxPoints is the window capacity used when none is configured.
const DefaultMaxPoints = 30

// Window is an insertion-ordered run of readings, oldest first. Windows are
// treated as immutable: Append returns a new slice and never writes into the
// receiver's backing array.
type Window []sensor.Reading

// Append returns a new window with r added at the end and the oldest readings
// dropped until at most max remain. A max below 1 keeps only r.
func (w Window) Append(r sensor.Reading, max int) Window {
	if max < 1 {
		max = 1
	}
	start := 0
	if len(w)+1 > max {
		start = len(w) + 1 - max
	}
	out := make(Window, 0, len(w)-start+1)
	out = append(out, w[start:]...)
	return append(out, r)
}

// Last returns the most recent reading.
func (w Window) Last() (sensor.Reading, bool) {
	if len(w) == 0 {
		return sensor.Reading{}, false
	}
	return w[len(w)-1], true
}

// Clone returns a copy that shares no memory with w.
func (w Window) Clone() Window {
	if w == nil {
		return nil
	}
	out := make(Window, len(w))
	copy(out, w)
	return out
}

// Tail returns a copy of the last n readings (for chart rendering).
func (w Window) Tail(n int) Window {
	if n <= 0 || len(w) == 0 {
		return nil
	}
	start := len(w) - n
	if start < 0 {
		start = 0
	}
	return w[start:].Clone()
}

// Values projects one channel across the window.
func (w Window) Values(id sensor.ChannelID) []float64 {
	vals := make([]float64, len(w))
	for i, r := range w {
		vals[i] = r.Value(id)
	}
	return vals
}

// Stats summarises one channel across the window.
func (w Window) Stats(id sensor.ChannelID) Stats {
	return CalculateStats(w.Values(id))
}
