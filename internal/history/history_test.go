package history

import (
	"testing"
	"time"

	"github.com/luki/sensordash/internal/sensor"
)

func reading(i int) sensor.Reading {
	ts := time.Date(2026, 2, 21, 14, 0, 0, 0, time.Local).Add(time.Duration(i) * time.Second).UnixMilli()
	return sensor.Reading{
		Timestamp:   ts,
		TimeLabel:   sensor.TimeLabel(ts),
		Temperature: 30 + float64(i)/10,
		Pulse:       float64(70 + i),
		Sound:       float64(40 + i),
	}
}

func TestAppendEvictsOldest(t *testing.T) {
	var w Window
	for i := 0; i < 7; i++ {
		w = w.Append(reading(i), 5)
	}

	if len(w) != 5 {
		t.Fatalf("expected 5 points, got %d", len(w))
	}
	if w[0] != reading(2) {
		t.Errorf("first: got %+v, want reading 2", w[0])
	}
	last, ok := w.Last()
	if !ok || last != reading(6) {
		t.Errorf("Last(): got %+v (ok=%v), want reading 6", last, ok)
	}
}

func TestAppendLengthIsMinOfTicksAndCapacity(t *testing.T) {
	const max = 30
	var w Window
	for k := 1; k <= 2*max; k++ {
		w = w.Append(reading(k), max)
		want := k
		if want > max {
			want = max
		}
		if len(w) != want {
			t.Fatalf("after %d appends: len %d, want %d", k, len(w), want)
		}
	}
}

func TestAppendDoesNotMutateReceiver(t *testing.T) {
	var w Window
	for i := 0; i < 3; i++ {
		w = w.Append(reading(i), 3)
	}
	before := w.Clone()

	next := w.Append(reading(3), 3)
	_ = next.Append(reading(4), 3)

	for i := range before {
		if w[i] != before[i] {
			t.Fatalf("receiver changed at %d: got %+v, want %+v", i, w[i], before[i])
		}
	}
	if next[0] != reading(1) || next[2] != reading(3) {
		t.Errorf("unexpected result window: %+v", next)
	}
}

func TestAppendMinimumCapacity(t *testing.T) {
	w := Window{reading(0)}.Append(reading(1), 0)
	if len(w) != 1 || w[0] != reading(1) {
		t.Errorf("got %+v, want only reading 1", w)
	}
}

func TestLastEmpty(t *testing.T) {
	var w Window
	if _, ok := w.Last(); ok {
		t.Error("Last() on empty window should report false")
	}
}

func TestTail(t *testing.T) {
	var w Window
	for i := 0; i < 10; i++ {
		w = w.Append(reading(i), 100)
	}

	tail := w.Tail(3)
	if len(tail) != 3 {
		t.Fatalf("Tail(3): got %d, want 3", len(tail))
	}
	if tail[2] != reading(9) {
		t.Errorf("tail end: got %+v, want reading 9", tail[2])
	}

	tail[0].Pulse = -1
	if w[7].Pulse == -1 {
		t.Error("Tail must return a copy")
	}

	if got := w.Tail(50); len(got) != 10 {
		t.Errorf("Tail(50): got %d, want 10", len(got))
	}
	if got := w.Tail(0); got != nil {
		t.Errorf("Tail(0): got %v, want nil", got)
	}
}

func TestValuesAndStats(t *testing.T) {
	w := Window{
		{Pulse: 70, Sound: 40},
		{Pulse: 80, Sound: 45},
		{Pulse: 90, Sound: 41},
	}

	vals := w.Values(sensor.Pulse)
	if len(vals) != 3 || vals[0] != 70 || vals[2] != 90 {
		t.Errorf("Values: got %v", vals)
	}

	s := w.Stats(sensor.Sound)
	if s.Min != 40 || s.Max != 45 || s.Avg != 42 {
		t.Errorf("Stats(sound): got %+v", s)
	}
}
