package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/luki/sensordash/internal/config"
	"github.com/luki/sensordash/internal/history"
	"github.com/luki/sensordash/internal/sensor"
	"github.com/luki/sensordash/internal/session"
)

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "sensordash"},
		Session: config.SessionConfig{Interval: 2 * time.Second, MaxPoints: 30, Seed: 42},
		Export:  config.ExportConfig{Dir: "exports"},
	}
}

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)

func TestSimulateMatchesStep(t *testing.T) {
	a := NewApp(testConfig(), nil, zerolog.Nop())

	var out bytes.Buffer
	w, err := a.Simulate(context.Background(), SimulateOptions{Ticks: 5, Start: start}, &out)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(w) != 5 {
		t.Fatalf("window len = %d, want 5", len(w))
	}

	n := 0
	gen := sensor.NewGenerator(sensor.WithSeed(42), sensor.WithClock(func() time.Time {
		n++
		return start.Add(time.Duration(n) * 2 * time.Second)
	}))
	var want history.Window
	for i := 0; i < 5; i++ {
		want = session.Step(want, gen, 30)
	}
	for i := range want {
		if w[i] != want[i] {
			t.Errorf("reading %d = %+v, want %+v", i, w[i], want[i])
		}
	}

	if w[0].TimeLabel != "12:00:02" || w[4].TimeLabel != "12:00:10" {
		t.Errorf("labels = %s..%s, want 12:00:02..12:00:10", w[0].TimeLabel, w[4].TimeLabel)
	}

	text := out.String()
	for _, want := range []string{"Time", "Temperature (°C)", "Heart Rate (BPM)", "12:00:10", "Channel", "pulse"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestSimulateEvicts(t *testing.T) {
	cfg := testConfig()
	cfg.Session.MaxPoints = 3
	a := NewApp(cfg, nil, zerolog.Nop())

	w, err := a.Simulate(context.Background(), SimulateOptions{Ticks: 4, Start: start}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(w) != 3 {
		t.Fatalf("window len = %d, want 3", len(w))
	}
	if w[0].TimeLabel != "12:00:04" {
		t.Errorf("first reading = %s, want tick 2 at 12:00:04", w[0].TimeLabel)
	}
}

func TestSimulateExports(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out", "run.csv")
	pngPath := filepath.Join(dir, "out", "run.png")

	a := NewApp(testConfig(), nil, zerolog.Nop())
	var out bytes.Buffer
	_, err := a.Simulate(context.Background(), SimulateOptions{
		Ticks:   10,
		Start:   start,
		CSVPath: csvPath,
		PNGPath: pngPath,
	}, &out)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 11 {
		t.Errorf("csv has %d lines, want 11", len(lines))
	}
	if _, err := os.Stat(pngPath); err != nil {
		t.Errorf("png not written: %v", err)
	}
	if !strings.Contains(out.String(), "PNG exported to") {
		t.Errorf("missing export notice:\n%s", out.String())
	}
}

func TestSimulateSingleChannelExport(t *testing.T) {
	pulse, _ := sensor.Lookup(sensor.DefaultChannels(), sensor.Pulse)
	pngPath := filepath.Join(t.TempDir(), "pulse.png")

	a := NewApp(testConfig(), []sensor.ChannelSpec{pulse}, zerolog.Nop())
	var out bytes.Buffer
	if _, err := a.Simulate(context.Background(), SimulateOptions{Ticks: 4, Start: start, PNGPath: pngPath}, &out); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if _, err := os.Stat(pngPath); err != nil {
		t.Errorf("png not written: %v", err)
	}
	if strings.Contains(out.String(), "Temperature") {
		t.Errorf("output lists unconfigured channel:\n%s", out.String())
	}
}

func TestSimulateRejectsZeroTicks(t *testing.T) {
	a := NewApp(testConfig(), nil, zerolog.Nop())
	if _, err := a.Simulate(context.Background(), SimulateOptions{}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for zero ticks")
	}
}

func TestSimulateCancelled(t *testing.T) {
	a := NewApp(testConfig(), nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Simulate(ctx, SimulateOptions{Ticks: 3}, &bytes.Buffer{}); err == nil {
		t.Error("expected context error")
	}
}

func TestPrintChannels(t *testing.T) {
	a := NewApp(testConfig(), nil, zerolog.Nop())
	var out bytes.Buffer
	if err := a.PrintChannels(&out); err != nil {
		t.Fatalf("PrintChannels: %v", err)
	}
	text := out.String()
	for _, want := range []string{"temperature", "Heart Rate", "BPM", "50-110", "75±2 in [60, 100]"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestNewGeneratorLogsClampMismatch(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	a := NewApp(testConfig(), nil, logger)

	if _, err := a.newGenerator(); err != nil {
		t.Fatalf("newGenerator: %v", err)
	}

	var pulse bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		if entry["channel"] == "pulse" {
			pulse = true
		}
	}
	if !pulse {
		t.Errorf("expected pulse clamp mismatch to be logged, got %q", buf.String())
	}
}

func TestStream(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Interval = 20 * time.Millisecond

	var buf syncBuffer
	a := NewApp(cfg, nil, zerolog.New(&buf))

	if err := a.Stream(context.Background(), StreamOptions{Duration: 250 * time.Millisecond}); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	text := buf.String()
	if got := strings.Count(text, `"message":"reading"`); got < 2 {
		t.Errorf("logged %d readings, want at least 2:\n%s", got, text)
	}
	if !strings.Contains(text, `"message":"stream stopped"`) {
		t.Errorf("missing stop entry:\n%s", text)
	}
	if !strings.Contains(text, `"pulse_status"`) {
		t.Errorf("missing per-channel status:\n%s", text)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
