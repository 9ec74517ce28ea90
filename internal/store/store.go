// Package store writes snapshots of the rolling window to disk as CSV tables
// and PNG charts. Files are written only on request and never read back.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/luki/sensordash/internal/history"
	"github.com/luki/sensordash/internal/sensor"
)

const fileLayout = "20060102-150405"

// ErrEmptyWindow is returned when there is nothing to export.
var ErrEmptyWindow = errors.New("store: window is empty")

// ErrTooFewPoints is returned when a chart needs more readings than given.
var ErrTooFewPoints = errors.New("store: at least two readings are needed for a chart")

// ErrNoChannels is returned when there is no channel to plot.
var ErrNoChannels = errors.New("store: no channels to plot")

// Exporter writes window snapshots into a directory as
// snapshot-YYYYMMDD-HHMMSS.{csv,png}. The CSV columns are:
//
//	timestamp,time,<channel id>...
type Exporter struct {
	dir      string
	channels []sensor.ChannelSpec
	now      func() time.Time
}

// NewExporter creates an exporter. The directory is created on first export.
func NewExporter(dir string, channels []sensor.ChannelSpec) *Exporter {
	return &Exporter{dir: dir, channels: channels, now: time.Now}
}

// Dir returns the export directory.
func (e *Exporter) Dir() string { return e.dir }

// Export writes the window as CSV and, when it holds at least two readings,
// as a PNG chart. It returns the paths written, including on error when the
// CSV succeeded but the chart did not.
func (e *Exporter) Export(w history.Window) ([]string, error) {
	if len(w) == 0 {
		return nil, ErrEmptyWindow
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create export dir: %w", err)
	}

	base := filepath.Join(e.dir, "snapshot-"+e.now().Format(fileLayout))
	paths := []string{base + ".csv"}
	if err := WriteCSV(paths[0], w, e.channels); err != nil {
		return nil, err
	}

	if len(w) >= 2 {
		png := base + ".png"
		if err := WritePNG(png, w, e.channels); err != nil {
			return paths, err
		}
		paths = append(paths, png)
	}
	return paths, nil
}

// WriteCSV writes one row per reading, oldest first.
func WriteCSV(path string, w history.Window, channels []sensor.ChannelSpec) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := []string{"timestamp", "time"}
	for _, c := range channels {
		header = append(header, string(c.ID))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range w {
		row := []string{strconv.FormatInt(r.Timestamp, 10), r.TimeLabel}
		for _, c := range channels {
			row = append(row, strconv.FormatFloat(r.Value(c.ID), 'f', c.Decimals, 64))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return f.Close()
}

// WritePNG renders every channel of the window as a time series over its
// display range. With more than one channel the first goes on the secondary
// axis.
func WritePNG(path string, w history.Window, channels []sensor.ChannelSpec) error {
	if len(w) < 2 {
		return ErrTooFewPoints
	}
	if len(channels) == 0 {
		return ErrNoChannels
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(w))
	for i, r := range w {
		x[i] = r.Time()
	}

	primary := &chart.ContinuousRange{Min: math.Inf(1), Max: math.Inf(-1)}
	secondary := &chart.ContinuousRange{}
	dualAxis := len(channels) > 1

	var series []chart.Series
	for i, c := range channels {
		s := chart.TimeSeries{
			Name:    fmt.Sprintf("%s (%s)", c.Label, c.Unit),
			XValues: x,
			YValues: w.Values(c.ID),
		}
		if i == 0 && dualAxis {
			s.YAxis = chart.YAxisSecondary
			secondary.Min, secondary.Max = c.Min, c.Max
		} else {
			primary.Min = math.Min(primary.Min, c.Min)
			primary.Max = math.Max(primary.Max, c.Max)
		}
		series = append(series, s)
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeMinuteValueFormatter,
		},
		YAxis: chart.YAxis{
			Range:          primary,
			ValueFormatter: valueFormatter,
		},
		Series: series,
	}
	if dualAxis {
		graph.YAxisSecondary = chart.YAxis{
			Range: secondary,
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.1f")
			},
		}
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
