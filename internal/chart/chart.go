// Package chart provides sparkline rendering with color-coded status tiers,
// minute tick marks, timeline labels and horizontal gauges for a channel.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/sensordash/internal/history"
	"github.com/luki/sensordash/internal/sensor"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var (
	colorNormal   = lipgloss.Color("78")  // soft green
	colorWarning  = lipgloss.Color("220") // yellow
	colorCritical = lipgloss.Color("196") // red
	colorTrack    = lipgloss.Color("236")
	colorTick     = lipgloss.Color("239")
)

// StatusColor returns the color of a status tier.
func StatusColor(s sensor.Status) lipgloss.Color {
	switch s {
	case sensor.StatusCritical:
		return colorCritical
	case sensor.StatusWarning:
		return colorWarning
	default:
		return colorNormal
	}
}

// ValueColor returns the color for v on the given channel.
func ValueColor(spec sensor.ChannelSpec, v float64) lipgloss.Color {
	return StatusColor(spec.Status(v))
}

// FormatValue formats v with the channel's precision and unit.
func FormatValue(spec sensor.ChannelSpec, v float64) string {
	return fmt.Sprintf("%.*f %s", spec.Decimals, v, spec.Unit)
}

// RenderValue renders the value with color coding; critical values are bold.
func RenderValue(spec sensor.ChannelSpec, v float64) string {
	st := spec.Status(v)
	style := lipgloss.NewStyle().Foreground(StatusColor(st))
	if st == sensor.StatusCritical {
		style = style.Bold(true)
	}
	return style.Render(FormatValue(spec, v))
}

// RenderStatus renders a status badge such as "● Warning".
func RenderStatus(s sensor.Status) string {
	return lipgloss.NewStyle().
		Foreground(StatusColor(s)).
		Bold(s != sensor.StatusNormal).
		Render("● " + s.String())
}

func isMinuteTick(w history.Window, i int) bool {
	t := w[i].Time()
	if t.Second() == 0 {
		return true
	}
	return i > 0 && t.Minute() != w[i-1].Time().Minute()
}

// RenderSparkline renders one channel of the window scaled to the channel's
// display range. A subtle pipe is drawn at each minute boundary.
func RenderSparkline(w history.Window, spec sensor.ChannelSpec, width int) string {
	if width <= 0 {
		return ""
	}

	dim := lipgloss.NewStyle().Foreground(colorTrack)
	if len(w) == 0 {
		return dim.Render(strings.Repeat("╌", width))
	}

	if len(w) > width {
		w = w[len(w)-width:]
	}

	var sb strings.Builder
	for i := 0; i < width-len(w); i++ {
		sb.WriteString(dim.Render("╌"))
	}

	tickStyle := lipgloss.NewStyle().Foreground(colorTick)

	for i, r := range w {
		if isMinuteTick(w, i) {
			sb.WriteString(tickStyle.Render("│"))
			continue
		}
		v := r.Value(spec.ID)
		idx := int(spec.Fraction(v) * 7)
		if idx > 7 {
			idx = 7
		}
		st := spec.Status(v)
		style := lipgloss.NewStyle().Foreground(StatusColor(st))
		if st == sensor.StatusCritical {
			style = style.Bold(true)
		}
		sb.WriteString(style.Render(string(sparkBlocks[idx])))
	}

	return sb.String()
}

// RenderTimeline renders the time labels under the sparkline, showing
// HH:MM at each minute tick position.
func RenderTimeline(w history.Window, width int) string {
	if len(w) == 0 || width <= 0 {
		return ""
	}

	if len(w) > width {
		w = w[len(w)-width:]
	}

	padLen := width - len(w)

	line := make([]rune, width)
	for i := range line {
		line[i] = ' '
	}

	type tick struct {
		pos   int
		label string
	}
	var ticks []tick

	for i, r := range w {
		if isMinuteTick(w, i) {
			ticks = append(ticks, tick{pos: padLen + i, label: r.Time().Format("15:04")})
		}
	}

	lastEnd := -1
	for _, t := range ticks {
		start := t.pos - 2
		if start < 0 {
			start = 0
		}
		end := start + len(t.label)
		if end > width {
			continue
		}
		if start <= lastEnd+1 {
			continue
		}
		for j, ch := range t.label {
			line[start+j] = ch
		}
		lastEnd = end
	}

	return lipgloss.NewStyle().Foreground(colorTick).Render(string(line))
}

// gaugeCells returns the cell characters of a gauge without styling: filled
// cells up to the value, warning/critical markers on the track.
func gaugeCells(spec sensor.ChannelSpec, v float64, width int) []rune {
	cells := make([]rune, width)
	filled := filledCells(spec, v, width)
	for i := range cells {
		if i < filled {
			cells[i] = '█'
		} else {
			cells[i] = '·'
		}
	}
	for _, m := range []float64{spec.Thresholds.Warning, spec.Thresholds.Critical} {
		pos := markerPos(spec, m, width)
		if pos >= filled && pos < width {
			cells[pos] = '▪'
		}
	}
	return cells
}

// filledCells is the number of cells a value fills.
func filledCells(spec sensor.ChannelSpec, v float64, width int) int {
	return int(math.Round(spec.Fraction(v) * float64(width)))
}

// markerPos is the last cell a value equal to the threshold would fill, so
// reaching a threshold always covers its marker.
func markerPos(spec sensor.ChannelSpec, v float64, width int) int {
	if v <= spec.Min || v > spec.Max {
		return -1
	}
	return filledCells(spec, v, width) - 1
}

// RenderGauge renders a horizontal gauge of v across the channel's display
// range, with warning and critical markers on the unfilled track.
func RenderGauge(spec sensor.ChannelSpec, v float64, width int) string {
	if width <= 0 {
		return ""
	}

	cells := gaugeCells(spec, v, width)
	fill := lipgloss.NewStyle().Foreground(ValueColor(spec, v))
	track := lipgloss.NewStyle().Foreground(colorTrack)
	warnPos := markerPos(spec, spec.Thresholds.Warning, width)
	critPos := markerPos(spec, spec.Thresholds.Critical, width)

	var sb strings.Builder
	for i, ch := range cells {
		switch {
		case ch == '█':
			sb.WriteString(fill.Render(string(ch)))
		case ch == '▪' && i == critPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorCritical).Render(string(ch)))
		case ch == '▪' && i == warnPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorWarning).Render(string(ch)))
		default:
			sb.WriteString(track.Render(string(ch)))
		}
	}
	return sb.String()
}
