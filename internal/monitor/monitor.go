// Package monitor implements the live sensor dashboard TUI using BubbleTea,
// with one panel per channel showing value, status, gauge and sparkline.
package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/sensordash/internal/chart"
	"github.com/luki/sensordash/internal/history"
	"github.com/luki/sensordash/internal/sensor"
)

const uiInterval = 1 * time.Second

// Source is the session the dashboard observes and controls.
type Source interface {
	Snapshot() history.Window
	IsRunning() bool
	Toggle() bool
	Updates() <-chan sensor.Reading
}

// ExportFunc writes a window somewhere and returns the written paths.
type ExportFunc func(history.Window) ([]string, error)

// Options configure the dashboard.
type Options struct {
	Title     string
	Channels  []sensor.ChannelSpec
	MaxPoints int
	Export    ExportFunc
	Now       func() time.Time
}

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type readingMsg sensor.Reading

type exportedMsg struct {
	paths []string
	err   error
}

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the live dashboard.
type Model struct {
	src        Source
	opts       Options
	help       help.Model
	window     history.Window
	width      int
	height     int
	scroll     int
	started    time.Time
	now        time.Time
	lastUpdate time.Time
	notice     string
	err        error
}

// New creates the initial model for the dashboard.
func New(src Source, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.Channels) == 0 {
		opts.Channels = sensor.DefaultChannels()
	}
	if opts.Title == "" {
		opts.Title = "sensordash"
	}
	now := opts.Now()
	m := Model{
		src:     src,
		opts:    opts,
		help:    help.New(),
		window:  src.Snapshot(),
		started: now,
		now:     now,
	}
	if last, ok := m.window.Last(); ok {
		m.lastUpdate = last.Time()
	}
	return m
}

// ── Commands ─────────────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(uiInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForUpdate(src Source) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-src.Updates()
		if !ok {
			return nil
		}
		return readingMsg(r)
	}
}

func exportCmd(fn ExportFunc, w history.Window) tea.Cmd {
	return func() tea.Msg {
		paths, err := fn(w)
		return exportedMsg{paths: paths, err: err}
	}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.src), tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			if m.src.Toggle() {
				m.notice = "resumed"
			} else {
				m.notice = "paused"
			}
		case key.Matches(msg, keys.Export):
			if m.opts.Export == nil {
				m.notice = "export not configured"
				return m, nil
			}
			m.notice = "exporting..."
			return m, exportCmd(m.opts.Export, m.src.Snapshot())
		case key.Matches(msg, keys.Up):
			if m.scroll > 0 {
				m.scroll--
			}
		case key.Matches(msg, keys.Down):
			m.scroll++
		case key.Matches(msg, keys.Top):
			m.scroll = 0
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()

	case readingMsg:
		m.window = m.src.Snapshot()
		m.lastUpdate = sensor.Reading(msg).Time()
		m.err = nil
		return m, waitForUpdate(m.src)

	case exportedMsg:
		m.err = nil
		m.notice = ""
		if msg.err != nil {
			m.err = fmt.Errorf("export: %w", msg.err)
		}
		if len(msg.paths) > 0 {
			m.notice = "exported " + strings.Join(msg.paths, ", ")
		}
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorChanName = lipgloss.Color("147")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorOk       = lipgloss.Color("78")
	colorWarn     = lipgloss.Color("220")
	colorCrit     = lipgloss.Color("196")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string

	sections = append(sections, m.renderTitleBar(contentWidth))

	if m.err != nil {
		errBox := lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf(" ERROR: %v", m.err))
		sections = append(sections, errBox)
	}

	if len(m.window) == 0 {
		waiting := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for sensor data...")
		sections = append(sections, waiting)
	} else {
		sections = append(sections, m.renderChannelPanels(contentWidth)...)
	}

	if m.notice != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1).
			Render(m.notice))
	}

	sections = append(sections, m.renderFooter(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	lines := strings.Split(content, "\n")
	visibleLines := m.height
	if visibleLines < 5 {
		visibleLines = 5
	}
	maxScroll := len(lines) - visibleLines
	if maxScroll < 0 {
		maxScroll = 0
	}
	start := m.scroll
	if start > maxScroll {
		start = maxScroll
	}
	end := start + visibleLines
	if end > len(lines) {
		end = len(lines)
	}

	return strings.Join(lines[start:end], "\n")
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render(strings.ToUpper(m.opts.Title))

	var statusParts []string

	if m.src.IsRunning() {
		statusParts = append(statusParts, lipgloss.NewStyle().
			Foreground(colorOk).
			Render("● Active"))
	} else {
		statusParts = append(statusParts, lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Render("PAUSED"))
	}

	uptime := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("up %s", fmtDuration(m.now.Sub(m.started))))
	statusParts = append(statusParts, uptime)

	if !m.lastUpdate.IsZero() {
		ts := lipgloss.NewStyle().
			Foreground(colorDim).
			Render("last " + m.lastUpdate.Format("15:04:05"))
		statusParts = append(statusParts, ts)
	}

	if m.opts.MaxPoints > 0 {
		statusParts = append(statusParts, lipgloss.NewStyle().
			Foreground(colorDim).
			Render(fmt.Sprintf("%d/%d pts", len(m.window), m.opts.MaxPoints)))
	}

	sep := lipgloss.NewStyle().Foreground(colorDim).Render(" │ ")
	right := strings.Join(statusParts, sep)

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + filler + right)
}

func (m Model) renderChannelPanels(totalWidth int) []string {
	innerWidth := totalWidth - 4
	if innerWidth < 30 {
		innerWidth = 30
	}

	chartWidth := innerWidth - 60
	if chartWidth < 15 {
		chartWidth = 15
	}
	if chartWidth > 140 {
		chartWidth = 140
	}

	gaugeWidth := chartWidth / 2
	if gaugeWidth < 10 {
		gaugeWidth = 10
	}

	labelW := 14
	valueW := 10

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	latest, _ := m.window.Last()
	pad := strings.Repeat(" ", labelW+valueW+2)

	var panels []string

	for _, spec := range m.opts.Channels {
		v := latest.Value(spec.ID)
		var rows []string

		name := lipgloss.NewStyle().
			Bold(true).
			Foreground(colorChanName).
			Render(spec.Label)
		unit := dimS.Render(spec.Unit)
		rows = append(rows, name+"  "+unit+"  "+chart.RenderStatus(spec.Status(v)))

		label := lipgloss.NewStyle().
			Foreground(colorLabel).
			Width(labelW).
			Render(truncate(string(spec.ID), labelW))

		value := lipgloss.NewStyle().
			Width(valueW).
			Align(lipgloss.Right).
			Render(chart.RenderValue(spec, v))

		gauge := chart.RenderGauge(spec, v, gaugeWidth)
		scale := dimS.Render(fmt.Sprintf(" %.*f–%.*f", spec.Decimals, spec.Min, spec.Decimals, spec.Max))
		var threshTags string
		threshTags += dimS.Render(" W") + lipgloss.NewStyle().Foreground(colorWarn).Render(fmt.Sprintf("%.*f", spec.Decimals, spec.Thresholds.Warning))
		threshTags += dimS.Render(" C") + lipgloss.NewStyle().Foreground(colorCrit).Render(fmt.Sprintf("%.*f", spec.Decimals, spec.Thresholds.Critical))
		if lc := spec.Thresholds.LowCritical; lc != nil {
			threshTags += dimS.Render(" L") + lipgloss.NewStyle().Foreground(colorCrit).Render(fmt.Sprintf("%.*f", spec.Decimals, *lc))
		}
		rows = append(rows, label+" "+value+" "+gauge+scale+threshTags)

		spark := chart.RenderSparkline(m.window, spec, chartWidth)
		framedSpark := frameL + spark + frameR

		st := m.window.Stats(spec.ID)
		stats := dimS.Render(" avg") + valS.Render(fmt.Sprintf("%6.1f", st.Avg)) +
			dimS.Render(" lo") + valS.Render(fmt.Sprintf("%6.*f", spec.Decimals, st.Min)) +
			dimS.Render(" hi") + valS.Render(fmt.Sprintf("%6.*f", spec.Decimals, st.Max))

		rows = append(rows, pad+" "+framedSpark+stats)

		timeline := chart.RenderTimeline(m.window, chartWidth)
		if strings.TrimSpace(timeline) != "" {
			rows = append(rows, pad+"  "+timeline)
		}

		panelContent := lipgloss.JoinVertical(lipgloss.Left, rows...)
		panel := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(totalWidth).
			Render(panelContent)

		panels = append(panels, panel)
	}

	return panels
}

func (m Model) renderFooter(width int) string {
	okS := lipgloss.NewStyle().Foreground(colorOk).Render("██")
	warnS := lipgloss.NewStyle().Foreground(colorWarn).Render("██")
	critS := lipgloss.NewStyle().Foreground(colorCrit).Render("██")
	tickS := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Render("│")

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	legend := okS + dimS.Render(" normal ") +
		warnS + dimS.Render(" warning ") +
		critS + dimS.Render(" critical ") +
		tickS + dimS.Render(" 1min")

	helpView := m.help.ShortHelpView(keys.ShortHelp())

	gap := width - lipgloss.Width(legend) - lipgloss.Width(helpView) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + filler + helpView)
}

func truncate(s string, w int) string {
	if len(s) <= w {
		return s
	}
	if w <= 3 {
		return s[:w]
	}
	return s[:w-1] + "…"
}

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
