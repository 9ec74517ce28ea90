package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/luki/sensordash/internal/history"
	"github.com/luki/sensordash/internal/sensor"
	"github.com/luki/sensordash/internal/session"
	"github.com/luki/sensordash/internal/store"
)

// SimulateOptions configure an offline run of the session.
type SimulateOptions struct {
	Ticks int
	// Start stamps the first reading at Start plus one interval. Zero means
	// now.
	Start   time.Time
	CSVPath string
	PNGPath string
}

// Simulate advances a session window Ticks times without timers, printing
// the resulting window and per-channel stats to out. Readings are stamped
// one interval apart.
func (a *App) Simulate(ctx context.Context, opts SimulateOptions, out io.Writer) (history.Window, error) {
	if opts.Ticks < 1 {
		return nil, errors.New("ticks must be at least 1")
	}

	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}
	interval := a.Config.Session.Interval
	n := 0
	clock := func() time.Time {
		n++
		return start.Add(time.Duration(n) * interval)
	}

	gen, err := a.newGenerator(sensor.WithClock(clock))
	if err != nil {
		return nil, err
	}

	var w history.Window
	for i := 0; i < opts.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w = session.Step(w, gen, a.Config.Session.MaxPoints)
	}

	a.Logger.Debug().
		Int("ticks", opts.Ticks).
		Int("window", len(w)).
		Msg("simulation finished")

	a.printWindow(out, w)

	if opts.CSVPath != "" {
		if err := store.WriteCSV(opts.CSVPath, w, a.Channels); err != nil {
			return w, err
		}
		fmt.Fprintf(out, "CSV exported to %s\n", opts.CSVPath)
	}
	if opts.PNGPath != "" {
		if err := store.WritePNG(opts.PNGPath, w, a.Channels); err != nil {
			return w, err
		}
		fmt.Fprintf(out, "PNG exported to %s\n", opts.PNGPath)
	}
	return w, nil
}

func (a *App) printWindow(out io.Writer, w history.Window) {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprint(writer, "Time")
	for _, spec := range a.Channels {
		fmt.Fprintf(writer, "\t%s (%s)", spec.Label, spec.Unit)
	}
	fmt.Fprintln(writer)

	for _, r := range w {
		fmt.Fprint(writer, r.TimeLabel)
		for _, spec := range a.Channels {
			fmt.Fprintf(writer, "\t%.*f", spec.Decimals, r.Value(spec.ID))
		}
		fmt.Fprintln(writer)
	}
	writer.Flush()

	fmt.Fprintln(out)

	writer = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Channel\tMin\tMax\tAvg\tLatest\tStatus")
	latest, _ := w.Last()
	for _, spec := range a.Channels {
		st := w.Stats(spec.ID)
		v := latest.Value(spec.ID)
		fmt.Fprintf(writer, "%s\t%.*f\t%.*f\t%.1f\t%.*f\t%s\n",
			spec.ID,
			spec.Decimals, st.Min,
			spec.Decimals, st.Max,
			st.Avg,
			spec.Decimals, v,
			spec.Status(v),
		)
	}
	writer.Flush()
}

// PrintChannels prints the effective channel table and the walk feeding
// each channel.
func (a *App) PrintChannels(out io.Writer) error {
	walks, err := a.Config.Walks()
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tLabel\tUnit\tRange\tWarning\tCritical\tLow critical\tWalk")
	for _, spec := range a.Channels {
		low := "-"
		if lc := spec.Thresholds.LowCritical; lc != nil {
			low = fmt.Sprintf("%.*f", spec.Decimals, *lc)
		}
		walk := walks[spec.ID]
		fmt.Fprintf(writer, "%s\t%s\t%s\t%.*f-%.*f\t%.*f\t%.*f\t%s\t%g±%g in [%g, %g]\n",
			spec.ID, spec.Label, spec.Unit,
			spec.Decimals, spec.Min, spec.Decimals, spec.Max,
			spec.Decimals, spec.Thresholds.Warning,
			spec.Decimals, spec.Thresholds.Critical,
			low,
			walk.Baseline, walk.Step, walk.Min, walk.Max,
		)
	}
	return writer.Flush()
}
