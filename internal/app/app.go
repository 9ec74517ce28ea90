package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/luki/sensordash/internal/config"
	"github.com/luki/sensordash/internal/history"
	"github.com/luki/sensordash/internal/monitor"
	"github.com/luki/sensordash/internal/sensor"
	"github.com/luki/sensordash/internal/session"
	"github.com/luki/sensordash/internal/store"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config   *config.Config
	Channels []sensor.ChannelSpec
	Logger   zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, channels []sensor.ChannelSpec, logger zerolog.Logger) *App {
	if len(channels) == 0 {
		channels = sensor.DefaultChannels()
	}
	return &App{
		Config:   cfg,
		Channels: channels,
		Logger:   logger.With().Str("component", "app").Logger(),
	}
}

func (a *App) newGenerator(opts ...sensor.GeneratorOption) (*sensor.Generator, error) {
	walks, err := a.Config.Walks()
	if err != nil {
		return nil, err
	}

	genOpts := []sensor.GeneratorOption{sensor.WithWalks(walks)}
	if seed := a.Config.Session.Seed; seed != 0 {
		genOpts = append(genOpts, sensor.WithSeed(seed))
	}
	gen := sensor.NewGenerator(append(genOpts, opts...)...)

	for _, spec := range a.Channels {
		w := gen.Walk(spec.ID)
		if w.Min != spec.Min || w.Max != spec.Max {
			a.Logger.Debug().
				Str("channel", string(spec.ID)).
				Float64("clamp_min", w.Min).
				Float64("clamp_max", w.Max).
				Float64("display_min", spec.Min).
				Float64("display_max", spec.Max).
				Msg("generator clamp differs from display range")
		}
	}
	return gen, nil
}

func (a *App) sessionConfig() session.Config {
	return session.Config{
		Interval:  a.Config.Session.Interval,
		MaxPoints: a.Config.Session.MaxPoints,
	}
}

func (a *App) newSession() (*session.Session, error) {
	gen, err := a.newGenerator()
	if err != nil {
		return nil, err
	}
	return session.New(a.sessionConfig(), gen, a.Logger), nil
}

func (a *App) newExporter() *store.Exporter {
	return store.NewExporter(a.Config.Export.Dir, a.Channels)
}

// Monitor runs the session and the dashboard until the user quits or the
// process is signalled.
func (a *App) Monitor(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sess, err := a.newSession()
	if err != nil {
		return err
	}
	exporter := a.newExporter()

	model := monitor.New(sess, monitor.Options{
		Title:     a.Config.App.Name,
		Channels:  a.Channels,
		MaxPoints: sess.Config().MaxPoints,
		Export: func(w history.Window) ([]string, error) {
			paths, err := exporter.Export(w)
			if err != nil {
				a.Logger.Error().Err(err).Strs("paths", paths).Msg("snapshot export failed")
				return paths, err
			}
			a.Logger.Info().Strs("paths", paths).Int("readings", len(w)).Msg("snapshot exported")
			return paths, nil
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sess.Run(gctx)
	})
	g.Go(func() error {
		// Quitting the dashboard stops the session.
		defer cancel()
		_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx)).Run()
		return err
	})

	a.Logger.Info().Msg("starting dashboard")
	if err := g.Wait(); err != nil && !isShutdown(err) {
		a.Logger.Error().Err(err).Msg("dashboard terminated with error")
		return err
	}
	a.Logger.Info().Msg("dashboard stopped")
	return nil
}

// StreamOptions configure the headless stream command.
type StreamOptions struct {
	// Duration stops the stream after the given time; zero runs until
	// interrupted.
	Duration time.Duration
}

// Stream runs the session without a dashboard, logging every reading.
func (a *App) Stream(ctx context.Context, opts StreamOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.Duration > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, opts.Duration)
		defer cancelTimeout()
	}

	sess, err := a.newSession()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sess.Run(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case r := <-sess.Updates():
				a.logReading(r)
			}
		}
	})

	if err := g.Wait(); err != nil && !isShutdown(err) {
		return err
	}

	snapshot := sess.Snapshot()
	ev := a.Logger.Info().Int("readings", len(snapshot))
	for _, spec := range a.Channels {
		st := snapshot.Stats(spec.ID)
		ev = ev.Dict(string(spec.ID), zerolog.Dict().
			Float64("min", st.Min).
			Float64("max", st.Max).
			Float64("avg", st.Avg))
	}
	ev.Msg("stream stopped")
	return nil
}

func (a *App) logReading(r sensor.Reading) {
	ev := a.Logger.Info().Str("time", r.TimeLabel)
	worst := sensor.StatusNormal
	for _, spec := range a.Channels {
		v := r.Value(spec.ID)
		st := spec.Status(v)
		if st > worst {
			worst = st
		}
		ev = ev.Float64(string(spec.ID), v).Str(string(spec.ID)+"_status", st.String())
	}
	ev.Str("status", worst.String()).Msg("reading")
}

func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, tea.ErrProgramKilled) ||
		errors.Is(err, tea.ErrInterrupted)
}
