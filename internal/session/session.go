// Package session owns the rolling window of simulated readings and the
// single ticker that refreshes it. A Session is the only writer of its
// window; readers get copies.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/luki/sensordash/internal/history"
	"github.com/luki/sensordash/internal/sensor"
)

// DefaultInterval is the tick cadence used when none is configured.
const DefaultInterval = 2 * time.Second

// ErrAlreadyRunning is returned by Run when another Run is active.
var ErrAlreadyRunning = errors.New("session: already running")

// Config tunes a Session.
type Config struct {
	Interval  time.Duration
	MaxPoints int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.MaxPoints <= 0 {
		c.MaxPoints = history.DefaultMaxPoints
	}
	return c
}

// Step is the tick body: it generates the next reading from the window's
// last one and appends it, evicting the oldest beyond maxPoints. The input
// window is left untouched.
func Step(w history.Window, gen *sensor.Generator, maxPoints int) history.Window {
	var prev *sensor.Reading
	if last, ok := w.Last(); ok {
		prev = &last
	}
	return w.Append(gen.Next(prev), maxPoints)
}

type controlReq struct {
	run bool
	ack chan struct{}
}

// Session drives a Generator on a fixed interval and keeps the bounded
// window of its readings. It starts in the running state.
type Session struct {
	cfg    Config
	gen    *sensor.Generator
	clock  Clock
	logger zerolog.Logger

	control chan controlReq
	updates chan sensor.Reading

	toggleMu sync.Mutex

	mu       sync.RWMutex
	window   history.Window
	paused   bool
	active   bool
	loopDone chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the system clock used to create tickers.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// New constructs a Session. Nothing runs until Run is called.
func New(cfg Config, gen *sensor.Generator, logger zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		cfg:     cfg.withDefaults(),
		gen:     gen,
		clock:   systemClock{},
		logger:  logger.With().Str("component", "session").Logger(),
		control: make(chan controlReq),
		updates: make(chan sensor.Reading, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Session) Config() Config { return s.cfg }

// Run blocks, appending a reading on every tick while running, until ctx is
// cancelled. The ticker is owned by this goroutine and is always stopped
// before Run returns.
func (s *Session) Run(ctx context.Context) error {
	var ticker Ticker
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
		}
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	if !s.paused {
		ticker = s.clock.NewTicker(s.cfg.Interval)
	}
	done := make(chan struct{})
	s.active = true
	s.loopDone = done
	s.mu.Unlock()

	defer func() {
		stopTicker()
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()
		close(done)
	}()

	s.logger.Info().
		Dur("interval", s.cfg.Interval).
		Int("max_points", s.cfg.MaxPoints).
		Bool("paused", ticker == nil).
		Msg("session started")

	for {
		var tick <-chan time.Time
		if ticker != nil {
			tick = ticker.C()
		}

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("session stopped")
			return ctx.Err()
		case req := <-s.control:
			if req.run && ticker == nil {
				ticker = s.clock.NewTicker(s.cfg.Interval)
				s.logger.Info().Msg("session resumed")
			} else if !req.run && ticker != nil {
				stopTicker()
				s.logger.Info().Msg("session paused")
			}
			s.mu.Lock()
			s.paused = !req.run
			s.mu.Unlock()
			close(req.ack)
		case <-tick:
			s.tick()
		}
	}
}

func (s *Session) tick() {
	s.mu.Lock()
	s.window = Step(s.window, s.gen, s.cfg.MaxPoints)
	latest, _ := s.window.Last()
	size := len(s.window)
	s.mu.Unlock()

	s.logger.Debug().
		Str("time", latest.TimeLabel).
		Float64("temperature", latest.Temperature).
		Float64("pulse", latest.Pulse).
		Float64("sound", latest.Sound).
		Int("window", size).
		Msg("reading appended")

	select {
	case s.updates <- latest:
	default:
	}
}

// Pause stops generating readings. It returns once the ticker is stopped;
// no reading is appended afterwards until Resume. Pausing a paused session
// is a no-op.
func (s *Session) Pause() { s.setRunning(false) }

// Resume restarts generation from the last buffered reading. Resuming a
// running session is a no-op and never creates a second ticker.
func (s *Session) Resume() { s.setRunning(true) }

// Toggle flips between running and paused and reports the new state. It
// works on the recorded state, so it also applies before Run and after Run
// has returned.
func (s *Session) Toggle() bool {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	run := !s.IsRunning()
	s.setRunning(run)
	return run
}

func (s *Session) setRunning(run bool) {
	s.mu.Lock()
	if !s.active {
		// Recorded for the next Run.
		s.paused = !run
		s.mu.Unlock()
		return
	}
	if s.paused == !run {
		s.mu.Unlock()
		return
	}
	done := s.loopDone
	s.mu.Unlock()

	ack := make(chan struct{})
	select {
	case s.control <- controlReq{run: run, ack: ack}:
		<-ack
	case <-done:
		s.mu.Lock()
		s.paused = !run
		s.mu.Unlock()
	}
}

// IsRunning reports the running/paused state: true unless paused. A fresh
// session is running; whether ticks are actually delivered also depends on
// Run, see Active.
func (s *Session) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.paused
}

// Active reports whether a Run loop is currently executing.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Snapshot returns a copy of the current window, oldest first.
func (s *Session) Snapshot() history.Window {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window.Clone()
}

// Latest returns the most recent reading, if any.
func (s *Session) Latest() (sensor.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window.Last()
}

// Updates delivers each appended reading. The channel holds one pending
// value; a slow consumer misses intermediate readings but Snapshot always
// reflects all of them.
func (s *Session) Updates() <-chan sensor.Reading {
	return s.updates
}
