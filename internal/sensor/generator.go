package sensor

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

// Walk describes the bounded random walk of one channel.
type Walk struct {
	Baseline float64 // starting value when there is no previous reading
	Step     float64 // max absolute delta per reading
	Min      float64 // clamp floor
	Max      float64 // clamp ceiling
	Decimals int32   // rounding precision of the emitted value
}

// Validate checks that the walk is usable.
func (w Walk) Validate() error {
	if w.Step <= 0 {
		return fmt.Errorf("step must be positive, got %v", w.Step)
	}
	if w.Min >= w.Max {
		return fmt.Errorf("min %v must be below max %v", w.Min, w.Max)
	}
	if w.Baseline < w.Min || w.Baseline > w.Max {
		return fmt.Errorf("baseline %v outside [%v, %v]", w.Baseline, w.Min, w.Max)
	}
	if w.Decimals < 0 {
		return fmt.Errorf("decimals must not be negative, got %d", w.Decimals)
	}
	return nil
}

func (w Walk) apply(v float64) float64 {
	v = math.Max(w.Min, math.Min(w.Max, v))
	return decimal.NewFromFloat(v).Round(w.Decimals).InexactFloat64()
}

// DefaultWalks returns a fresh copy of the built-in walk table. Baselines sit
// in the middle of each channel's normal band.
func DefaultWalks() map[ChannelID]Walk {
	return map[ChannelID]Walk{
		Temperature: {Baseline: 30, Step: 0.5, Min: 20, Max: 40, Decimals: 1},
		Pulse:       {Baseline: 75, Step: 2, Min: 60, Max: 100},
		Sound:       {Baseline: 50, Step: 5, Min: 30, Max: 90},
	}
}

// Generator produces the next reading from the previous one. It is not safe
// for concurrent use; the session's run loop is its only caller.
type Generator struct {
	walks map[ChannelID]Walk
	rng   *rand.Rand
	now   func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRand sets the random source.
func WithRand(r *rand.Rand) GeneratorOption {
	return func(g *Generator) { g.rng = r }
}

// WithSeed seeds a deterministic random source.
func WithSeed(seed uint64) GeneratorOption {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithClock sets the function used to stamp readings.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// WithWalks replaces the walks of the given channels. Channels missing from
// walks keep their defaults.
func WithWalks(walks map[ChannelID]Walk) GeneratorOption {
	return func(g *Generator) {
		for id, w := range walks {
			g.walks[id] = w
		}
	}
}

// NewGenerator creates a generator with the default walk table, a
// time-seeded random source and the wall clock.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		walks: DefaultWalks(),
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Walk returns the walk used for id.
func (g *Generator) Walk(id ChannelID) Walk {
	return g.walks[id]
}

// Next returns a reading stamped with the current time. Each channel moves
// from its value in prev (or its baseline when prev is nil) by a uniform
// delta in [-step, step), then is clamped and rounded.
func (g *Generator) Next(prev *Reading) Reading {
	ts := g.now().UnixMilli()
	r := Reading{Timestamp: ts, TimeLabel: TimeLabel(ts)}
	for _, id := range Channels {
		w := g.walks[id]
		v := w.Baseline
		if prev != nil {
			v = prev.Value(id)
		}
		v += (g.rng.Float64()*2 - 1) * w.Step
		r.set(id, w.apply(v))
	}
	return r
}
