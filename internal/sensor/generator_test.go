package sensor

import (
	"math"
	"testing"
	"time"
)

const eps = 1e-9

func TestNextWithinClampRange(t *testing.T) {
	g := NewGenerator(WithSeed(42))
	walks := DefaultWalks()

	var prev *Reading
	for i := 0; i < 5000; i++ {
		r := g.Next(prev)
		for _, id := range Channels {
			w := walks[id]
			v := r.Value(id)
			if v < w.Min || v > w.Max {
				t.Fatalf("reading %d: %s = %v outside [%v, %v]", i, id, v, w.Min, w.Max)
			}
		}
		prev = &r
	}
}

func TestNextBoundedStep(t *testing.T) {
	g := NewGenerator(WithSeed(7))
	walks := DefaultWalks()

	prev := g.Next(nil)
	for i := 0; i < 5000; i++ {
		next := g.Next(&prev)
		for _, id := range Channels {
			delta := math.Abs(next.Value(id) - prev.Value(id))
			if delta > walks[id].Step+eps {
				t.Fatalf("step %d: %s moved %v, max %v", i, id, delta, walks[id].Step)
			}
		}
		prev = next
	}
}

func TestNextStartsFromBaseline(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		r := NewGenerator(WithSeed(seed)).Next(nil)

		if r.Temperature < 29.5 || r.Temperature > 30.5 {
			t.Errorf("seed %d: temperature %v not within 30±0.5", seed, r.Temperature)
		}
		if r.Pulse < 73 || r.Pulse > 77 {
			t.Errorf("seed %d: pulse %v not within 75±2", seed, r.Pulse)
		}
		if r.Sound < 45 || r.Sound > 55 {
			t.Errorf("seed %d: sound %v not within 50±5", seed, r.Sound)
		}
	}
}

func TestNextRounding(t *testing.T) {
	g := NewGenerator(WithSeed(3))
	var prev *Reading
	for i := 0; i < 500; i++ {
		r := g.Next(prev)
		if r.Pulse != math.Round(r.Pulse) {
			t.Fatalf("pulse %v is not whole", r.Pulse)
		}
		if r.Sound != math.Round(r.Sound) {
			t.Fatalf("sound %v is not whole", r.Sound)
		}
		if tenths := r.Temperature * 10; math.Abs(tenths-math.Round(tenths)) > 1e-6 {
			t.Fatalf("temperature %v has more than one decimal", r.Temperature)
		}
		prev = &r
	}
}

func TestNextClampsAtEdges(t *testing.T) {
	g := NewGenerator(WithSeed(11))
	top := Reading{Temperature: 40, Pulse: 100, Sound: 90}
	bottom := Reading{Temperature: 20, Pulse: 60, Sound: 30}

	for i := 0; i < 200; i++ {
		r := g.Next(&top)
		if r.Temperature > 40 || r.Pulse > 100 || r.Sound > 90 {
			t.Fatalf("upper clamp violated: %+v", r)
		}
		r = g.Next(&bottom)
		if r.Temperature < 20 || r.Pulse < 60 || r.Sound < 30 {
			t.Fatalf("lower clamp violated: %+v", r)
		}
	}
}

func TestNextTimestamp(t *testing.T) {
	now := time.Date(2026, 2, 21, 9, 5, 7, 250*int(time.Millisecond), time.Local)
	g := NewGenerator(WithSeed(1), WithClock(func() time.Time { return now }))

	r := g.Next(nil)
	if r.Timestamp != now.UnixMilli() {
		t.Errorf("Timestamp: got %d, want %d", r.Timestamp, now.UnixMilli())
	}
	if r.TimeLabel != "09:05:07" {
		t.Errorf("TimeLabel: got %q, want 09:05:07", r.TimeLabel)
	}
	if !r.Time().Equal(now) {
		t.Errorf("Time(): got %v, want %v", r.Time(), now)
	}
}

func TestNextDeterministicWithSeed(t *testing.T) {
	clock := func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	a := NewGenerator(WithSeed(99), WithClock(clock))
	b := NewGenerator(WithSeed(99), WithClock(clock))

	var pa, pb *Reading
	for i := 0; i < 50; i++ {
		ra, rb := a.Next(pa), b.Next(pb)
		if ra != rb {
			t.Fatalf("reading %d differs: %+v vs %+v", i, ra, rb)
		}
		pa, pb = &ra, &rb
	}
}

func TestWithWalksOverride(t *testing.T) {
	g := NewGenerator(WithSeed(5), WithWalks(map[ChannelID]Walk{
		Pulse: {Baseline: 80, Step: 1, Min: 79, Max: 81},
	}))

	if w := g.Walk(Temperature); w != DefaultWalks()[Temperature] {
		t.Errorf("temperature walk changed: %+v", w)
	}

	var prev *Reading
	for i := 0; i < 100; i++ {
		r := g.Next(prev)
		if r.Pulse < 79 || r.Pulse > 81 {
			t.Fatalf("pulse %v outside overridden range", r.Pulse)
		}
		prev = &r
	}
}

func TestWalkValidate(t *testing.T) {
	tests := []struct {
		name    string
		walk    Walk
		wantErr bool
	}{
		{"default temperature", DefaultWalks()[Temperature], false},
		{"zero step", Walk{Baseline: 1, Step: 0, Min: 0, Max: 2}, true},
		{"inverted range", Walk{Baseline: 1, Step: 1, Min: 2, Max: 0}, true},
		{"baseline outside", Walk{Baseline: 5, Step: 1, Min: 0, Max: 2}, true},
		{"negative decimals", Walk{Baseline: 1, Step: 1, Min: 0, Max: 2, Decimals: -1}, true},
	}
	for _, tt := range tests {
		err := tt.walk.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
