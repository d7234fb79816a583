package gauge

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type harness struct {
	g      *Gauge
	sched  *ManualScheduler
	clock  *fakeClock
	t0     time.Time
	frames []Frame
	scenes []*Scene
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		sched: NewManualScheduler(),
		t0:    time.Unix(1_700_000_000, 0),
	}
	h.clock = &fakeClock{now: h.t0}
	opts = append([]Option{
		WithScheduler(h.sched),
		WithClock(h.clock.Now),
		WithFrameListener(func(f Frame) { h.frames = append(h.frames, f) }),
		WithSceneListener(func(s *Scene) { h.scenes = append(h.scenes, s) }),
	}, opts...)
	g, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { g.Close() })
	h.g = g
	return h
}

// at steps the scheduler at t0+d.
func (h *harness) at(d time.Duration) {
	h.sched.Step(h.t0.Add(d))
}

func (h *harness) last() Frame {
	return h.frames[len(h.frames)-1]
}

func TestNewRestsAtMin(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	if h.g.Value() != 0 {
		t.Errorf("Value() = %v, want 0", h.g.Value())
	}
	if h.g.State() != Idle {
		t.Errorf("State() = %v, want Idle", h.g.State())
	}
	sc := h.g.Scene()
	if sc.UnitsLabel.Text != "0 %" {
		t.Errorf("units label = %q, want %q", sc.UnitsLabel.Text, "0 %")
	}
	if sc.Needle.Transform != "rotate(20,200,200)" {
		t.Errorf("needle transform = %q", sc.Needle.Transform)
	}
	if h.sched.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", h.sched.Pending())
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GaugeRadius = -1
	if _, err := New(cfg, WithScheduler(NewManualScheduler())); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("New() error = %v, want ErrInvalidRadius", err)
	}
}

func TestSetValueAnimates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FractionDigits = 1
	h := newHarness(t, cfg)

	kind, err := h.g.SetValue(50)
	if err != nil || kind != UpdateValue {
		t.Fatalf("SetValue() = %v, %v; want UpdateValue", kind, err)
	}
	if h.sched.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", h.sched.Pending())
	}

	h.at(150 * time.Millisecond)
	if len(h.frames) != 1 || h.last().Done {
		t.Fatalf("frames after 150ms = %+v", h.frames)
	}
	h.at(300 * time.Millisecond)
	end := h.last()
	if !end.Done || end.Text != "50.0 %" || end.Transform != "rotate(140,200,200)" {
		t.Errorf("final frame = %+v", end)
	}
	if h.sched.Pending() != 0 {
		t.Errorf("Pending() after completion = %d, want 0", h.sched.Pending())
	}
	if h.g.State() != Idle {
		t.Errorf("State() = %v, want Idle", h.g.State())
	}
	if got := h.g.Scene().UnitsLabel.Text; got != "50.0 %" {
		t.Errorf("scene units label = %q", got)
	}
	if len(h.scenes) != 0 {
		t.Errorf("value-only update relayouted %d times", len(h.scenes))
	}
}

func TestSupersedeStartsFromLiveFrame(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	h.g.SetValue(100)
	h.at(150 * time.Millisecond)
	live := h.last()

	h.clock.Set(h.t0.Add(150 * time.Millisecond))
	if kind, err := h.g.SetValue(0); err != nil || kind != UpdateValue {
		t.Fatalf("SetValue() = %v, %v", kind, err)
	}
	if h.sched.Pending() != 1 {
		t.Fatalf("Pending() after supersede = %d, want 1", h.sched.Pending())
	}

	h.at(150 * time.Millisecond)
	first := h.last()
	if !near(first.Angle, live.Angle, eps) || !near(first.Value, live.Value, eps) {
		t.Errorf("first superseding frame = %+v, want live %+v", first, live)
	}

	h.at(450 * time.Millisecond)
	if end := h.last(); !end.Done || end.Value != 0 || !near(end.Angle, 20, eps) {
		t.Errorf("final frame = %+v", end)
	}
}

func TestRapidUpdatesKeepOneSubscription(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	for _, v := range []float64{10, 20, 30, 40} {
		h.g.SetValue(v)
		if h.sched.Pending() != 1 {
			t.Fatalf("Pending() after SetValue(%v) = %d, want 1", v, h.sched.Pending())
		}
	}
	h.at(time.Second)
	if len(h.frames) != 1 {
		t.Errorf("frames = %d, want 1", len(h.frames))
	}
	if h.last().Value != 40 {
		t.Errorf("final value = %v, want 40", h.last().Value)
	}
}

func TestCloseReleasesSubscription(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.g.SetValue(70)
	if err := h.g.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if h.sched.Pending() != 0 {
		t.Errorf("Pending() after Close = %d, want 0", h.sched.Pending())
	}
	h.at(time.Second)
	if len(h.frames) != 0 {
		t.Errorf("frames delivered after Close: %d", len(h.frames))
	}
	if _, err := h.g.SetValue(1); !errors.Is(err, ErrClosed) {
		t.Errorf("SetValue() after Close error = %v, want ErrClosed", err)
	}
	if err := h.g.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestUpdateClassification(t *testing.T) {
	retitled := DefaultConfig()
	retitled.Title = "Speed"
	same := DefaultConfig()
	zero := 0.0
	five := 5.0

	tests := []struct {
		name string
		u    Update
		want UpdateKind
	}{
		{"empty", Update{}, UpdateNone},
		{"same value", Update{Value: &zero}, UpdateNone},
		{"equal config", Update{Config: &same}, UpdateNone},
		{"value", Update{Value: &five}, UpdateValue},
		{"config", Update{Config: &retitled}, UpdateRelayout},
		{"config and value", Update{Config: &retitled, Value: &five}, UpdateRelayout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, DefaultConfig())
			got, err := h.g.Update(tt.u)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Update() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRelayoutTransitionOrigin(t *testing.T) {
	cfg := DefaultConfig()
	h := newHarness(t, cfg)
	h.g.SetValue(40)
	h.at(time.Second)

	retitled := cfg
	retitled.Title = "Load"

	t.Run("value unchanged starts at min", func(t *testing.T) {
		kind, err := h.g.SetConfig(retitled)
		if err != nil || kind != UpdateRelayout {
			t.Fatalf("SetConfig() = %v, %v", kind, err)
		}
		if f := h.g.Frame(); f.Value != 0 {
			t.Errorf("relayout start value = %v, want MinVal 0", f.Value)
		}
		if h.g.Value() != 40 {
			t.Errorf("Value() = %v, want 40", h.g.Value())
		}
		if len(h.scenes) != 1 || h.scenes[0].TitleLabel.Text != "Load" {
			t.Errorf("scene listener got %d scenes", len(h.scenes))
		}
		h.at(2 * time.Second)
		if end := h.last(); end.Value != 40 {
			t.Errorf("relayout end value = %v, want 40", end.Value)
		}
	})

	t.Run("value changed starts at previous value", func(t *testing.T) {
		moved := retitled
		moved.Units = "rpm"
		v := 90.0
		kind, err := h.g.Update(Update{Config: &moved, Value: &v})
		if err != nil || kind != UpdateRelayout {
			t.Fatalf("Update() = %v, %v", kind, err)
		}
		if f := h.g.Frame(); f.Value != 40 || f.Text != "40 rpm" {
			t.Errorf("relayout start frame = %+v, want 40 rpm", f)
		}
		h.at(3 * time.Second)
		if end := h.last(); end.Value != 90 || end.Text != "90 rpm" {
			t.Errorf("relayout end frame = %+v", end)
		}
	})
}

func TestUpdateRejectsInvalid(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	bad := DefaultConfig()
	bad.TickSpaceMajVal = -5
	if kind, err := h.g.SetConfig(bad); !errors.Is(err, ErrInvalidTickSpacing) || kind != UpdateNone {
		t.Errorf("SetConfig(bad) = %v, %v", kind, err)
	}
	if h.g.Config().TickSpaceMajVal != 10 {
		t.Error("rejected config was applied")
	}

	if _, err := h.g.SetValue(math.Inf(1)); !errors.Is(err, ErrNonFinite) {
		t.Errorf("SetValue(+Inf) error = %v, want ErrNonFinite", err)
	}
	if h.sched.Pending() != 0 {
		t.Errorf("rejected updates scheduled %d callbacks", h.sched.Pending())
	}
}

func TestConfigIsolation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ranges = []Range{{Start: 0, End: 50, Color: "#0f0"}}
	h := newHarness(t, cfg)

	cfg.Ranges[0].Color = "#f00"
	if got := h.g.Config().Ranges[0].Color; got != "#0f0" {
		t.Errorf("gauge config shares ranges with caller: %q", got)
	}
}

func TestGaugeOwnTicker(t *testing.T) {
	done := make(chan Frame, 64)
	g, err := New(DefaultConfig(),
		WithDuration(20*time.Millisecond),
		WithEasing(Linear),
		WithFrameListener(func(f Frame) {
			select {
			case done <- f:
			default:
			}
		}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { g.Close() })

	g.SetValue(75)
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-done:
			if f.Done {
				if f.Value != 75 {
					t.Errorf("final value = %v, want 75", f.Value)
				}
				return
			}
		case <-deadline:
			t.Fatal("transition did not finish within 2s")
		}
	}
}

func TestUpdateKindString(t *testing.T) {
	tests := map[UpdateKind]string{
		UpdateNone:     "None",
		UpdateValue:    "Value",
		UpdateRelayout: "Relayout",
		UpdateKind(42): "Unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
