package gauge

import (
	"sync"
	"time"
)

// UpdateKind classifies what an Update changed.
type UpdateKind uint8

const (
	UpdateNone     UpdateKind = iota // nothing changed
	UpdateValue                      // value-only: transition, no relayout
	UpdateRelayout                   // config changed: full relayout
)

var updateKindNames = [...]string{
	UpdateNone:     "None",
	UpdateValue:    "Value",
	UpdateRelayout: "Relayout",
}

// String returns the string representation of an UpdateKind.
func (k UpdateKind) String() string {
	if int(k) < len(updateKindNames) {
		return updateKindNames[k]
	}
	return "Unknown"
}

// Update carries the properties changed by the host. Nil fields are left
// as they are.
type Update struct {
	Config *Config
	Value  *float64
}

// Gauge owns one dial: its config, its needle value, the laid-out scene and
// the needle animation. Methods are safe for concurrent use.
type Gauge struct {
	opts      options
	scheduler Scheduler
	ticker    *TickerScheduler // non-nil when the gauge owns its scheduler

	mu     sync.Mutex
	cfg    Config
	value  float64
	scene  *Scene
	anim   Animator
	cancel func()
	gen    uint64
	closed bool
}

// New validates cfg, lays it out and returns a gauge at rest at MinVal.
func New(cfg Config, opts ...Option) (*Gauge, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cfg = cfg.Clone()
	scene, err := Layout(cfg)
	if err != nil {
		return nil, err
	}
	rest, err := NewTransition(cfg.MinVal, cfg.MinVal, cfg)
	if err != nil {
		return nil, err
	}

	g := &Gauge{
		opts:      o,
		scheduler: o.scheduler,
		cfg:       cfg,
		value:     cfg.MinVal,
		scene:     scene,
	}
	if g.scheduler == nil {
		g.ticker = NewTickerScheduler(DefaultFrameInterval)
		g.scheduler = g.ticker
	}
	g.anim.Rest(rest.At(1))
	return g, nil
}

// Update applies u. A config that differs from the current one triggers a
// full relayout; the needle then animates from the previous value when the
// value changed in the same update, or from MinVal otherwise. A value-only
// change animates from wherever the needle currently is.
//
// On error the gauge is left unchanged.
func (g *Gauge) Update(u Update) (UpdateKind, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return UpdateNone, ErrClosed
	}
	if u.Value != nil && !finite(*u.Value) {
		g.mu.Unlock()
		return UpdateNone, &FieldError{Field: "value", Err: ErrNonFinite}
	}

	cfgChanged := u.Config != nil && !u.Config.Equal(g.cfg)
	valueChanged := u.Value != nil && *u.Value != g.value
	now := g.opts.clock()

	switch {
	case cfgChanged:
		cfg := u.Config.Clone()
		scene, err := Layout(cfg)
		if err != nil {
			g.mu.Unlock()
			Logger().Warn("gauge: rejected config", "id", u.Config.ID, "err", err)
			return UpdateNone, err
		}
		from := cfg.MinVal
		to := g.value
		if valueChanged {
			from, to = g.value, *u.Value
		}
		tr, err := g.newTransition(from, to, cfg)
		if err != nil {
			g.mu.Unlock()
			return UpdateNone, err
		}
		g.cfg, g.scene, g.value = cfg, scene, to
		g.anim.Start(tr, now)
		g.scheduleLocked()
		out := g.scene.Apply(g.anim.Last())
		onScene := g.opts.onScene
		g.mu.Unlock()

		Logger().Debug("gauge: relayout", "id", cfg.ID, "from", from, "to", to)
		if onScene != nil {
			onScene(out)
		}
		return UpdateRelayout, nil

	case valueChanged:
		superseded := g.anim.State() == Transitioning
		live := g.anim.Live(now)
		tr, err := g.anim.Transition().Retarget(live, *u.Value, g.cfg)
		if err != nil {
			g.mu.Unlock()
			return UpdateNone, err
		}
		tr.Duration, tr.Easing = g.opts.duration, g.opts.easing
		g.value = *u.Value
		g.anim.Start(tr, now)
		g.scheduleLocked()
		id := g.cfg.ID
		g.mu.Unlock()

		Logger().Debug("gauge: transition",
			"id", id, "from", live.Value, "to", *u.Value, "superseded", superseded)
		return UpdateValue, nil
	}

	g.mu.Unlock()
	return UpdateNone, nil
}

// SetValue is shorthand for Update with only a value.
func (g *Gauge) SetValue(v float64) (UpdateKind, error) {
	return g.Update(Update{Value: &v})
}

// SetConfig is shorthand for Update with only a config.
func (g *Gauge) SetConfig(cfg Config) (UpdateKind, error) {
	return g.Update(Update{Config: &cfg})
}

// Scene returns the current scene with the latest frame applied.
func (g *Gauge) Scene() *Scene {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scene.Apply(g.anim.Last())
}

// Frame returns the latest frame.
func (g *Gauge) Frame() Frame {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.anim.Last()
}

// Value returns the target needle value.
func (g *Gauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Config returns a copy of the current config.
func (g *Gauge) Config() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg.Clone()
}

// State returns the animator state.
func (g *Gauge) State() AnimatorState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.anim.State()
}

// Close cancels the pending frame callback and stops the gauge's own
// scheduler, if any. Close is idempotent. It must not be called from a
// frame listener.
func (g *Gauge) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	g.gen++
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.mu.Unlock()

	if g.ticker != nil {
		g.ticker.Close()
	}
	return nil
}

func (g *Gauge) newTransition(from, to float64, cfg Config) (Transition, error) {
	tr, err := NewTransition(from, to, cfg)
	if err != nil {
		return Transition{}, err
	}
	tr.Duration = g.opts.duration
	tr.Easing = g.opts.easing
	return tr, nil
}

// scheduleLocked replaces the frame subscription. The generation check in
// the callback drops a frame that was already dequeued when it was
// cancelled.
func (g *Gauge) scheduleLocked() {
	if g.cancel != nil {
		g.cancel()
	}
	g.gen++
	gen := g.gen
	g.cancel = g.scheduler.Schedule(func(now time.Time) {
		g.onFrame(gen, now)
	})
}

func (g *Gauge) onFrame(gen uint64, now time.Time) {
	g.mu.Lock()
	if g.closed || gen != g.gen {
		g.mu.Unlock()
		return
	}
	f := g.anim.Advance(now)
	if f.Done {
		g.cancel = nil
	} else {
		g.scheduleLocked()
	}
	onFrame := g.opts.onFrame
	g.mu.Unlock()

	if onFrame != nil {
		onFrame(f)
	}
}
