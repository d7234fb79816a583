package gauge

import "time"

// Option configures a Gauge during creation.
//
// Example:
//
//	// Headless gauge on its own 60 fps ticker
//	g, err := gauge.New(cfg)
//
//	// Host-driven frames, e.g. from an ebiten Update
//	sched := gauge.NewManualScheduler()
//	g, err := gauge.New(cfg, gauge.WithScheduler(sched))
type Option func(*options)

// options holds optional configuration for Gauge creation.
type options struct {
	scheduler Scheduler
	clock     func() time.Time
	duration  time.Duration
	easing    Easing
	onFrame   func(Frame)
	onScene   func(*Scene)
}

// defaultOptions returns the default gauge options.
func defaultOptions() options {
	return options{
		scheduler: nil, // a TickerScheduler owned by the gauge
		clock:     time.Now,
		duration:  DefaultDuration,
		easing:    SineOut,
	}
}

// WithScheduler sets the frame scheduler. The gauge does not close a
// scheduler it was given.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithClock replaces time.Now as the source of transition start times.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithDuration sets the transition length. Zero or negative durations jump
// straight to the target on the next frame.
func WithDuration(d time.Duration) Option {
	return func(o *options) {
		o.duration = d
	}
}

// WithEasing sets the transition easing. Nil keeps SineOut.
func WithEasing(e Easing) Option {
	return func(o *options) {
		if e != nil {
			o.easing = e
		}
	}
}

// WithFrameListener registers fn to receive every transition frame.
// fn runs on the scheduler's goroutine, outside the gauge's lock.
func WithFrameListener(fn func(Frame)) Option {
	return func(o *options) {
		o.onFrame = fn
	}
}

// WithSceneListener registers fn to receive the scene after every relayout.
func WithSceneListener(fn func(*Scene)) Option {
	return func(o *options) {
		o.onScene = fn
	}
}
