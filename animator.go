package gauge

import "time"

// AnimatorState is the state of an Animator.
type AnimatorState uint8

const (
	Idle          AnimatorState = iota // needle at rest
	Transitioning                      // a transition is in flight
)

var animatorStateNames = [...]string{
	Idle:          "Idle",
	Transitioning: "Transitioning",
}

// String returns the string representation of an AnimatorState.
func (s AnimatorState) String() string {
	if int(s) < len(animatorStateNames) {
		return animatorStateNames[s]
	}
	return "Unknown"
}

// Animator drives a Transition against wall-clock time.
//
// Idle holds the last frame. Start and Retarget move to Transitioning from
// either state; Advance commits Idle once the transition's duration has
// elapsed. Animator is not safe for concurrent use.
type Animator struct {
	state AnimatorState
	tr    Transition
	start time.Time
	last  Frame
}

// State returns the current state.
func (a *Animator) State() AnimatorState { return a.state }

// Transition returns the active (or most recent) transition.
func (a *Animator) Transition() Transition { return a.tr }

// Last returns the most recently produced frame.
func (a *Animator) Last() Frame { return a.last }

// Rest puts the animator in Idle with f as its frame.
func (a *Animator) Rest(f Frame) {
	a.state = Idle
	a.last = f
}

// Start begins tr at now, replacing any transition in flight.
func (a *Animator) Start(tr Transition, now time.Time) {
	a.tr = tr
	a.start = now
	a.state = Transitioning
	a.last = tr.At(0)
}

// Retarget supersedes the current motion with a transition to value that
// starts from the live frame at now.
func (a *Animator) Retarget(value float64, cfg Config, now time.Time) error {
	tr, err := a.tr.Retarget(a.Live(now), value, cfg)
	if err != nil {
		return err
	}
	a.Start(tr, now)
	return nil
}

// Live returns the frame at now without changing state.
func (a *Animator) Live(now time.Time) Frame {
	if a.state == Idle {
		return a.last
	}
	return a.tr.At(a.progress(now))
}

// Advance returns the frame at now. Calls at the same instant return the
// same frame; once the duration has elapsed the animator is Idle and keeps
// returning the final frame.
func (a *Animator) Advance(now time.Time) Frame {
	if a.state == Idle {
		return a.last
	}
	f := a.tr.At(a.progress(now))
	a.last = f
	if f.Done {
		a.state = Idle
	}
	return f
}

func (a *Animator) progress(now time.Time) float64 {
	d := a.tr.Duration
	if d <= 0 {
		return 1
	}
	return float64(now.Sub(a.start)) / float64(d)
}
