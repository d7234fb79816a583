package gauge

// Scale maps domain values linearly onto tick angles (degrees).
//
// A Scale is a plain value built from a Config on every layout. It is never
// cached on a gauge, so a config change can never leave a stale mapping
// behind.
type Scale struct {
	d0, d1 float64
	r0, r1 float64
}

// NewScale returns the scale [MinVal, MaxVal] -> [ZeroTickAngle, MaxTickAngle].
// It returns ErrEmptyDomain when the domain has zero length.
func NewScale(cfg Config) (Scale, error) {
	if cfg.MaxVal == cfg.MinVal {
		return Scale{}, ErrEmptyDomain
	}
	return Scale{
		d0: cfg.MinVal,
		d1: cfg.MaxVal,
		r0: cfg.ZeroTickAngle,
		r1: cfg.MaxTickAngle,
	}, nil
}

// At returns the angle for v. Values outside the domain extrapolate.
//
// The blend r0*(1-t) + r1*t maps the domain bounds onto the range bounds
// exactly.
func (s Scale) At(v float64) float64 {
	t := (v - s.d0) / (s.d1 - s.d0)
	return s.r0*(1-t) + s.r1*t
}

// Step returns the angular distance covered by a domain interval of size v.
// It relies on the mapping being affine, which makes the step independent of
// where the interval starts.
func (s Scale) Step(v float64) float64 {
	return s.At(v) - s.At(0)
}
