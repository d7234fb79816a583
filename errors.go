package gauge

import "errors"

// Sentinel errors for configuration problems that would otherwise propagate
// NaN, Inf or unbounded loops into rendered geometry.
var (
	// ErrEmptyDomain is returned when MinVal equals MaxVal.
	ErrEmptyDomain = errors.New("gauge: min_val and max_val must differ")

	// ErrInvalidRadius is returned when GaugeRadius is not positive.
	ErrInvalidRadius = errors.New("gauge: gauge_radius must be positive")

	// ErrInvalidThicknessBasis is returned when ThicknessBasis is not positive.
	ErrInvalidThicknessBasis = errors.New("gauge: thickness_basis must be positive")

	// ErrInvalidTickSpacing is returned when a tick interval maps to a
	// non-positive angular step.
	ErrInvalidTickSpacing = errors.New("gauge: tick spacing must map to a positive angle")

	// ErrTooManyTicks is returned when a tick interval would generate more
	// than MaxTicks ticks.
	ErrTooManyTicks = errors.New("gauge: too many ticks")

	// ErrInvalidFractionDigits is returned when FractionDigits is outside [0, 20].
	ErrInvalidFractionDigits = errors.New("gauge: fraction_digits must be within [0, 20]")

	// ErrNonFinite is returned when a numeric field is NaN or infinite.
	ErrNonFinite = errors.New("gauge: numeric field is not finite")

	// ErrInvalidLocale is returned when Locale is not a valid BCP 47 tag.
	ErrInvalidLocale = errors.New("gauge: invalid locale")

	// ErrClosed is returned by Gauge methods after Close.
	ErrClosed = errors.New("gauge: closed")
)

// FieldError reports which configuration field failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Err.Error() + " (" + e.Field + ")"
}

func (e *FieldError) Unwrap() error { return e.Err }
