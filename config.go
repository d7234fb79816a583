package gauge

import (
	"math"
	"reflect"
	"slices"

	"golang.org/x/text/language"
)

// DefaultFonts is the CSS font stack used for tick labels and the units label.
const DefaultFonts = `"Helvetica Neue", Helvetica, Arial, sans-serif`

// Range paints a colored band over the dial between Start and End.
// Ranges are painted in order, so later ranges cover earlier ones.
type Range struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
	Color string  `yaml:"color" json:"color"`
}

// Config describes one gauge. It is treated as immutable for the duration of
// a render; any change to it requires a full relayout.
//
// Length fields (Padding, EdgeWidth, TickEdgeGap, TickLengthMaj,
// TickLengthMin, NeedleTickGap, NeedleLengthNeg, PivotRadius) are ratios of
// GaugeRadius and are expected in [0, 1]. Width fields and LabelFontSize are
// scaled by GaugeRadius / ThicknessBasis.
//
// Angles are in degrees, measured clockwise from straight down.
type Config struct {
	ID string `yaml:"id" json:"id"`

	GaugeRadius float64 `yaml:"gauge_radius" json:"gauge_radius"`

	MinVal float64 `yaml:"min_val" json:"min_val"`
	MaxVal float64 `yaml:"max_val" json:"max_val"`

	TickSpaceMinVal float64 `yaml:"tick_space_min_val" json:"tick_space_min_val"`
	TickSpaceMajVal float64 `yaml:"tick_space_maj_val" json:"tick_space_maj_val"`

	Units string `yaml:"units" json:"units"`
	Title string `yaml:"title" json:"title"`

	Padding         float64 `yaml:"padding" json:"padding"`
	EdgeWidth       float64 `yaml:"edge_width" json:"edge_width"`
	TickEdgeGap     float64 `yaml:"tick_edge_gap" json:"tick_edge_gap"`
	TickLengthMaj   float64 `yaml:"tick_length_maj" json:"tick_length_maj"`
	TickLengthMin   float64 `yaml:"tick_length_min" json:"tick_length_min"`
	NeedleTickGap   float64 `yaml:"needle_tick_gap" json:"needle_tick_gap"`
	NeedleLengthNeg float64 `yaml:"needle_length_neg" json:"needle_length_neg"`
	PivotRadius     float64 `yaml:"pivot_radius" json:"pivot_radius"`

	ThicknessBasis float64 `yaml:"thickness_basis" json:"thickness_basis"`
	NeedleWidth    float64 `yaml:"needle_width" json:"needle_width"`
	TickWidthMaj   float64 `yaml:"tick_width_maj" json:"tick_width_maj"`
	TickWidthMin   float64 `yaml:"tick_width_min" json:"tick_width_min"`
	LabelFontSize  float64 `yaml:"label_font_size" json:"label_font_size"`

	ZeroTickAngle   float64 `yaml:"zero_tick_angle" json:"zero_tick_angle"`
	MaxTickAngle    float64 `yaml:"max_tick_angle" json:"max_tick_angle"`
	ZeroNeedleAngle float64 `yaml:"zero_needle_angle" json:"zero_needle_angle"`
	MaxNeedleAngle  float64 `yaml:"max_needle_angle" json:"max_needle_angle"`

	TickColMaj    string `yaml:"tick_col_maj" json:"tick_col_maj"`
	TickColMin    string `yaml:"tick_col_min" json:"tick_col_min"`
	OuterEdgeCol  string `yaml:"outer_edge_col" json:"outer_edge_col"`
	PivotCol      string `yaml:"pivot_col" json:"pivot_col"`
	InnerCol      string `yaml:"inner_col" json:"inner_col"`
	UnitsLabelCol string `yaml:"units_label_col" json:"units_label_col"`
	TickLabelCol  string `yaml:"tick_label_col" json:"tick_label_col"`
	NeedleCol     string `yaml:"needle_col" json:"needle_col"`

	TickFont  string `yaml:"tick_font" json:"tick_font"`
	UnitsFont string `yaml:"units_font" json:"units_font"`

	Ranges []Range `yaml:"ranges" json:"ranges"`

	UnitsOffset    float64 `yaml:"units_offset" json:"units_offset"`
	FractionDigits int     `yaml:"fraction_digits" json:"fraction_digits"`

	// Locale selects locale-aware number formatting for the readout
	// (e.g. "de" renders 50,5). Empty means plain decimal formatting.
	Locale string `yaml:"locale,omitempty" json:"locale,omitempty"`
}

// DefaultConfig returns a fully populated Config with the stock dial.
func DefaultConfig() Config {
	return Config{
		ID:              "vizBox",
		GaugeRadius:     200,
		MinVal:          0,
		MaxVal:          100,
		TickSpaceMinVal: 1,
		TickSpaceMajVal: 10,
		Units:           "%",
		Padding:         0.05,
		EdgeWidth:       0.05,
		TickEdgeGap:     0.05,
		TickLengthMaj:   0.15,
		TickLengthMin:   0.05,
		NeedleTickGap:   0.05,
		NeedleLengthNeg: 0.2,
		PivotRadius:     0.1,
		ThicknessBasis:  200,
		NeedleWidth:     5,
		TickWidthMaj:    3,
		TickWidthMin:    1,
		LabelFontSize:   18,
		ZeroTickAngle:   60,
		MaxTickAngle:    300,
		ZeroNeedleAngle: 40,
		MaxNeedleAngle:  320,
		TickColMaj:      "#0099CC",
		TickColMin:      "#000",
		OuterEdgeCol:    "#0099CC",
		PivotCol:        "#999",
		InnerCol:        "#fff",
		UnitsLabelCol:   "#000",
		TickLabelCol:    "#000",
		NeedleCol:       "#0099CC",
		TickFont:        DefaultFonts,
		UnitsFont:       DefaultFonts,
		Ranges:          []Range{},
	}
}

// maxFractionDigits bounds FractionDigits the way toFixed-style formatters do.
const maxFractionDigits = 20

// Validate reports configuration errors that would break geometry.
// Ratios outside [0, 1] and malformed ranges are not errors: they render
// as given.
func (c Config) Validate() error {
	numbers := []struct {
		name string
		v    float64
	}{
		{"gauge_radius", c.GaugeRadius},
		{"min_val", c.MinVal},
		{"max_val", c.MaxVal},
		{"tick_space_min_val", c.TickSpaceMinVal},
		{"tick_space_maj_val", c.TickSpaceMajVal},
		{"padding", c.Padding},
		{"edge_width", c.EdgeWidth},
		{"tick_edge_gap", c.TickEdgeGap},
		{"tick_length_maj", c.TickLengthMaj},
		{"tick_length_min", c.TickLengthMin},
		{"needle_tick_gap", c.NeedleTickGap},
		{"needle_length_neg", c.NeedleLengthNeg},
		{"pivot_radius", c.PivotRadius},
		{"thickness_basis", c.ThicknessBasis},
		{"needle_width", c.NeedleWidth},
		{"tick_width_maj", c.TickWidthMaj},
		{"tick_width_min", c.TickWidthMin},
		{"label_font_size", c.LabelFontSize},
		{"zero_tick_angle", c.ZeroTickAngle},
		{"max_tick_angle", c.MaxTickAngle},
		{"zero_needle_angle", c.ZeroNeedleAngle},
		{"max_needle_angle", c.MaxNeedleAngle},
		{"units_offset", c.UnitsOffset},
	}
	for _, n := range numbers {
		if math.IsNaN(n.v) || math.IsInf(n.v, 0) {
			return &FieldError{Field: n.name, Err: ErrNonFinite}
		}
	}

	if c.GaugeRadius <= 0 {
		return &FieldError{Field: "gauge_radius", Err: ErrInvalidRadius}
	}
	if c.ThicknessBasis <= 0 {
		return &FieldError{Field: "thickness_basis", Err: ErrInvalidThicknessBasis}
	}
	if c.MaxVal == c.MinVal {
		return &FieldError{Field: "max_val", Err: ErrEmptyDomain}
	}
	if c.FractionDigits < 0 || c.FractionDigits > maxFractionDigits {
		return &FieldError{Field: "fraction_digits", Err: ErrInvalidFractionDigits}
	}
	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			return &FieldError{Field: "locale", Err: ErrInvalidLocale}
		}
	}
	return nil
}

// Equal reports whether c and o describe the same gauge.
func (c Config) Equal(o Config) bool {
	if !slices.Equal(c.Ranges, o.Ranges) {
		return false
	}
	// nil and empty range lists are the same gauge.
	c.Ranges, o.Ranges = nil, nil
	return reflect.DeepEqual(c, o)
}

// Clone returns a copy of c that shares no memory with it.
func (c Config) Clone() Config {
	c.Ranges = slices.Clone(c.Ranges)
	return c
}

// origin returns the dial center; the gauge always sits centered in a
// square viewport of side 2*GaugeRadius.
func (c Config) origin() Point {
	return Point{X: c.GaugeRadius, Y: c.GaugeRadius}
}
