package gauge

import (
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	// MaxTicks bounds the number of ticks of either kind a layout may emit.
	MaxTicks = 10000

	// minLabelFontSize is the smallest scaled label size still drawn.
	// Smaller labels are hidden by setting their size to zero.
	minLabelFontSize = 6

	// tickEpsilon is the relative slack on span/spacing that keeps a tick
	// landing on MaxTickAngle up to float rounding.
	tickEpsilon = 1e-12

	unitsFontScale = 2.5
	titleFontScale = 1.5
	titleHeight    = 0.75
)

// Layout computes every primitive of the gauge described by cfg.
//
// Layout is a pure function: it keeps no state between calls and identical
// configs produce identical scenes. The needle is placed at ZeroNeedleAngle;
// use a Transition and Scene.Apply to rotate it to a value.
func Layout(cfg Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scale, err := NewScale(cfg)
	if err != nil {
		return nil, err
	}

	r := cfg.GaugeRadius
	o := cfg.origin()
	thickness := r / cfg.ThicknessBasis

	padding := cfg.Padding * r
	edgeWidth := cfg.EdgeWidth * r
	tickEdgeGap := cfg.TickEdgeGap * r
	tickLengthMaj := cfg.TickLengthMaj * r
	tickLengthMin := cfg.TickLengthMin * r
	needleTickGap := cfg.NeedleTickGap * r
	needleLengthNeg := cfg.NeedleLengthNeg * r
	pivotRadius := cfg.PivotRadius * r

	needleWidth := cfg.NeedleWidth * thickness
	tickWidthMaj := cfg.TickWidthMaj * thickness
	tickWidthMin := cfg.TickWidthMin * thickness
	labelFontSize := cfg.LabelFontSize * thickness

	needleLengthPos := r - padding - edgeWidth - tickEdgeGap - tickLengthMaj - needleTickGap
	needlePathLength := needleLengthNeg + needleLengthPos
	needlePathStart := -needleLengthNeg
	outerTickRadius := r - padding - edgeWidth - tickEdgeGap
	tickStartMaj := outerTickRadius - tickLengthMaj
	tickStartMin := outerTickRadius - tickLengthMin
	labelStart := tickStartMaj - labelFontSize
	innerEdgeRadius := r - padding - edgeWidth
	outerEdgeRadius := r - padding

	// labelStart keeps the unscaled size; only the glyphs disappear.
	if labelFontSize < minLabelFontSize {
		labelFontSize = 0
	}

	majAngles, err := tickAngles(cfg.ZeroTickAngle, cfg.MaxTickAngle, scale.Step(cfg.TickSpaceMajVal))
	if err != nil {
		return nil, fmt.Errorf("major ticks: %w", err)
	}
	minAngles, err := tickAngles(cfg.ZeroTickAngle, cfg.MaxTickAngle, scale.Step(cfg.TickSpaceMinVal))
	if err != nil {
		return nil, fmt.Errorf("minor ticks: %w", err)
	}

	sc := &Scene{
		ID:     cfg.ID,
		Width:  2 * r,
		Height: 2 * r,
		Origin: o,
		Rim:    Circle{Center: o, R: outerEdgeRadius, Style: Style{Fill: cfg.OuterEdgeCol}},
		Face:   Circle{Center: o, R: innerEdgeRadius, Style: Style{Fill: cfg.InnerCol}},
		Pivot:  Circle{Center: o, R: pivotRadius, Style: Style{Fill: cfg.PivotCol}},
	}

	sc.Bands = make([]Path, 0, len(cfg.Ranges))
	for _, rg := range cfg.Ranges {
		start := scale.At(rg.Start) - 180
		end := scale.At(rg.End) - 180
		band := annularWedge(o, outerTickRadius, tickStartMaj, start, end)
		band.Style = Style{Fill: rg.Color}
		sc.Bands = append(sc.Bands, band)
	}

	minorStyle := Style{Stroke: cfg.TickColMin, StrokeWidth: tickWidthMin}
	sc.MinorTicks = make([]Path, len(minAngles))
	for i, a := range minAngles {
		p := radialLine(o, tickStartMin, tickStartMin+tickLengthMin, a)
		p.Style = minorStyle
		sc.MinorTicks[i] = p
	}

	majorStyle := Style{Stroke: cfg.TickColMaj, StrokeWidth: tickWidthMaj}
	sc.MajorTicks = make([]Path, len(majAngles))
	sc.TickLabels = make([]Text, len(majAngles))
	for i, a := range majAngles {
		p := radialLine(o, tickStartMaj, tickStartMaj+tickLengthMaj, a)
		p.Style = majorStyle
		sc.MajorTicks[i] = p

		label := FormatNumber(cfg.MinVal + cfg.TickSpaceMajVal*float64(i))
		sc.TickLabels[i] = Text{
			Pos:        labelPos(o, labelStart, labelFontSize, a, label),
			Text:       label,
			FontSize:   labelFontSize,
			FontFamily: cfg.TickFont,
			Fill:       cfg.TickLabelCol,
			Bold:       true,
			Anchor:     "middle",
		}
	}

	sc.UnitsLabel = Text{
		Pos:        Point{X: o.X, Y: o.Y + tickStartMaj + cfg.UnitsOffset},
		Text:       cfg.Units,
		FontSize:   labelFontSize * unitsFontScale,
		FontFamily: cfg.UnitsFont,
		Fill:       cfg.UnitsLabelCol,
		Bold:       true,
		Anchor:     "middle",
	}
	sc.TitleLabel = Text{
		Pos:        Point{X: o.X, Y: o.Y * titleHeight},
		Text:       cfg.Title,
		FontSize:   labelFontSize * titleFontScale,
		FontFamily: cfg.UnitsFont,
		Fill:       cfg.UnitsLabelCol,
		Bold:       true,
		Anchor:     "middle",
	}

	needle := radialLine(o, needlePathStart, needlePathStart+needlePathLength, cfg.ZeroNeedleAngle)
	needle.Style = Style{Stroke: cfg.NeedleCol, StrokeWidth: needleWidth}
	sc.Needle = Needle{Path: needle, Pivot: o}

	Logger().Debug("gauge: layout",
		"id", cfg.ID,
		"major_ticks", len(majAngles),
		"minor_ticks", len(minAngles),
		"bands", len(sc.Bands))

	return sc, nil
}

// tickAngles returns zero, zero+spacing, zero+2*spacing, ... up to and
// including max. Each angle is computed from its index so rounding does not
// accumulate along the dial.
func tickAngles(zero, max, spacing float64) ([]float64, error) {
	if !(spacing > 0) || math.IsInf(spacing, 0) {
		return nil, ErrInvalidTickSpacing
	}
	if max < zero {
		return nil, nil
	}
	if (max-zero)/spacing+1 > MaxTicks {
		return nil, ErrTooManyTicks
	}

	q := (max - zero) / spacing
	last := int(math.Floor(q + tickEpsilon*math.Max(1, q)))

	angles := make([]float64, 0, last+1)
	for k := 0; k <= last; k++ {
		angles = append(angles, math.Min(zero+spacing*float64(k), max))
	}
	return angles, nil
}

// labelPos places a tick label inside the major tick. The radial nudge of
// fontSize/(chars/2) roughly centers multi-character labels without text
// metrics; half the font size drops the baseline to the tick's height.
func labelPos(o Point, labelStart, fontSize, angle float64, label string) Point {
	rad := degToRad(angle + 90)
	var labelW float64
	if n := utf8.RuneCountInString(label); n > 0 {
		labelW = fontSize / (float64(n) / 2)
	}
	return Point{
		X: o.X + (labelStart-labelW)*math.Cos(rad),
		Y: o.Y + labelStart*math.Sin(rad) + fontSize/2,
	}
}
