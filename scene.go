package gauge

import (
	"strconv"
	"strings"
)

// PrimitiveKind identifies the type of a drawable primitive.
type PrimitiveKind uint8

const (
	KindCircle PrimitiveKind = iota // Filled circle
	KindPath                        // Stroked or filled path
	KindText                        // Text run
)

// primitiveKindNames maps PrimitiveKind values to their string representation.
var primitiveKindNames = [...]string{
	KindCircle: "Circle",
	KindPath:   "Path",
	KindText:   "Text",
}

// String returns the string representation of a PrimitiveKind.
func (k PrimitiveKind) String() string {
	if int(k) < len(primitiveKindNames) {
		return primitiveKindNames[k]
	}
	return "Unknown"
}

// Primitive is implemented by every drawable element of a Scene.
type Primitive interface {
	// Kind returns the PrimitiveKind of the element.
	Kind() PrimitiveKind
}

// Style is the inline paint of a primitive. Colors are CSS color strings;
// an empty color means "none".
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// Circle is a filled circle.
type Circle struct {
	Center Point
	R      float64
	Style  Style
}

// Kind implements Primitive.
func (Circle) Kind() PrimitiveKind { return KindCircle }

// SegmentOp is a path drawing operation.
type SegmentOp uint8

const (
	OpMoveTo SegmentOp = iota
	OpLineTo
	OpArcTo // circular arc, SVG endpoint parameterization
	OpClose
)

// Segment is one step of a Path. R, LargeArc and Sweep only apply to OpArcTo.
type Segment struct {
	Op       SegmentOp
	To       Point
	R        float64
	LargeArc bool
	Sweep    bool
}

// Path is a sequence of segments with inline style.
type Path struct {
	Segments []Segment
	Style    Style
}

// Kind implements Primitive.
func (Path) Kind() PrimitiveKind { return KindPath }

// D returns the SVG path data for p.
func (p Path) D() string {
	var b strings.Builder
	for i, s := range p.Segments {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch s.Op {
		case OpMoveTo:
			b.WriteString("M ")
			writePoint(&b, s.To)
		case OpLineTo:
			b.WriteString("L ")
			writePoint(&b, s.To)
		case OpArcTo:
			r := FormatNumber(s.R)
			b.WriteString("A " + r + " " + r + " 0 " + flag(s.LargeArc) + " " + flag(s.Sweep) + " ")
			writePoint(&b, s.To)
		case OpClose:
			b.WriteByte('Z')
		}
	}
	return b.String()
}

func writePoint(b *strings.Builder, p Point) {
	b.WriteString(FormatNumber(p.X))
	b.WriteByte(' ')
	b.WriteString(FormatNumber(p.Y))
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// Text is a single text run. Pos is the anchor point on the baseline.
type Text struct {
	Pos        Point
	Text       string
	FontSize   float64
	FontFamily string
	Fill       string
	Bold       bool
	Anchor     string // SVG text-anchor: "start", "middle" or "end"
}

// Kind implements Primitive.
func (Text) Kind() PrimitiveKind { return KindText }

// Needle is the needle path together with its rotation about the pivot.
// Layout leaves Rotation at zero and Transform empty; Scene.Apply fills
// them from a transition Frame.
type Needle struct {
	Path      Path
	Pivot     Point
	Rotation  float64 // degrees, clockwise
	Transform string  // e.g. "rotate(20,200,200)"
}

// Scene is the output of Layout: every primitive of one gauge render.
// A Scene is not modified after Layout returns; Apply returns a copy.
type Scene struct {
	ID     string
	Width  float64
	Height float64
	Origin Point

	Rim   Circle
	Face  Circle
	Bands []Path
	Pivot Circle

	MinorTicks []Path
	MajorTicks []Path
	TickLabels []Text

	UnitsLabel Text
	TitleLabel Text

	Needle Needle
}

// Apply returns a copy of s with the needle rotation and the units label
// taken from f. Slices are shared with s.
func (s *Scene) Apply(f Frame) *Scene {
	out := *s
	out.Needle.Rotation = f.Angle
	out.Needle.Transform = f.Transform
	out.UnitsLabel.Text = f.Text
	return &out
}

// Group is a named node of the scene graph. Transform and Rotation apply to
// every item and child of the group.
type Group struct {
	ID       string
	Items    []Primitive
	Children []Group

	Transform string
	Rotation  float64
	Pivot     Point
}

// Group IDs are suffixed with "-" + Scene.ID.
const (
	GroupCircles     = "circles"
	GroupTickMarks   = "tickMarks"
	GroupMinorTicks  = "minorTickMarks"
	GroupMajorTicks  = "majorTickMarks"
	GroupTickLabels  = "tickLabels"
	GroupUnitLabels  = "unitLabels"
	GroupTitleLabels = "titleLabels"
	GroupNeedle      = "needle"
)

// Groups returns the scene graph in paint order.
func (s *Scene) Groups() []Group {
	id := func(name string) string { return name + "-" + s.ID }

	circles := make([]Primitive, 0, len(s.Bands)+3)
	circles = append(circles, s.Rim, s.Face)
	for _, b := range s.Bands {
		circles = append(circles, b)
	}
	circles = append(circles, s.Pivot)

	labels := make([]Primitive, len(s.TickLabels))
	for i, l := range s.TickLabels {
		labels[i] = l
	}

	return []Group{
		{ID: id(GroupCircles), Items: circles},
		{ID: id(GroupTickMarks), Children: []Group{
			{ID: id(GroupMinorTicks), Items: paths(s.MinorTicks)},
			{ID: id(GroupMajorTicks), Items: paths(s.MajorTicks)},
		}},
		{ID: id(GroupTickLabels), Items: labels},
		{ID: id(GroupUnitLabels), Items: []Primitive{s.UnitsLabel}},
		{ID: id(GroupTitleLabels), Items: []Primitive{s.TitleLabel}},
		{
			ID:        id(GroupNeedle),
			Items:     []Primitive{s.Needle.Path},
			Transform: s.Needle.Transform,
			Rotation:  s.Needle.Rotation,
			Pivot:     s.Needle.Pivot,
		},
	}
}

func paths(ps []Path) []Primitive {
	out := make([]Primitive, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// FormatNumber formats v with the shortest decimal representation that
// round-trips, without exponent. Negative zero is printed as "0".
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
