// Package svg renders gauge scenes as SVG markup.
//
// Importing the package registers the "svg" backend with package render.
// Encode can also be used directly, e.g. to inline a gauge in HTML.
package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/gogpu/gauge"
	"github.com/gogpu/gauge/render"
)

// MediaType is the MIME type of the output.
const MediaType = "image/svg+xml"

const namespace = "http://www.w3.org/2000/svg"

// ErrNotRendered is returned when output is requested before Render.
var ErrNotRendered = errors.New("svg: nothing rendered")

func init() {
	render.Register(render.Format{
		Name:      "svg",
		Ext:       ".svg",
		MediaType: MediaType,
		New:       func(render.Options) render.Backend { return New() },
	})
}

// Backend is the svg render backend.
type Backend struct {
	buf      bytes.Buffer
	rendered bool
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{}
}

// Render implements render.Backend.
func (b *Backend) Render(s *gauge.Scene) error {
	b.buf.Reset()
	b.rendered = false
	if err := Encode(&b.buf, s); err != nil {
		return err
	}
	b.rendered = true
	return nil
}

// WriteTo implements render.Backend.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	if !b.rendered {
		return 0, ErrNotRendered
	}
	n, err := w.Write(b.buf.Bytes())
	return int64(n), err
}

// SaveToFile implements render.FileBackend.
func (b *Backend) SaveToFile(path string) error {
	if !b.rendered {
		return ErrNotRendered
	}
	return os.WriteFile(path, b.buf.Bytes(), 0o644)
}

// String returns the rendered markup.
func (b *Backend) String() string { return b.buf.String() }

// Marshal returns the SVG markup for s.
func Marshal(s *gauge.Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes s to w as a standalone <svg> element. Groups are emitted in
// paint order with ids suffixed by the scene id; all paint is inline style.
func Encode(w io.Writer, s *gauge.Scene) error {
	if s == nil {
		return errors.New("svg: nil scene")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	e := &encoder{enc: enc}

	e.start("svg",
		attr("xmlns", namespace),
		attr("id", "SVGbox-"+s.ID),
		attr("width", gauge.FormatNumber(s.Width)),
		attr("height", gauge.FormatNumber(s.Height)),
		attr("viewBox", "0 0 "+gauge.FormatNumber(s.Width)+" "+gauge.FormatNumber(s.Height)),
	)
	for _, g := range s.Groups() {
		e.group(g)
	}
	e.end("svg")

	if e.err != nil {
		return e.err
	}
	return enc.Flush()
}

// encoder remembers the first error so the element calls stay linear.
type encoder struct {
	enc *xml.Encoder
	err error
}

func (e *encoder) token(t xml.Token) {
	if e.err == nil {
		e.err = e.enc.EncodeToken(t)
	}
}

func (e *encoder) start(name string, attrs ...xml.Attr) {
	e.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (e *encoder) end(name string) {
	e.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (e *encoder) group(g gauge.Group) {
	attrs := []xml.Attr{attr("id", g.ID)}
	if g.Transform != "" {
		attrs = append(attrs, attr("transform", g.Transform))
	}
	e.start("g", attrs...)
	for _, it := range g.Items {
		e.item(it)
	}
	for _, c := range g.Children {
		e.group(c)
	}
	e.end("g")
}

func (e *encoder) item(p gauge.Primitive) {
	switch p := p.(type) {
	case gauge.Circle:
		e.start("circle",
			attr("cx", gauge.FormatNumber(p.Center.X)),
			attr("cy", gauge.FormatNumber(p.Center.Y)),
			attr("r", gauge.FormatNumber(p.R)),
			attr("style", style(p.Style)),
		)
		e.end("circle")
	case gauge.Path:
		e.start("path",
			attr("d", p.D()),
			attr("style", style(p.Style)),
		)
		e.end("path")
	case gauge.Text:
		e.start("text",
			attr("x", gauge.FormatNumber(p.Pos.X)),
			attr("y", gauge.FormatNumber(p.Pos.Y)),
			attr("font-size", gauge.FormatNumber(p.FontSize)),
			attr("text-anchor", p.Anchor),
			attr("style", textStyle(p)),
		)
		e.token(xml.CharData(p.Text))
		e.end("text")
	}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func style(s gauge.Style) string {
	var b strings.Builder
	b.WriteString("fill:")
	b.WriteString(orNone(s.Fill))
	b.WriteByte(';')
	if s.Stroke != "" {
		b.WriteString("stroke:")
		b.WriteString(s.Stroke)
		b.WriteString(";stroke-width:")
		b.WriteString(gauge.FormatNumber(s.StrokeWidth))
		b.WriteByte(';')
	}
	return b.String()
}

func textStyle(t gauge.Text) string {
	var b strings.Builder
	b.WriteString("fill:")
	b.WriteString(orNone(t.Fill))
	b.WriteByte(';')
	if t.Bold {
		b.WriteString("font-weight:bold;")
	}
	if t.FontFamily != "" {
		b.WriteString("font-family:")
		b.WriteString(t.FontFamily)
		b.WriteByte(';')
	}
	return b.String()
}

func orNone(c string) string {
	if c == "" {
		return "none"
	}
	return c
}
