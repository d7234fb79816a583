// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster draws gauge scenes into images with github.com/gogpu/gg.
//
// Importing the package registers the "png" backend with package render:
//
//	import _ "github.com/gogpu/gauge/raster" // enable PNG output
//
// Paths, circles and band arcs go through gg's anti-aliased software
// rasterizer. Text is drawn with the embedded Go fonts; the CSS font stacks
// named by a scene are not resolved.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"github.com/gogpu/gg"

	"github.com/gogpu/gauge"
	"github.com/gogpu/gauge/render"
)

// MediaType is the MIME type of the output.
const MediaType = "image/png"

// MaxSide bounds the width and height of a rendered image in pixels.
const MaxSide = 8192

// ErrNotRendered is returned when output is requested before Render.
var ErrNotRendered = errors.New("raster: nothing rendered")

func init() {
	render.Register(render.Format{
		Name:      "png",
		Ext:       ".png",
		MediaType: MediaType,
		New: func(o render.Options) render.Backend {
			return New(WithScale(o.Scale), WithBackground(o.Background))
		},
	})
}

// Option configures a Backend.
type Option func(*Backend)

// WithScale sets device pixels per scene unit. The default is 1.
func WithScale(s float64) Option {
	return func(b *Backend) {
		if s > 0 {
			b.scale = s
		}
	}
}

// WithBackground fills the image with a CSS color before drawing.
// The default background is transparent.
func WithBackground(c string) Option {
	return func(b *Backend) {
		b.background = c
	}
}

// Backend is the png render backend.
type Backend struct {
	scale      float64
	background string

	img *image.RGBA
	png bytes.Buffer
}

// New returns a Backend.
func New(opts ...Option) *Backend {
	b := &Backend{scale: 1}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Render implements render.Backend.
func (b *Backend) Render(s *gauge.Scene) error {
	b.img = nil
	b.png.Reset()
	if s == nil {
		return errors.New("raster: nil scene")
	}

	w := int(math.Ceil(s.Width * b.scale))
	h := int(math.Ceil(s.Height * b.scale))
	if w <= 0 || h <= 0 || w > MaxSide || h > MaxSide {
		return fmt.Errorf("raster: image size %dx%d out of range", w, h)
	}

	dc := gg.NewContext(w, h)
	defer func() { _ = dc.Close() }()

	if bg, ok := parseColor(b.background); ok {
		dc.ClearWithColor(bg)
	}
	dc.Scale(b.scale, b.scale)

	p := painter{dc: dc, scale: b.scale}
	for _, g := range s.Groups() {
		if err := p.group(g); err != nil {
			return err
		}
	}

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return errors.New("raster: unexpected image type")
	}
	b.img = img
	if err := dc.EncodePNG(&b.png); err != nil {
		b.img = nil
		return fmt.Errorf("raster: encode: %w", err)
	}

	gauge.Logger().Debug("raster: rendered", "id", s.ID, "width", w, "height", h, "bytes", b.png.Len())
	return nil
}

// Image returns the rendered pixels, or nil before Render.
func (b *Backend) Image() image.Image {
	if b.img == nil {
		return nil
	}
	return b.img
}

// WriteTo implements render.Backend.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	if b.img == nil {
		return 0, ErrNotRendered
	}
	n, err := w.Write(b.png.Bytes())
	return int64(n), err
}

// SaveToFile implements render.FileBackend.
func (b *Backend) SaveToFile(path string) error {
	if b.img == nil {
		return ErrNotRendered
	}
	return os.WriteFile(path, b.png.Bytes(), 0o644)
}

// painter draws scene groups onto a gg context.
type painter struct {
	dc    *gg.Context
	scale float64
}

func (p painter) group(g gauge.Group) error {
	if g.Rotation != 0 {
		p.dc.Push()
		defer p.dc.Pop()
		p.dc.RotateAbout(g.Rotation*math.Pi/180, g.Pivot.X, g.Pivot.Y)
	}
	for _, it := range g.Items {
		if err := p.item(it); err != nil {
			return err
		}
	}
	for _, c := range g.Children {
		if err := p.group(c); err != nil {
			return err
		}
	}
	return nil
}

func (p painter) item(it gauge.Primitive) error {
	switch it := it.(type) {
	case gauge.Circle:
		p.dc.DrawCircle(it.Center.X, it.Center.Y, it.R)
		return p.paint(it.Style)
	case gauge.Path:
		p.path(it)
		return p.paint(it.Style)
	case gauge.Text:
		return p.text(it)
	}
	return nil
}

func (p painter) path(path gauge.Path) {
	var cur, start gauge.Point
	for _, s := range path.Segments {
		switch s.Op {
		case gauge.OpMoveTo:
			p.dc.MoveTo(s.To.X, s.To.Y)
			cur, start = s.To, s.To
		case gauge.OpLineTo:
			p.dc.LineTo(s.To.X, s.To.Y)
			cur = s.To
		case gauge.OpArcTo:
			cubics := arcCubics(cur, s.To, s.R, s.LargeArc, s.Sweep)
			if cubics == nil {
				p.dc.LineTo(s.To.X, s.To.Y)
			}
			for _, c := range cubics {
				p.dc.CubicTo(c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.To.X, c.To.Y)
			}
			cur = s.To
		case gauge.OpClose:
			p.dc.ClosePath()
			cur = start
		}
	}
}

// paint fills then strokes the current path, as SVG does.
func (p painter) paint(st gauge.Style) error {
	fill, hasFill := parseColor(st.Fill)
	stroke, hasStroke := parseColor(st.Stroke)
	hasStroke = hasStroke && st.StrokeWidth > 0

	if hasFill {
		p.dc.SetColor(fill.Color())
		var err error
		if hasStroke {
			err = p.dc.FillPreserve()
		} else {
			err = p.dc.Fill()
		}
		if err != nil {
			return fmt.Errorf("raster: fill: %w", err)
		}
	}
	if hasStroke {
		p.dc.SetColor(stroke.Color())
		p.dc.SetLineWidth(st.StrokeWidth)
		if err := p.dc.Stroke(); err != nil {
			return fmt.Errorf("raster: stroke: %w", err)
		}
	}
	if !hasFill && !hasStroke {
		p.dc.ClearPath()
	}
	return nil
}

// text draws a label. Faces are not transformed by the context matrix, so
// the anchor is mapped to device space and the face scaled instead.
func (p painter) text(t gauge.Text) error {
	if t.FontSize <= 0 || t.Text == "" {
		return nil
	}
	col, ok := parseColor(t.Fill)
	if !ok {
		return nil
	}
	f, err := face(t.Bold, t.FontSize*p.scale)
	if err != nil {
		return err
	}

	var ax float64
	switch t.Anchor {
	case "middle":
		ax = 0.5
	case "end":
		ax = 1
	}

	x, y := p.dc.TransformPoint(t.Pos.X, t.Pos.Y)
	p.dc.Push()
	defer p.dc.Pop()
	p.dc.Identity()
	p.dc.SetFont(f)
	p.dc.SetColor(col.Color())
	p.dc.DrawStringAnchored(t.Text, x, y, ax, 0)
	return nil
}
