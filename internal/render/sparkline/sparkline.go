// Package sparkline paints a fixed-size raster line chart for a
// normalized time series, with a ring highlight on the terminal sample.
package sparkline

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Defaults for the canvas. The drawable area is Width x Height with Pad
// pixels of margin on every side.
const (
	DefaultWidth  = 520
	DefaultHeight = 130
	Pad           = 8
	dotRadius     = 6
	lineWidth     = 3
)

// Options control the sparkline's geometry and palette. Zero values
// fall back to the package defaults.
type Options struct {
	Width     int
	Height    int
	LineColor drawing.Color
	DotColor  drawing.Color
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.LineColor.IsZero() {
		o.LineColor = drawing.Color{R: 0xB8, G: 0xBB, B: 0xC3, A: 0xFF}
	}
	if o.DotColor.IsZero() {
		o.DotColor = drawing.Color{R: 0x4C, G: 0x9A, B: 0xE8, A: 0xFF}
	}
	return o
}

// Render paints the series and returns PNG bytes.
//
// xs and ys must be pre-normalized to [0,1] by the caller: x values
// divided by the x range, y values divided by max(1, y range) so an
// all-equal series maps to the baseline instead of dividing by zero.
// An unavailable or failing raster encoder is a fatal error for this
// render; the caller does not retry.
func Render(xs, ys []float64, opts Options) ([]byte, error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return nil, fmt.Errorf("sparkline needs matched x/y series, got %d/%d", len(xs), len(ys))
	}
	o := opts.withDefaults()

	r, err := chart.PNG(o.Width+2*Pad, o.Height+2*Pad)
	if err != nil {
		return nil, fmt.Errorf("raster encoder unavailable: %w", err)
	}

	// White background; email clients do not composite transparency
	// consistently.
	r.SetFillColor(drawing.ColorWhite)
	r.MoveTo(0, 0)
	r.LineTo(o.Width+2*Pad, 0)
	r.LineTo(o.Width+2*Pad, o.Height+2*Pad)
	r.LineTo(0, o.Height+2*Pad)
	r.Close()
	r.Fill()

	px := func(x float64) int { return Pad + int(x*float64(o.Width)) }
	py := func(y float64) int { return Pad + int((1-y)*float64(o.Height)) }

	r.SetStrokeColor(o.LineColor)
	r.SetStrokeWidth(lineWidth)
	r.MoveTo(px(xs[0]), py(ys[0]))
	for i := 1; i < len(xs); i++ {
		r.LineTo(px(xs[i]), py(ys[i]))
	}
	r.Stroke()

	// Terminal sample: filled accent dot with a white ring on top.
	lastX, lastY := px(xs[len(xs)-1]), py(ys[len(ys)-1])
	r.SetFillColor(o.DotColor)
	r.Circle(dotRadius, lastX, lastY)
	r.Fill()
	r.SetStrokeColor(drawing.ColorWhite)
	r.SetStrokeWidth(2)
	r.Circle(dotRadius, lastX, lastY)
	r.Stroke()

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode sparkline: %w", err)
	}
	return buf.Bytes(), nil
}

// Normalize maps a raw series onto the unit interval per the rendering
// contract: x by its range, y by max(1, range).
func Normalize(xraw, yraw []float64) (xs, ys []float64) {
	xs = make([]float64, len(xraw))
	ys = make([]float64, len(yraw))

	xmin, xmax := minMax(xraw)
	ymin, ymax := minMax(yraw)

	xrange := xmax - xmin
	if xrange == 0 {
		xrange = 1
	}
	yrange := ymax - ymin
	if yrange < 1 {
		yrange = 1
	}

	for i, x := range xraw {
		xs[i] = (x - xmin) / xrange
	}
	for i, y := range yraw {
		ys[i] = (y - ymin) / yrange
	}
	return xs, ys
}

func minMax(vals []float64) (min, max float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	min, max = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
