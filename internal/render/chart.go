// Package render draws fixed-style ECG charts suitable as vision-model input.
package render

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/trifetch/trifetch/internal/waveform"
)

// Style holds the fixed chart styling. Rendering is deterministic for a given
// style and input, which both reproducible classification and golden-image
// tests rely on.
type Style struct {
	Background  color.Color
	LeadColor   color.Color
	MarkerColor color.Color
	GridColor   color.Color
	Width       vg.Length
	Height      vg.Length
	DPI         int
	LeadWidth   vg.Length
	MarkerWidth vg.Length
}

// DefaultStyle is the hospital-monitor look: green leads on black with a red
// onset marker and a faint dashed grid.
func DefaultStyle() Style {
	return Style{
		Background:  color.Black,
		LeadColor:   color.RGBA{R: 0x00, G: 0xff, B: 0x41, A: 0xff},
		MarkerColor: color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xe6},
		GridColor:   color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x4d},
		Width:       16 * vg.Inch,
		Height:      5 * vg.Inch,
		DPI:         100,
		LeadWidth:   vg.Points(1.1),
		MarkerWidth: vg.Points(3),
	}
}

// Renderer renders traces with a fixed style.
type Renderer struct {
	style Style
}

// NewRenderer creates a renderer with the given style.
func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style}
}

// Render draws every lead of the trace as a separate line, vertically offset
// so leads never overlap, with a full-height marker at the event onset.
// Returns the encoded PNG.
func (r *Renderer) Render(t waveform.Trace, startSample int) ([]byte, error) {
	n := t.Len()
	channels := t.Channels()
	if n == 0 || channels == 0 {
		return nil, fmt.Errorf("cannot render empty trace")
	}

	p := plot.New()
	p.BackgroundColor = r.style.Background
	p.HideAxes()

	grid := plotter.NewGrid()
	grid.Vertical.Color = r.style.GridColor
	grid.Vertical.Dashes = []vg.Length{vg.Points(2), vg.Points(3)}
	grid.Horizontal.Color = r.style.GridColor
	grid.Horizontal.Dashes = []vg.Length{vg.Points(2), vg.Points(3)}
	p.Add(grid)

	// The vertical gap must exceed the widest lead's peak-to-peak range so
	// adjacent leads cannot touch.
	gap := 0.0
	for c := 0; c < channels; c++ {
		if ptp := peakToPeak(t, c); ptp > gap {
			gap = ptp
		}
	}
	gap = gap*1.1 + 1

	rate := float64(t.SampleRate())
	yMin, yMax := 0.0, 0.0
	for c := 0; c < channels; c++ {
		offset := -float64(c) * gap
		pts := make(plotter.XYs, n)
		for i := 0; i < n; i++ {
			y := t.At(i, c) + offset
			pts[i].X = float64(i) / rate
			pts[i].Y = y
			if c == 0 && i == 0 {
				yMin, yMax = y, y
			}
			if y < yMin {
				yMin = y
			}
			if y > yMax {
				yMax = y
			}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to build lead %d line: %w", c, err)
		}
		line.LineStyle.Color = r.style.LeadColor
		line.LineStyle.Width = r.style.LeadWidth
		p.Add(line)
	}

	// Pad the amplitude range so extremes stay off the canvas edge.
	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = 1
	}
	yMin -= pad
	yMax += pad

	markerTime := float64(startSample) / rate
	marker, err := plotter.NewLine(plotter.XYs{
		{X: markerTime, Y: yMin},
		{X: markerTime, Y: yMax},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build onset marker: %w", err)
	}
	marker.LineStyle.Color = r.style.MarkerColor
	marker.LineStyle.Width = r.style.MarkerWidth
	p.Add(marker)

	p.X.Min = 0
	p.X.Max = float64(n-1) / rate
	p.Y.Min = yMin
	p.Y.Max = yMax

	canvas := vgimg.NewWith(
		vgimg.UseWH(r.style.Width, r.style.Height),
		vgimg.UseDPI(r.style.DPI),
		vgimg.UseBackgroundColor(r.style.Background),
	)
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	pngCanvas := vgimg.PngCanvas{Canvas: canvas}
	if _, err := pngCanvas.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}

	return buf.Bytes(), nil
}

func peakToPeak(t waveform.Trace, channel int) float64 {
	lo, hi := t.At(0, channel), t.At(0, channel)
	for i := 1; i < t.Len(); i++ {
		v := t.At(i, channel)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}
