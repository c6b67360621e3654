// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/ik5/wavepanel/audio"
	"github.com/ik5/wavepanel/utils"
)

// Geometry is the layout Render derives before drawing.
type Geometry struct {
	Width  int
	Height int
	// Baseline is the first row of the bottom half; the top half ends just
	// above it.
	Baseline int
	// XScale is the effective window size, larger than Config.XScale when
	// MaxWidth kicked in.
	XScale int

	TopChannel    int
	BottomChannel int
	MaxTop        int
	MaxBottom     int
}

// windowAverage is the mean of |s|/yScale over samples, in whole pixels.
func windowAverage(samples []int16, yScale int) int {
	if len(samples) == 0 {
		return 0
	}

	sum := 0
	for _, s := range samples {
		sum += utils.AbsInt(int(s)) / yScale
	}
	return sum / len(samples)
}

// Measure computes the image layout for b under cfg without drawing.
func Measure(b *audio.Buffer, cfg Config) Geometry {
	cfg = cfg.Sanitize()
	g := Geometry{Height: MinHeight, Baseline: MinHeight / 2, XScale: cfg.XScale}

	if err := b.Validate(); err != nil {
		slog.Warn("waveform: nothing to render", "error", err)
		return g
	}
	if b.Frames() == 0 {
		slog.Warn("waveform: nothing to render", "channels", b.Channels(), "frames", 0)
		return g
	}

	last := b.Channels() - 1
	g.TopChannel = utils.ClampInt(cfg.TopChannel, 0, last)
	g.BottomChannel = utils.ClampInt(cfg.BottomChannel, 0, last)

	frames := b.Frames()
	top, bottom := b.Data[g.TopChannel], b.Data[g.BottomChannel]
	for start := 0; start+cfg.XScale <= frames; start += cfg.XScale {
		end := start + cfg.XScale
		g.MaxTop = max(g.MaxTop, windowAverage(top[start:end], cfg.YScale))
		g.MaxBottom = max(g.MaxBottom, windowAverage(bottom[start:end], cfg.YScale))
	}

	g.Height = max(g.MaxTop+g.MaxBottom, MinHeight)
	g.Baseline = g.MaxTop + (g.Height-g.MaxTop-g.MaxBottom)/2

	g.Width = frames / cfg.XScale
	if cfg.MaxWidth > 0 && g.Width > cfg.MaxWidth {
		g.XScale = max(cfg.XScale, frames/cfg.MaxWidth)
		g.Width = cfg.MaxWidth
	}
	return g
}

// Render rasterizes b. The heights come from a first pass at cfg.XScale; the
// bars are drawn in a second pass at the effective XScale, which is coarser
// when the width cap applies. A coarser window can average louder than any
// first-pass window, so a capped render may clip its tallest bars at the
// image edge. Render never fails: a buffer it cannot use yields a blank
// MinHeight-tall image.
func Render(b *audio.Buffer, cfg Config) *image.RGBA {
	cfg = cfg.Sanitize()
	g := Measure(b, cfg)

	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: cfg.Background}, image.Point{}, draw.Src)
	if g.Width == 0 {
		return img
	}

	top, bottom := b.Data[g.TopChannel], b.Data[g.BottomChannel]
	prevTop, prevBottom := -1, -1
	for x := range g.Width {
		start := x * g.XScale
		end := start + g.XScale
		t := windowAverage(top[start:end], cfg.YScale)
		d := windowAverage(bottom[start:end], cfg.YScale)

		if cfg.DrawFill {
			vline(img, x, g.Baseline-t, g.Baseline, cfg.Fill)
			vline(img, x, g.Baseline, g.Baseline+d, cfg.Fill)
		}
		if cfg.DrawOutline {
			outline(img, x, g.Baseline, -1, prevTop, t, cfg.Outline)
			outline(img, x, g.Baseline-1, 1, prevBottom, d, cfg.Outline)
		}
		prevTop, prevBottom = t, d
	}

	if cfg.DrawBaseline {
		y0 := g.Baseline - cfg.BaselineThickness/2
		for y := y0; y < y0+cfg.BaselineThickness; y++ {
			hline(img, y, g.Width, cfg.Baseline)
		}
	}
	return img
}

// vline paints column x over rows [y0, y1), clipped to the image.
func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	bounds := img.Bounds()
	y0 = max(y0, bounds.Min.Y)
	y1 = min(y1, bounds.Max.Y)
	for y := y0; y < y1; y++ {
		img.SetRGBA(x, y, c)
	}
}

func hline(img *image.RGBA, y, width int, c color.RGBA) {
	if y < img.Bounds().Min.Y || y >= img.Bounds().Max.Y {
		return
	}
	for x := range width {
		img.SetRGBA(x, y, c)
	}
}

// outline draws the edge of one half at column x, on the last row of each
// bar. origin is the row next to the bar's base and dir is -1 for the top
// half, 1 for the bottom; a bar of length v ends on origin+dir*v. Zero-length
// bars mark the row beside the baseline. The segment spans from the previous
// column's bar end to this one.
func outline(img *image.RGBA, x, origin, dir, prev, cur int, c color.RGBA) {
	if prev < 0 {
		prev = cur
	}
	lo, hi := max(min(prev, cur), 1), max(prev, cur, 1)
	a, b := origin+dir*lo, origin+dir*hi
	vline(img, x, min(a, b), max(a, b)+1, c)
}
