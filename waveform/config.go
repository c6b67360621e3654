// SPDX-License-Identifier: EPL-2.0

package waveform

import "image/color"

const (
	DefaultXScale   = 1024
	DefaultYScale   = 64
	DefaultMaxWidth = 2000
	// MinHeight is the smallest image Render produces, so silence still
	// gets a drawable strip.
	MinHeight = 100
)

// Config drives a single Render call. It is a plain value: copy it to clone
// it.
type Config struct {
	// XScale is the number of consecutive samples averaged into one column.
	XScale int
	// YScale divides sample magnitudes before they become pixel lengths.
	YScale int
	// MaxWidth caps the image width; 0 disables the cap. Hitting the cap
	// widens the averaging window rather than scaling the picture.
	MaxWidth int

	// TopChannel is drawn above the baseline, BottomChannel below it. Both
	// are clamped to the channels the buffer actually has.
	TopChannel    int
	BottomChannel int

	DrawFill          bool
	DrawOutline       bool
	DrawBaseline      bool
	BaselineThickness int

	Background color.RGBA
	Fill       color.RGBA
	Outline    color.RGBA
	Baseline   color.RGBA
}

func DefaultConfig() Config {
	return Config{
		XScale:            DefaultXScale,
		YScale:            DefaultYScale,
		MaxWidth:          DefaultMaxWidth,
		TopChannel:        0,
		BottomChannel:     1,
		DrawFill:          true,
		DrawOutline:       false,
		DrawBaseline:      true,
		BaselineThickness: 1,
		Background:        color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff},
		Fill:              color.RGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 0xff},
		Outline:           color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Baseline:          color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	}
}

// Sanitize returns a copy with every scalar forced into its valid range.
func (c Config) Sanitize() Config {
	c.XScale = max(c.XScale, 1)
	c.YScale = max(c.YScale, 1)
	c.MaxWidth = max(c.MaxWidth, 0)
	c.BaselineThickness = max(c.BaselineThickness, 1)
	return c
}
