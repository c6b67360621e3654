// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"fmt"
	"image/png"
	"io"

	"github.com/ik5/wavepanel/audio"
)

// RenderPNG renders b and writes it to w as a PNG. A zero-width render
// cannot be encoded and returns ErrNothingToEncode.
func RenderPNG(w io.Writer, b *audio.Buffer, cfg Config) error {
	img := Render(b, cfg)
	if img.Bounds().Dx() == 0 {
		return ErrNothingToEncode
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("waveform: encode png: %w", err)
	}
	return nil
}
