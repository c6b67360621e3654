// SPDX-License-Identifier: EPL-2.0

// Package waveform turns a sample buffer into a bitmap.
//
// Render walks the buffer twice. The first pass averages |sample|/YScale
// over windows of XScale frames to find the tallest bar on each side of the
// baseline, which fixes the image height. The second pass draws one column
// per window: the top channel grows up from the baseline and the bottom
// channel grows down.
//
// When frames/XScale exceeds MaxWidth, the window grows until the image is
// exactly MaxWidth columns wide. Detail is lost; the image is not scaled
// afterwards.
//
//	cfg := waveform.DefaultConfig()
//	cfg.DrawOutline = true
//	img := waveform.Render(buf, cfg)
package waveform
