// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 streams through github.com/hajimehoshi/go-mp3.
//
// The decoder always yields stereo; mono files come out with both channels
// equal. Sample rate is whatever the first frame declares:
//
//	src, err := mp3.Decoder{}.Decode(file)
//	buf, err := audio.Collect(audio.NewResampler(src, audio.CDRate))
package mp3
