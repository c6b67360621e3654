// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/wavepanel/audio"
	"github.com/ik5/wavepanel/utils"
)

// pcmReader is the part of aiff.Decoder the source needs; tests replace it.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec    pcmReader
	format *goaudio.Format
	ints   []int
	done   bool
}

func (s *source) SampleRate() int { return s.format.SampleRate }
func (s *source) Channels() int   { return s.format.NumChannels }
func (s *source) BufSize() int    { return 4096 - 4096%s.format.NumChannels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.done {
		return 0, io.EOF
	}

	if cap(s.ints) < len(dst) {
		s.ints = make([]int, len(dst))
	}
	s.ints = s.ints[:len(dst)]

	n, err := s.dec.PCMBuffer(&goaudio.IntBuffer{Data: s.ints, Format: s.format})
	for i, v := range s.ints[:n] {
		dst[i] = utils.Int16ToFloat32(int16(v))
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("aiff read: %w", err)
	}
	if err == io.EOF || n < len(dst) {
		s.done = true
		if n == 0 {
			return 0, io.EOF
		}
	}
	return n, nil
}

// Decoder decodes 16-bit PCM AIFF files. It implements audio.Decoder.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()
	if dec.BitDepth != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}
	return &source{dec: dec, format: format}, nil
}
