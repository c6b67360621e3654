// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/wavepanel/audio"
	"github.com/ik5/wavepanel/utils"
)

// pcmReader is the part of gowav.Decoder the sources need; tests swap it.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// readPCM fills dst completely from dec, returning how many samples arrived
// before the payload ran dry.
func readPCM(dec pcmReader, dst []int, format *goaudio.Format) (int, error) {
	filled := 0
	for filled < len(dst) {
		chunk := &goaudio.IntBuffer{Data: dst[filled:], Format: format}
		n, err := dec.PCMBuffer(chunk)
		filled += n
		if err != nil {
			return filled, fmt.Errorf("reading PCM data: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return filled, nil
}

// source streams a 16-bit WAV payload as float32.
type source struct {
	dec    pcmReader
	format *goaudio.Format
	left   int // samples not yet delivered
	ints   []int
}

func (s *source) SampleRate() int { return s.format.SampleRate }
func (s *source) Channels() int   { return s.format.NumChannels }
func (s *source) BufSize() int    { return cap(s.ints) }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.left == 0 {
		return 0, io.EOF
	}

	want := min(len(dst), s.left)
	if cap(s.ints) < want {
		s.ints = make([]int, want)
	}
	s.ints = s.ints[:want]

	n, err := readPCM(s.dec, s.ints, s.format)
	for i, v := range s.ints[:n] {
		dst[i] = utils.Int16ToFloat32(int16(v))
	}
	s.left -= n
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrCorruptStream, err)
	}
	if n < want {
		return n, fmt.Errorf("data chunk ended %d samples early: %w", s.left, ErrCorruptStream)
	}
	if s.left == 0 {
		return n, io.EOF
	}
	return n, nil
}

// Decoder streams 16-bit PCM WAV files. It implements audio.Decoder.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, l, err := open(r)
	if err != nil {
		return nil, err
	}
	if l.frames == 0 {
		return nil, ErrEmptyStream
	}

	return &source{
		dec:    dec,
		format: &goaudio.Format{NumChannels: l.channels, SampleRate: l.sampleRate},
		left:   l.samples(),
		ints:   make([]int, 0, 4096-4096%l.channels),
	}, nil
}

// DecodeBuffer reads a whole 16-bit PCM WAV stream into a Buffer. Each
// sample is rebuilt little-endian, (high << 8) | (low & 0xFF). The buffer
// keeps the sample rate of the file. On error no buffer is returned.
func DecodeBuffer(r io.Reader) (*audio.Buffer, error) {
	dec, l, err := open(r)
	if err != nil {
		return nil, err
	}
	return decodeBuffer(dec, l)
}

func decodeBuffer(dec pcmReader, l layout) (*audio.Buffer, error) {
	if l.frames == 0 {
		return nil, ErrEmptyStream
	}

	ints := make([]int, l.samples())
	n, err := readPCM(dec, ints, &goaudio.Format{NumChannels: l.channels, SampleRate: l.sampleRate})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptStream, err)
	}
	if n < len(ints) {
		return nil, fmt.Errorf("data chunk holds %d of %d samples: %w", n, len(ints), ErrCorruptStream)
	}

	b := audio.NewBuffer(l.channels, l.frames, l.sampleRate)
	for f := range l.frames {
		base := f * l.channels
		for c := range l.channels {
			b.Data[c][f] = int16(ints[base+c])
		}
	}
	return b, nil
}

var _ pcmReader = (*gowav.Decoder)(nil)
