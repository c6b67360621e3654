// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/wavepanel/audio"
	"github.com/ik5/wavepanel/utils"
)

// go-mp3 always emits interleaved stereo, 16-bit little-endian.
const channels = 2

// pcmStream is the part of gomp3.Decoder the source uses; tests replace it.
type pcmStream interface {
	Read(p []byte) (int, error)
	SampleRate() int
}

type source struct {
	dec  pcmStream
	raw  []byte
	tail []byte // odd byte carried over between reads
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) BufSize() int    { return cap(s.raw) / 2 }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst)*2 - len(s.tail)
	if cap(s.raw) < len(dst)*2 {
		s.raw = make([]byte, len(dst)*2)
	}
	s.raw = s.raw[:len(s.tail)+need]
	copy(s.raw, s.tail)

	n, err := s.dec.Read(s.raw[len(s.tail):])
	total := len(s.tail) + n

	samples := total / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(utils.Int16FromBytes(s.raw[2*i], s.raw[2*i+1]))
	}
	s.tail = append(s.tail[:0], s.raw[samples*2:total]...)

	if err != nil && err != io.EOF {
		return samples, fmt.Errorf("mp3 read: %w", err)
	}
	if err == io.EOF && samples == 0 {
		return 0, io.EOF
	}
	return samples, err
}

// Decoder decodes MPEG-1/2 Layer III streams. It implements audio.Decoder.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}

	return &source{dec: dec, raw: make([]byte, 8192)}, nil
}
