// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/wavepanel/utils"
)

const defaultBufSize = 4096

// bufferSource streams a Buffer as interleaved float32.
type bufferSource struct {
	b   *Buffer
	pos int
}

// Source exposes b to the streaming pipeline. The Buffer must not be edited
// while the Source is in use.
func (b *Buffer) Source() Source {
	return &bufferSource{b: b}
}

func (s *bufferSource) SampleRate() int { return s.b.SampleRate }
func (s *bufferSource) Channels() int   { return s.b.Channels() }
func (s *bufferSource) BufSize() int    { return defaultBufSize }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	channels := s.b.Channels()
	if channels == 0 {
		return 0, io.EOF
	}
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}

	n := min(len(dst)/channels, s.b.Frames()-s.pos)
	for f := range n {
		base := f * channels
		for c := range channels {
			dst[base+c] = utils.Int16ToFloat32(s.b.Data[c][s.pos+f])
		}
	}
	s.pos += n

	if s.pos >= s.b.Frames() {
		return n * channels, io.EOF
	}
	return n * channels, nil
}

// Collect drains src into a new Buffer. src is not closed.
func Collect(src Source) (*Buffer, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrNoChannels
	}

	size := src.BufSize()
	if size < channels {
		size = defaultBufSize
	}
	size -= size % channels
	if size == 0 {
		size = channels
	}

	buf := make([]float32, size)
	pcm := make([]int16, 0, size)
	for {
		n, err := src.ReadSamples(buf)
		for _, v := range buf[:n] {
			pcm = append(pcm, utils.Float32ToInt16(v))
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("collecting samples: %w", err)
		}
		if n == 0 {
			// Decoders that signal the end with (0, nil).
			break
		}
	}

	return FromInterleaved(pcm, channels, src.SampleRate())
}
