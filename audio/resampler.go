// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/wavepanel/utils"
)

// Resampler converts src to another sample rate with Catmull-Rom
// interpolation. Channel count is preserved. When downsampling a one-pole
// low-pass runs on the input first.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames per output frame
	channels int

	// taps[1] and taps[2] bracket the output position; taps[0] and taps[3]
	// are the outer spline points. live marks taps holding real frames.
	taps   [4][]float32
	live   [4]bool
	primed bool
	frac   float64

	in     []float32
	inPos  int
	inLen  int
	srcEOF bool

	lowpass bool
	alpha   float32
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	size := src.BufSize()
	if size < channels {
		size = defaultBufSize
	}
	size -= size % channels

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		in:       make([]float32, size),
		lowpass:  step > 1,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.taps {
		r.taps[i] = make([]float32, channels)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("closing resampler source: %w", err)
	}
	return nil
}

// pull copies the next source frame into dst. It returns false once the
// source is exhausted.
func (r *Resampler) pull(dst []float32) (bool, error) {
	for r.inPos+r.channels > r.inLen {
		if r.srcEOF {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n-n%r.channels
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			r.srcEOF = true
		} else if err != nil {
			return false, fmt.Errorf("resampler read: %w", err)
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.lowpass {
		for c := range dst {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.state[c]
			r.state[c] = dst[c]
		}
	}
	return true, nil
}

// fill loads taps[i] from the source, or repeats taps[i-1] past the end.
func (r *Resampler) fill(i int) error {
	ok, err := r.pull(r.taps[i])
	if err != nil {
		return err
	}
	r.live[i] = ok
	if !ok {
		copy(r.taps[i], r.taps[i-1])
	}
	return nil
}

func (r *Resampler) prime() (bool, error) {
	ok, err := r.pull(r.taps[1])
	if err != nil || !ok {
		return false, err
	}
	if r.lowpass {
		// Start the filter settled on the first frame.
		copy(r.state, r.taps[1])
	}
	r.live[1] = true
	copy(r.taps[0], r.taps[1])

	for i := 2; i < 4; i++ {
		if err := r.fill(i); err != nil {
			return false, err
		}
	}
	r.primed = true
	return true, nil
}

func (r *Resampler) advance() error {
	first := r.taps[0]
	copy(r.taps[:], r.taps[1:])
	copy(r.live[:], r.live[1:])
	r.taps[3] = first
	return r.fill(3)
}

// ReadSamples writes resampled interleaved frames; len(dst) must be a
// multiple of Channels().
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		ok, err := r.prime()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, io.EOF
		}
	}

	want := len(dst) / r.channels
	written := 0
	for written < want {
		for r.frac >= 1 {
			r.frac--
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if !r.live[1] {
			return written * r.channels, io.EOF
		}

		x := float32(r.frac)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.taps[0][c], r.taps[1][c], r.taps[2][c], r.taps[3][c], x)
		}

		written++
		r.frac += r.step
	}

	return written * r.channels, nil
}
