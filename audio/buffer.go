// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"time"
)

// CDRate is the working sample rate of the package: every buffer that is
// written back to disk is tagged 44.1kHz.
const CDRate = 44100

// Buffer holds 16-bit samples indexed [channel][frame]. All channels have the
// same length; every method that mutates a Buffer keeps it that way.
type Buffer struct {
	SampleRate int
	Data       [][]int16
}

// NewBuffer allocates a silent buffer.
func NewBuffer(channels, frames, sampleRate int) *Buffer {
	data := make([][]int16, channels)
	for c := range data {
		data[c] = make([]int16, frames)
	}
	return &Buffer{SampleRate: sampleRate, Data: data}
}

// FromInterleaved de-interleaves samples. A trailing partial frame is dropped.
func FromInterleaved(samples []int16, channels, sampleRate int) (*Buffer, error) {
	if channels <= 0 {
		return nil, ErrNoChannels
	}

	frames := len(samples) / channels
	b := NewBuffer(channels, frames, sampleRate)
	for f := range frames {
		base := f * channels
		for c := range channels {
			b.Data[c][f] = samples[base+c]
		}
	}
	return b, nil
}

func (b *Buffer) Channels() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

func (b *Buffer) Frames() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Validate checks the equal-length invariant.
func (b *Buffer) Validate() error {
	if b.Channels() == 0 {
		return ErrNoChannels
	}

	frames := len(b.Data[0])
	for c, ch := range b.Data {
		if len(ch) != frames {
			return fmt.Errorf("channel %d has %d frames, channel 0 has %d: %w", c, len(ch), frames, ErrRaggedChannels)
		}
	}
	return nil
}

func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}

	out := &Buffer{SampleRate: b.SampleRate, Data: make([][]int16, len(b.Data))}
	for c, ch := range b.Data {
		out.Data[c] = append([]int16(nil), ch...)
	}
	return out
}

// Interleave returns frames [start, end) as one interleaved slice.
func (b *Buffer) Interleave(start, end int) []int16 {
	channels := b.Channels()
	start, end = b.clampRange(start, end)
	if end <= start {
		return nil
	}

	out := make([]int16, (end-start)*channels)
	for f := start; f < end; f++ {
		base := (f - start) * channels
		for c := range channels {
			out[base+c] = b.Data[c][f]
		}
	}
	return out
}

func (b *Buffer) clampRange(start, end int) (int, int) {
	frames := b.Frames()
	start = max(0, min(start, frames))
	end = max(0, min(end, frames))
	return start, end
}
