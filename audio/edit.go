// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"slices"
)

func (b *Buffer) editRange(start, end int) (int, int, error) {
	if err := b.Validate(); err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, fmt.Errorf("start %d after end %d: %w", start, end, ErrInvalidRange)
	}

	start, end = b.clampRange(start, end)
	return start, end, nil
}

// Copy returns a deep copy of frames [start, end). The range is clamped to the
// buffer.
func (b *Buffer) Copy(start, end int) (*Buffer, error) {
	start, end, err := b.editRange(start, end)
	if err != nil {
		return nil, err
	}

	clip := &Buffer{SampleRate: b.SampleRate, Data: make([][]int16, len(b.Data))}
	for c, ch := range b.Data {
		clip.Data[c] = slices.Clone(ch[start:end])
	}
	return clip, nil
}

// Cut removes frames [start, end) from every channel and returns them.
func (b *Buffer) Cut(start, end int) (*Buffer, error) {
	clip, err := b.Copy(start, end)
	if err != nil {
		return nil, err
	}

	start, end = b.clampRange(start, end)
	for c := range b.Data {
		b.Data[c] = slices.Delete(b.Data[c], start, end)
	}
	return clip, nil
}

// Paste inserts clip before frame at. at is clamped to [0, Frames()].
func (b *Buffer) Paste(at int, clip *Buffer) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := clip.Validate(); err != nil {
		return fmt.Errorf("clip: %w", err)
	}
	if clip.Channels() != b.Channels() {
		return fmt.Errorf("clip has %d channels, buffer has %d: %w", clip.Channels(), b.Channels(), ErrChannelMismatch)
	}

	if clip == b {
		clip = b.Clone()
	}

	at, _ = b.clampRange(at, at)
	for c := range b.Data {
		b.Data[c] = slices.Insert(b.Data[c], at, clip.Data[c]...)
	}
	return nil
}

// Append pastes clip after the last frame.
func (b *Buffer) Append(clip *Buffer) error {
	return b.Paste(b.Frames(), clip)
}
