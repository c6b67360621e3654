// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/ik5/wavepanel/internal/audiotest"
)

func TestBufferSource_RoundTrip(t *testing.T) {
	t.Parallel()

	b := &Buffer{SampleRate: CDRate, Data: audiotest.Grid(2, 10000, func(f, c int) int16 {
		return int16((f*37 + c*1000) % 65536)
	})}

	got, err := Collect(b.Source())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if got.SampleRate != CDRate || got.Channels() != 2 || got.Frames() != 10000 {
		t.Fatalf("got %d Hz %dx%d", got.SampleRate, got.Channels(), got.Frames())
	}
	for c := range b.Data {
		if !slices.Equal(got.Data[c], b.Data[c]) {
			t.Errorf("channel %d differs after round trip", c)
		}
	}
}

func TestBufferSource_InvalidDst(t *testing.T) {
	t.Parallel()

	src := NewBuffer(2, 10, CDRate).Source()
	if _, err := src.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestBufferSource_EOF(t *testing.T) {
	t.Parallel()

	src := NewBuffer(1, 5, CDRate).Source()
	dst := make([]float32, 8)

	n, err := src.ReadSamples(dst)
	if n != 5 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = %d, %v; want 5, EOF", n, err)
	}
	n, err = src.ReadSamples(dst)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("second ReadSamples() = %d, %v; want 0, EOF", n, err)
	}
}

func TestCollect_MockSource(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 3, 1234, 0.5)
	b, err := Collect(src)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if b.Channels() != 3 || b.Frames() != 1234 {
		t.Fatalf("got %dx%d, want 3x1234", b.Channels(), b.Frames())
	}
	for c := range b.Data {
		if b.Data[c][0] != 16384 {
			t.Errorf("channel %d sample = %d, want 16384", c, b.Data[c][0])
		}
	}
}

type failingSource struct{ *audiotest.MockSource }

func (failingSource) ReadSamples([]float32) (int, error) { return 0, errors.New("device gone") }

func TestCollect_PropagatesErrors(t *testing.T) {
	t.Parallel()

	src := failingSource{audiotest.NewSilentSource(8000, 1, 10)}
	if _, err := Collect(src); err == nil {
		t.Error("Collect() error = nil, want failure")
	}
}
