// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"slices"
	"testing"
)

// fakeStream serves PCM bytes in short, odd-sized reads.
type fakeStream struct {
	rate  int
	data  []byte
	step  int
	fails bool
}

func newFakeStream(rate int, samples []int16, step int) *fakeStream {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}
	return &fakeStream{rate: rate, data: data, step: step}
}

func (f *fakeStream) SampleRate() int { return f.rate }

func (f *fakeStream) Read(p []byte) (int, error) {
	if f.fails {
		return 0, io.ErrUnexpectedEOF
	}
	if len(f.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p[:min(len(p), f.step)], f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestSource_OddReads(t *testing.T) {
	t.Parallel()

	in := []int16{0, 16384, -16384, 8192, -8192, -32768}
	src := &source{dec: newFakeStream(44100, in, 3)}

	var got []float32
	buf := make([]float32, 4)
	for {
		n, err := src.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	want := []float32{0, 0.5, -0.5, 0.25, -0.25, -1}
	if !slices.Equal(got, want) {
		t.Errorf("samples = %v, want %v", got, want)
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := &source{dec: newFakeStream(32000, nil, 2), raw: make([]byte, 64)}
	if src.SampleRate() != 32000 || src.Channels() != 2 || src.BufSize() != 32 {
		t.Errorf("got %d Hz, %d channels, buf %d", src.SampleRate(), src.Channels(), src.BufSize())
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	src := &source{dec: &fakeStream{rate: 44100, fails: true}}
	if _, err := src.ReadSamples(make([]float32, 8)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestDecoder_RejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("This is not MP3 data")} {
		if _, err := (Decoder{}).Decode(bytes.NewReader(data)); !errors.Is(err, ErrNotMP3File) {
			t.Errorf("Decode(%q) error = %v, want ErrNotMP3File", data, err)
		}
	}
}
