// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"io"
	"math"
	"slices"
	"testing"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/wavepanel/internal/audiotest"
)

// streamOnly hides Seek so the decoder has to buffer the input.
type streamOnly struct{ r io.Reader }

func (s streamOnly) Read(p []byte) (int, error) { return s.r.Read(p) }

func TestDecodeBuffer_Stereo(t *testing.T) {
	t.Parallel()

	data := audiotest.PCM16(48000, 2, []int16{100, -100, 200, -200, 300, -300})
	b, err := DecodeBuffer(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeBuffer() error = %v", err)
	}

	if b.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", b.SampleRate)
	}
	if !slices.Equal(b.Data[0], []int16{100, 200, 300}) || !slices.Equal(b.Data[1], []int16{-100, -200, -300}) {
		t.Errorf("Data = %v", b.Data)
	}
}

func TestDecodeBuffer_ExtremeValues(t *testing.T) {
	t.Parallel()

	in := []int16{0, 1, -1, math.MaxInt16, math.MinInt16, 0x00FF, -0x0100}
	b, err := DecodeBuffer(bytes.NewReader(audiotest.PCM16(44100, 1, in)))
	if err != nil {
		t.Fatalf("DecodeBuffer() error = %v", err)
	}
	if !slices.Equal(b.Data[0], in) {
		t.Errorf("Data = %v, want %v", b.Data[0], in)
	}
}

func TestDecodeBuffer_NonSeekableInput(t *testing.T) {
	t.Parallel()

	data := audiotest.PCM16(8000, 1, []int16{5, 6, 7})
	b, err := DecodeBuffer(streamOnly{bytes.NewReader(data)})
	if err != nil {
		t.Fatalf("DecodeBuffer() error = %v", err)
	}
	if b.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", b.Frames())
	}
}

func TestDecodeBuffer_Errors(t *testing.T) {
	t.Parallel()

	eightBit := audiotest.PCM16Header(8000, 1, 2)
	eightBit.BitsPerSample = 8

	float := audiotest.PCM16Header(8000, 1, 2)
	float.Format = 3

	noChannels := audiotest.PCM16Header(8000, 1, 2)
	noChannels.Channels = 0

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "no bytes", data: nil, want: ErrEmptyStream},
		{name: "garbage", data: []byte("NOT A WAV FILE DATA"), want: ErrNotWavFile},
		{name: "truncated preamble", data: []byte("RIFF\x00"), want: ErrNotWavFile},
		{name: "wrong form type", data: []byte("RIFF\x24\x00\x00\x00NOPEfmt "), want: ErrNotWavFile},
		{name: "eight bit", data: audiotest.WAV(eightBit, []byte{1, 2}), want: ErrOnlyPCM16bitSupported},
		{name: "ieee float", data: audiotest.WAV(float, []byte{1, 2, 3, 4}), want: ErrOnlyPCM16bitSupported},
		{name: "no channels", data: audiotest.WAV(noChannels, []byte{1, 2, 3, 4}), want: ErrUnsupportedWavLayout},
		{name: "no frames", data: audiotest.PCM16(44100, 2, nil), want: ErrEmptyStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := DecodeBuffer(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeBuffer() error = %v, want %v", err, tt.want)
			}
			if b != nil {
				t.Error("DecodeBuffer() returned a buffer alongside an error")
			}
		})
	}
}

func TestDecodeBuffer_TruncatedPayload(t *testing.T) {
	t.Parallel()

	h := audiotest.PCM16Header(8000, 1, 10) // promises 20 bytes
	b, err := DecodeBuffer(bytes.NewReader(audiotest.WAV(h, []byte{1, 0, 2, 0})))
	if !errors.Is(err, ErrCorruptStream) {
		t.Fatalf("DecodeBuffer() error = %v, want ErrCorruptStream", err)
	}
	if b != nil {
		t.Error("DecodeBuffer() returned a partial buffer")
	}
}

func TestDecode_PayloadClaimLargerThanStream(t *testing.T) {
	t.Parallel()

	for _, size := range []uint32{200_000_000, math.MaxUint32 - 1} {
		h := audiotest.PCM16Header(8000, 1, 0)
		h.DataSize = size
		data := audiotest.WAV(h, []byte{1, 0, 2, 0, 3, 0, 4, 0})

		b, err := DecodeBuffer(bytes.NewReader(data))
		if !errors.Is(err, ErrCorruptStream) {
			t.Errorf("DecodeBuffer() with %d claimed bytes: error = %v, want ErrCorruptStream", size, err)
		}
		if b != nil {
			t.Error("DecodeBuffer() returned a buffer alongside an error")
		}

		if _, err := (Decoder{}).Decode(streamOnly{bytes.NewReader(data)}); !errors.Is(err, ErrCorruptStream) {
			t.Errorf("Decode() with %d claimed bytes: error = %v, want ErrCorruptStream", size, err)
		}
	}
}

func TestDecode_NoFrames(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader(audiotest.PCM16(44100, 2, nil))); !errors.Is(err, ErrEmptyStream) {
		t.Errorf("Decode() error = %v, want ErrEmptyStream", err)
	}
}

// shortPCM hands out its samples once, then reports nothing left.
type shortPCM struct{ data []int }

func (p *shortPCM) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	n := copy(buf.Data, p.data)
	p.data = p.data[n:]
	return n, nil
}

func TestSource_ShortPayloadIsCorrupt(t *testing.T) {
	t.Parallel()

	src := &source{
		dec:    &shortPCM{data: []int{100, 200, 300}},
		format: &goaudio.Format{NumChannels: 1, SampleRate: 8000},
		left:   8,
	}

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if n != 3 {
		t.Errorf("ReadSamples() n = %d, want 3", n)
	}
	if !errors.Is(err, ErrCorruptStream) {
		t.Errorf("ReadSamples() error = %v, want ErrCorruptStream", err)
	}
}

type brokenPCM struct{}

func (brokenPCM) PCMBuffer(*goaudio.IntBuffer) (int, error) { return 0, errors.New("disk on fire") }

func TestDecodeBuffer_ReadFailureIsCorrupt(t *testing.T) {
	t.Parallel()

	b, err := decodeBuffer(brokenPCM{}, layout{sampleRate: 8000, channels: 1, frames: 4})
	if !errors.Is(err, ErrCorruptStream) {
		t.Errorf("decodeBuffer() error = %v, want ErrCorruptStream", err)
	}
	if b != nil {
		t.Error("decodeBuffer() returned a buffer alongside an error")
	}
}

func TestDecoder_Source(t *testing.T) {
	t.Parallel()

	in := []int16{0, 16384, -16384, -32768, 8192, -8192}
	src, err := Decoder{}.Decode(bytes.NewReader(audiotest.PCM16(16000, 2, in)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 16000 || src.Channels() != 2 {
		t.Fatalf("got %d Hz, %d channels", src.SampleRate(), src.Channels())
	}

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

	want := []float32{0, 0.5, -0.5, -1, 0.25, -0.25}
	if !slices.Equal(got, want) {
		t.Errorf("samples = %v, want %v", got, want)
	}
}

func TestDecoder_EmptyDst(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(audiotest.PCM16(8000, 1, []int16{1, 2, 3})))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	n, err := src.ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v; want 0, nil", n, err)
	}
}

func TestDecoder_RejectsNonWAV(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("ID3\x03garbage-mp3-ish"))); !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Decode() error = %v, want ErrNotWavFile", err)
	}
}
