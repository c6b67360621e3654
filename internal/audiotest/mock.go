// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fixtures shared by the package tests: generated
// sources, sample grids and hand-built WAV streams.
package audiotest

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// MockSource generates interleaved float32 audio on demand. It satisfies
// audio.Source without importing it.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int
	emitted    int
	closed     bool
	waveform   func(frame, channel int) float32
}

// NewMockSource returns a source producing frames frames of waveform.
func NewMockSource(sampleRate, channels, frames int, waveform func(frame, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
	}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// NewSineSource emits the same sine tone on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.emitted >= m.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, m.frames-m.emitted)
	for f := range n {
		for c := range m.channels {
			dst[f*m.channels+c] = m.waveform(m.emitted+f, c)
		}
	}
	m.emitted += n

	if m.emitted >= m.frames {
		return n * m.channels, io.EOF
	}
	return n * m.channels, nil
}

// Grid builds a [channel][frame] sample grid from fn.
func Grid(channels, frames int, fn func(frame, channel int) int16) [][]int16 {
	grid := make([][]int16, channels)
	for c := range grid {
		grid[c] = make([]int16, frames)
		for f := range grid[c] {
			grid[c][f] = fn(f, c)
		}
	}
	return grid
}

// ConstantGrid fills every channel with value.
func ConstantGrid(channels, frames int, value int16) [][]int16 {
	return Grid(channels, frames, func(int, int) int16 { return value })
}

// WAVHeader describes a canonical 44-byte header. Fields are written as-is so
// tests can build inconsistent or hostile files.
type WAVHeader struct {
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	BlockAlign    uint16
	DataSize      uint32
}

// PCM16Header returns a consistent header for interleaved 16-bit samples.
func PCM16Header(sampleRate, channels, samples int) WAVHeader {
	return WAVHeader{
		Format:        1,
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		BitsPerSample: 16,
		BlockAlign:    uint16(channels * 2),
		DataSize:      uint32(samples * 2),
	}
}

// WAV serializes h followed by the raw payload.
func WAV(h WAVHeader, payload []byte) []byte {
	buf := new(bytes.Buffer)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(payload)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, h.Format)
	_ = binary.Write(buf, binary.LittleEndian, h.Channels)
	_ = binary.Write(buf, binary.LittleEndian, h.SampleRate)
	_ = binary.Write(buf, binary.LittleEndian, h.SampleRate*uint32(h.BlockAlign))
	_ = binary.Write(buf, binary.LittleEndian, h.BlockAlign)
	_ = binary.Write(buf, binary.LittleEndian, h.BitsPerSample)

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, h.DataSize)
	buf.Write(payload)

	return buf.Bytes()
}

// PCM16 builds a complete 16-bit WAV stream from interleaved samples.
func PCM16(sampleRate, channels int, interleaved []int16) []byte {
	payload := make([]byte, len(interleaved)*2)
	for i, s := range interleaved {
		binary.LittleEndian.PutUint16(payload[2*i:], uint16(s))
	}
	return WAV(PCM16Header(sampleRate, channels, len(interleaved)), payload)
}
