// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ik5/wavepanel/audio"
)

const (
	headerSize = 44
	chunkSize  = 8192 // samples per write
)

// header renders the canonical RIFF/fmt/data preamble.
func header(sampleRate, channels, samples int) []byte {
	blockAlign := uint16(channels * bytesPerSample)
	dataSize := uint32(samples * bytesPerSample)

	h := make([]byte, headerSize)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], 36+dataSize)
	copy(h[8:12], "WAVE")

	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], pcmFormat)
	binary.LittleEndian.PutUint16(h[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(sampleRate)*uint32(blockAlign))
	binary.LittleEndian.PutUint16(h[32:34], blockAlign)
	binary.LittleEndian.PutUint16(h[34:36], bitsPerSample)

	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], dataSize)
	return h
}

// WriteWAV16 writes interleaved 16-bit PCM with a canonical 44-byte header.
func WriteWAV16(w io.Writer, sampleRate, channels int, interleaved []int16) error {
	if channels <= 0 || channels > math.MaxUint16 {
		return fmt.Errorf("%d channels: %w", channels, ErrUnsupportedWavLayout)
	}
	if len(interleaved)%channels != 0 {
		return fmt.Errorf("%d samples for %d channels: %w", len(interleaved), channels, ErrUnsupportedWavLayout)
	}
	if uint64(len(interleaved))*bytesPerSample > math.MaxUint32-36 {
		return fmt.Errorf("payload too large for a RIFF container: %w", ErrUnsupportedWavLayout)
	}

	if _, err := w.Write(header(sampleRate, channels, len(interleaved))); err != nil {
		return fmt.Errorf("writing wav header: %w", err)
	}

	buf := make([]byte, min(len(interleaved), chunkSize)*bytesPerSample)
	for i := 0; i < len(interleaved); i += chunkSize {
		chunk := interleaved[i:min(i+chunkSize, len(interleaved))]
		out := buf[:len(chunk)*bytesPerSample]
		for j, s := range chunk {
			binary.LittleEndian.PutUint16(out[j*2:], uint16(s))
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("writing wav data: %w", err)
		}
	}
	return nil
}

// EncodeBuffer writes b as a 44.1kHz, 16-bit signed PCM WAV stream. The
// header always carries audio.CDRate whatever b.SampleRate says; resample
// first if the rates differ.
func EncodeBuffer(w io.Writer, b *audio.Buffer) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	return WriteWAV16(w, audio.CDRate, b.Channels(), b.Interleave(0, b.Frames()))
}
