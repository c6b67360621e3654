// SPDX-License-Identifier: EPL-2.0

// Package wav is the sample codec: 16-bit little-endian PCM WAVE streams to
// and from audio.Buffer.
//
// # Decoding
//
// DecodeBuffer reads a whole file into memory, de-interleaving it into one
// int16 slice per channel:
//
//	buf, err := wav.DecodeBuffer(file)
//	if errors.Is(err, wav.ErrCorruptStream) {
//	    // header and payload disagree; nothing was decoded
//	}
//
// Decoder is the streaming variant and plugs into an audio.Registry.
//
// Header parsing is done by github.com/go-audio/wav. Only PCM 16-bit is
// accepted; anything else fails with ErrOnlyPCM16bitSupported.
//
// # Encoding
//
// EncodeBuffer writes a buffer back out as a 44.1kHz, 16-bit signed PCM
// stream with a canonical 44-byte header:
//
//	err := wav.EncodeBuffer(out, buf)
//
// For any buffer with at least one channel and one frame,
// DecodeBuffer(EncodeBuffer(buf)) reproduces the samples exactly.
//
// # Errors
//
//   - ErrEmptyStream: no bytes, or a header with no frames
//   - ErrNotWavFile: missing RIFF/WAVE preamble
//   - ErrUnsupportedWavLayout: no channels in the fmt chunk
//   - ErrOnlyPCM16bitSupported: compressed, float or non 16-bit data
//   - ErrUnsupportedWavChunks: no data chunk
//   - ErrCorruptStream: negative or overflowing frame arithmetic, short payload
package wav
