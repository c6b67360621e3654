// SPDX-License-Identifier: EPL-2.0

// Package audio holds the in-memory sample buffer and the streaming
// primitives used to fill it.
//
// # Sample Buffer
//
// Buffer stores 16-bit samples as Data[channel][frame]. Every channel has
// the same length and the editing methods (Copy, Cut, Paste, Append) keep it
// that way:
//
//	clip, _ := buf.Cut(44100, 88200) // remove the second second
//	_ = buf.Paste(0, clip)           // and put it in front
//
// # Streaming
//
// Decoders produce a Source of interleaved float32 samples. Sources chain:
//
//	src, _ := wav.Decoder{}.Decode(r)
//	res := audio.NewResampler(src, audio.CDRate)
//	mono := audio.NewMonoMixer(res)
//	buf, _ := audio.Collect(mono)
//
// Buffer.Source goes the other way, feeding an in-memory buffer back into a
// chain.
//
// # Registry
//
// Registry maps file extensions to decoders so callers can pick one by path:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	dec, ok := reg.Lookup("take1.WAV")
package audio
