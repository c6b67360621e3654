// SPDX-License-Identifier: EPL-2.0

// Package wavepanel is the engine behind an audio waveform capture and
// playback panel: it loads audio into an editable sample buffer, renders
// that buffer as a waveform bitmap and plays or records it on a sound
// device.
//
// # Working Format
//
// Everything is conformed to 16-bit samples at 44.1kHz, stored one slice per
// channel in an audio.Buffer. Load and LoadFile decode any registered format
// and resample on the way in:
//
//	buf, err := wavepanel.LoadFile("take1.ogg", wavepanel.LoadOptions{})
//	if errors.Is(err, wavepanel.ErrUnsupportedFormat) {
//	    // no decoder for the extension
//	}
//
// Save and SaveFile write a 44.1kHz, 16-bit PCM WAVE stream.
//
// # Supported Formats
//
// The default registry decodes:
//   - WAV (PCM 16-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (PCM 16-bit) via formats/aiff
//
// # Editing
//
// audio.Buffer supports Copy, Cut, Paste and Append. All of them keep every
// channel the same length and leave the buffer untouched on error:
//
//	clip, _ := buf.Copy(0, 44100)
//	_ = buf.Append(clip)
//
// # Rendering
//
// The waveform package draws a buffer:
//
//	img := waveform.Render(buf, waveform.DefaultConfig())
//
// Rendering never fails. Empty input yields a blank image and a logged
// warning.
//
// # Playback and Recording
//
// The transport package runs one goroutine per operation and reports
// progress on a channel about every 75ms:
//
//	p := transport.NewPlayer(dev, transport.DefaultOptions())
//	events, err := p.Play(ctx, buf, 0, buf.Frames())
//	for ev := range events {
//	    // update the cursor from ev.Frame
//	}
//
// Stop ends playback or recording after the current chunk.
package wavepanel
