// SPDX-License-Identifier: EPL-2.0

package wavepanel

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ik5/wavepanel/audio"
	"github.com/ik5/wavepanel/formats/aiff"
	"github.com/ik5/wavepanel/formats/mp3"
	"github.com/ik5/wavepanel/formats/vorbis"
	"github.com/ik5/wavepanel/formats/wav"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNoAudio           = errors.New("stream holds no audio")
)

// LoadOptions tunes how decoded audio is conformed to the working format.
type LoadOptions struct {
	// Mono averages all channels into one.
	Mono bool
}

var defaultRegistry = sync.OnceValue(func() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	return reg
})

// DefaultRegistry returns the registry Load and LoadFile use. It knows wav,
// mp3, ogg, aiff and aif; more decoders may be registered on it.
func DefaultRegistry() *audio.Registry {
	return defaultRegistry()
}

// Load decodes r and returns it as a sample buffer at the 44.1kHz working
// rate.
//
// The processing pipeline is:
//  1. Decode r with the decoder registered for format (e.g. "wav", ".MP3")
//  2. Resample to 44.1kHz with cubic interpolation, if the stream is not
//     already at that rate
//  3. Average the channels down to one, when opts.Mono is set
//  4. Collect everything as 16-bit samples, one slice per channel
//
// Decoder errors are returned wrapped, so callers can test them with
// errors.Is against the format packages' sentinels (wav.ErrNotWavFile,
// wav.ErrCorruptStream and so on). A stream that decodes to zero frames
// fails with ErrNoAudio. No buffer is returned on error.
//
// Example:
//
//	f, _ := os.Open("take1.mp3")
//	defer f.Close()
//	buf, err := wavepanel.Load(f, "mp3", wavepanel.LoadOptions{Mono: true})
func Load(r io.Reader, format string, opts LoadOptions) (*audio.Buffer, error) {
	dec, ok := DefaultRegistry().Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	src, err := dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	buf, err := collect(src, opts)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	return buf, nil
}

// collect runs src through the pipeline and closes it. Zero frames is an
// error.
func collect(src audio.Source, opts LoadOptions) (*audio.Buffer, error) {
	out := pipeline(src, opts)
	defer out.Close()

	buf, err := audio.Collect(out)
	if err != nil {
		return nil, err
	}
	if buf.Frames() == 0 {
		return nil, ErrNoAudio
	}
	return buf, nil
}

// LoadFile is Load for a file on disk; the format comes from its extension.
func LoadFile(path string, opts LoadOptions) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f, filepath.Ext(path), opts)
}

// Conform returns a copy of b at 44.1kHz, mixed to mono when opts.Mono is
// set. b itself is never modified.
func Conform(b *audio.Buffer, opts LoadOptions) (*audio.Buffer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.SampleRate == audio.CDRate && (!opts.Mono || b.Channels() == 1) {
		return b.Clone(), nil
	}

	return audio.Collect(pipeline(b.Source(), opts))
}

// Save writes b as a 16-bit PCM WAVE stream. Buffers at other rates are
// resampled first, because the stream header always says 44.1kHz.
func Save(w io.Writer, b *audio.Buffer) error {
	out := b
	if b.SampleRate != audio.CDRate {
		var err error
		if out, err = Conform(b, LoadOptions{}); err != nil {
			return err
		}
	}
	return wav.EncodeBuffer(w, out)
}

// SaveFile is Save to a new or truncated file.
func SaveFile(path string, b *audio.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Save(f, b); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func pipeline(src audio.Source, opts LoadOptions) audio.Source {
	out := src
	if out.SampleRate() != audio.CDRate {
		out = audio.NewResampler(out, audio.CDRate)
	}
	if opts.Mono && out.Channels() > 1 {
		out = audio.NewMonoMixer(out)
	}
	return out
}
