// SPDX-License-Identifier: EPL-2.0

// Package microphone is a capture-only device built on the beep microphone
// streamer. It exists for hosts where a full duplex PortAudio stream is not
// wanted.
package microphone

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MarkKremer/microphone/v2"
	"github.com/gopxl/beep/v2"

	"github.com/ik5/wavepanel/transport"
	"github.com/ik5/wavepanel/utils"
)

var ErrUnsupportedChannels = errors.New("microphone captures 1 or 2 channels")

// streamer is the part of *microphone.Streamer the adapter uses.
type streamer interface {
	Stream(samples [][2]float64) (int, bool)
	Err() error
	Close() error
}

// Device records from the default input. Init must be called before the
// first OpenInput and Terminate after the last Close.
type Device struct {
	Logger *slog.Logger
}

func Init() error {
	if err := microphone.Init(); err != nil {
		return fmt.Errorf("%w: microphone: %w", transport.ErrDeviceUnavailable, err)
	}
	return nil
}

func Terminate() error {
	return microphone.Terminate()
}

func (Device) OpenOutput(int, int, int) (transport.OutputStream, error) {
	return nil, fmt.Errorf("microphone: no playback: %w", transport.ErrDeviceUnavailable)
}

func (d Device) OpenInput(sampleRate, channels, framesPerBuffer int) (transport.InputStream, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedChannels, channels)
	}

	s, format, err := microphone.OpenDefaultStream(beep.SampleRate(sampleRate), channels)
	if err != nil {
		return nil, fmt.Errorf("microphone: open stream: %w", err)
	}
	if err := s.Start(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("microphone: start stream: %w", err)
	}

	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Debug("microphone: stream opened",
		"sample_rate", int(format.SampleRate), "channels", format.NumChannels, "precision", format.Precision)

	return newInput(s, channels, framesPerBuffer), nil
}

type input struct {
	s        streamer
	channels int
	frames   [][2]float64
}

func newInput(s streamer, channels, framesPerBuffer int) *input {
	return &input{s: s, channels: channels, frames: make([][2]float64, framesPerBuffer)}
}

func (i *input) Read(samples []int16) (int, error) {
	want := len(samples) / i.channels
	if want > len(i.frames) {
		i.frames = make([][2]float64, want)
	}

	n, ok := i.s.Stream(i.frames[:want])
	for f, frame := range i.frames[:n] {
		for c := range i.channels {
			samples[f*i.channels+c] = utils.Float32ToInt16(float32(frame[c]))
		}
	}

	if !ok {
		if err := i.s.Err(); err != nil {
			return n * i.channels, err
		}
		return n * i.channels, io.EOF
	}
	return n * i.channels, nil
}

func (i *input) Close() error {
	return i.s.Close()
}
