// SPDX-License-Identifier: EPL-2.0

// Package portaudio is the default playback and capture device, backed by
// PortAudio blocking streams.
package portaudio

import (
	"errors"
	"fmt"
	"log/slog"

	pa "github.com/gordonklaus/portaudio"

	"github.com/ik5/wavepanel/transport"
)

// stream is the part of *pa.Stream the adapters use.
type stream interface {
	Read() error
	Write() error
	Stop() error
	Close() error
}

// Device opens PortAudio's default input and output. Init must be called
// before the first Open and Terminate after the last Close.
type Device struct {
	Logger *slog.Logger
}

func Init() error {
	if err := pa.Initialize(); err != nil {
		return fmt.Errorf("%w: portaudio: %w", transport.ErrDeviceUnavailable, err)
	}
	return nil
}

func Terminate() error {
	return pa.Terminate()
}

func (d Device) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d Device) OpenOutput(sampleRate, channels, framesPerBuffer int) (transport.OutputStream, error) {
	buf := make([]int16, framesPerBuffer*channels)
	s, err := open(0, channels, sampleRate, framesPerBuffer, buf)
	if err != nil {
		return nil, err
	}
	return &output{s: s, buf: buf, log: d.logger()}, nil
}

func (d Device) OpenInput(sampleRate, channels, framesPerBuffer int) (transport.InputStream, error) {
	buf := make([]int16, framesPerBuffer*channels)
	s, err := open(channels, 0, sampleRate, framesPerBuffer, buf)
	if err != nil {
		return nil, err
	}
	return &input{s: s, buf: buf, log: d.logger()}, nil
}

func open(in, out, sampleRate, framesPerBuffer int, buf []int16) (*pa.Stream, error) {
	s, err := pa.OpenDefaultStream(in, out, float64(sampleRate), framesPerBuffer, buf)
	if err != nil {
		return nil, fmt.Errorf("portaudio: open stream: %w", err)
	}
	if err := s.Start(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("portaudio: start stream: %w", err)
	}
	return s, nil
}

func closeStream(s stream) error {
	return errors.Join(s.Stop(), s.Close())
}

// output feeds samples through the stream's bound buffer, padding the last
// period with silence.
type output struct {
	s   stream
	buf []int16
	log *slog.Logger
}

func (o *output) Write(samples []int16) error {
	for len(samples) > 0 {
		n := copy(o.buf, samples)
		clear(o.buf[n:])
		samples = samples[n:]

		if err := o.s.Write(); err != nil {
			if !errors.Is(err, pa.OutputUnderflowed) {
				return err
			}
			o.log.Debug("portaudio: output underflow")
		}
	}
	return nil
}

func (o *output) Close() error { return closeStream(o.s) }

// input hands out one device period at a time; whatever the caller did not
// take is returned by the next Read.
type input struct {
	s       stream
	buf     []int16
	pending []int16
	log     *slog.Logger
}

func (i *input) Read(samples []int16) (int, error) {
	if len(i.pending) == 0 {
		if err := i.s.Read(); err != nil {
			if !errors.Is(err, pa.InputOverflowed) {
				return 0, err
			}
			i.log.Debug("portaudio: input overflow")
		}
		i.pending = i.buf
	}

	n := copy(samples, i.pending)
	i.pending = i.pending[n:]
	return n, nil
}

func (i *input) Close() error { return closeStream(i.s) }
