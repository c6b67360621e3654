// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/ik5/wavepanel/audio"
	"github.com/ik5/wavepanel/internal/audiotest"
)

// testOptions gives 1000-frame chunks at 10 kHz.
func testOptions() Options {
	return Options{ProgressInterval: 100 * time.Millisecond}
}

func testBuffer(channels, frames int) *audio.Buffer {
	return &audio.Buffer{
		SampleRate: 10000,
		Data: audiotest.Grid(channels, frames, func(frame, channel int) int16 {
			return int16(frame%1000*10 + channel)
		}),
	}
}

func TestPlayer_PlaysWholeRange(t *testing.T) {
	t.Parallel()

	out := &fakeOutput{}
	dev := &fakeDevice{out: out}
	p := NewPlayer(dev, testOptions())
	buf := testBuffer(2, 10000)

	events, err := p.Play(context.Background(), buf, 0, buf.Frames())
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	all := drain(events)
	if err := p.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if all[0].Kind != Started {
		t.Errorf("first event = %v, want started", all[0].Kind)
	}
	last := all[len(all)-1]
	if last.Kind != Completed || last.Frame != 10000 || last.Total != 10000 {
		t.Errorf("last event = %+v, want completed at 10000/10000", last)
	}

	prev := 0
	for _, ev := range all[1 : len(all)-1] {
		if ev.Kind != Progress || ev.Frame <= prev || ev.Total != 10000 {
			t.Errorf("unexpected progress event %+v after frame %d", ev, prev)
		}
		prev = ev.Frame
	}

	written, closed := out.snapshot()
	if !slices.Equal(written, buf.Interleave(0, buf.Frames())) {
		t.Error("written samples differ from the buffer")
	}
	if !closed {
		t.Error("output stream not closed")
	}
	if dev.rate != 10000 || dev.channels != 2 || dev.frames != 1000 {
		t.Errorf("opened at %d Hz, %d ch, %d frames", dev.rate, dev.channels, dev.frames)
	}
	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
}

func TestPlayer_PlaysSubRange(t *testing.T) {
	t.Parallel()

	out := &fakeOutput{}
	p := NewPlayer(&fakeDevice{out: out}, testOptions())
	buf := testBuffer(1, 5000)

	events, err := p.Play(context.Background(), buf, 2000, 3500)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	all := drain(events)

	last := all[len(all)-1]
	if last.Kind != Completed || last.Frame != 1500 || last.Total != 1500 {
		t.Errorf("last event = %+v", last)
	}
	if written, _ := out.snapshot(); !slices.Equal(written, buf.Interleave(2000, 3500)) {
		t.Error("written samples differ from the range")
	}
}

func TestPlayer_RejectsBadInput(t *testing.T) {
	t.Parallel()

	p := NewPlayer(&fakeDevice{out: &fakeOutput{}}, testOptions())

	if _, err := p.Play(context.Background(), testBuffer(1, 100), 50, 10); !errors.Is(err, audio.ErrInvalidRange) {
		t.Errorf("reversed range error = %v", err)
	}
	if _, err := p.Play(context.Background(), nil, 0, 10); !errors.Is(err, audio.ErrNoChannels) {
		t.Errorf("nil buffer error = %v", err)
	}
	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
}

func TestPlayer_StopEndsPlayback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		stop func(p *Player, cancel context.CancelFunc)
	}{
		{name: "Stop", stop: func(p *Player, _ context.CancelFunc) { p.Stop() }},
		{name: "context", stop: func(_ *Player, cancel context.CancelFunc) { cancel() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			out := &fakeOutput{gate: make(chan struct{})}
			p := NewPlayer(&fakeDevice{out: out}, testOptions())

			events, err := p.Play(ctx, testBuffer(1, 10000), 0, 10000)
			if err != nil {
				t.Fatalf("Play() error = %v", err)
			}
			if ev := <-events; ev.Kind != Started {
				t.Fatalf("first event = %v", ev.Kind)
			}

			out.gate <- struct{}{}
			if ev := <-events; ev.Kind != Progress || ev.Frame != 1000 {
				t.Fatalf("second event = %+v", ev)
			}

			tt.stop(p, cancel)
			close(out.gate)

			all := drain(events)
			last := all[len(all)-1]
			if last.Kind != Stopped {
				t.Fatalf("last event = %v, want stopped", last.Kind)
			}
			if last.Frame != 1000 && last.Frame != 2000 {
				t.Errorf("stopped at frame %d, want 1000 or 2000", last.Frame)
			}
			if err := p.Wait(); err != nil {
				t.Errorf("Wait() error = %v", err)
			}
		})
	}
}

func TestPlayer_WriteFailure(t *testing.T) {
	t.Parallel()

	out := &fakeOutput{failAt: 3}
	p := NewPlayer(&fakeDevice{out: out}, testOptions())

	events, err := p.Play(context.Background(), testBuffer(1, 10000), 0, 10000)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	all := drain(events)

	last := all[len(all)-1]
	if last.Kind != Failed || last.Frame != 2000 || !errors.Is(last.Err, errFake) {
		t.Errorf("last event = %+v", last)
	}
	if err := p.Wait(); !errors.Is(err, errFake) {
		t.Errorf("Wait() error = %v, want errFake", err)
	}
	if _, closed := out.snapshot(); !closed {
		t.Error("output stream not closed after failure")
	}
	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
}

func TestPlayer_RecoversPanic(t *testing.T) {
	t.Parallel()

	p := NewPlayer(&fakeDevice{out: &fakeOutput{panicAt: 2}}, testOptions())

	events, err := p.Play(context.Background(), testBuffer(1, 10000), 0, 10000)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	all := drain(events)

	if last := all[len(all)-1]; last.Kind != Failed || !errors.Is(last.Err, ErrPanicked) {
		t.Errorf("last event = %+v", last)
	}
	if err := p.Wait(); !errors.Is(err, ErrPanicked) {
		t.Errorf("Wait() error = %v", err)
	}
	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
}

func TestPlayer_Busy(t *testing.T) {
	t.Parallel()

	out := &fakeOutput{gate: make(chan struct{})}
	p := NewPlayer(&fakeDevice{out: out}, testOptions())
	buf := testBuffer(1, 3000)

	events, err := p.Play(context.Background(), buf, 0, 3000)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if p.State() != Playing {
		t.Errorf("State() = %v, want playing", p.State())
	}
	if _, err := p.Play(context.Background(), buf, 0, 3000); !errors.Is(err, ErrBusy) {
		t.Errorf("second Play() error = %v, want ErrBusy", err)
	}

	close(out.gate)
	drain(events)
	if err := p.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	events, err = p.Play(context.Background(), buf, 0, 3000)
	if err != nil {
		t.Fatalf("Play() after finish error = %v", err)
	}
	drain(events)
}

func TestPlayer_DeviceUnavailable(t *testing.T) {
	t.Parallel()

	p := NewPlayer(&fakeDevice{openErr: errFake}, testOptions())

	_, err := p.Play(context.Background(), testBuffer(1, 100), 0, 100)
	if !errors.Is(err, ErrDeviceUnavailable) || !errors.Is(err, errFake) {
		t.Errorf("Play() error = %v, want ErrDeviceUnavailable wrapping errFake", err)
	}
	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
	if err := p.Wait(); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestPlayer_WaitWithoutPlay(t *testing.T) {
	t.Parallel()

	if err := NewPlayer(&fakeDevice{}, Options{}).Wait(); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
}

func TestPlayer_LaggingConsumerKeepsFinalEvent(t *testing.T) {
	t.Parallel()

	p := NewPlayer(&fakeDevice{out: &fakeOutput{}}, Options{ProgressInterval: time.Millisecond})
	buf := testBuffer(1, 1000) // 10-frame chunks, 100 of them

	events, err := p.Play(context.Background(), buf, 0, 1000)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if err := p.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	all := drain(events)
	if len(all) > eventBuffer {
		t.Errorf("got %d events, more than the channel holds", len(all))
	}
	if all[0].Kind != Started || all[len(all)-1].Kind != Completed {
		t.Errorf("events run %v .. %v", all[0].Kind, all[len(all)-1].Kind)
	}
}
