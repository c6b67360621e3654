// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/ik5/wavepanel/audio"
)

// Player plays buffers on a Device, one at a time.
type Player struct {
	runner
	dev  Device
	opts Options
}

func NewPlayer(dev Device, opts Options) *Player {
	opts = opts.withDefaults()
	return &Player{runner: runner{log: opts.Logger}, dev: dev, opts: opts}
}

// Play starts playing frames [start, end) of buf and returns at once. The
// range is clamped to the buffer and copied, so buf may be edited while
// playback runs.
//
// Invalid input, a busy player and an unavailable device are reported here.
// Anything that goes wrong later arrives as a Failed event and from Wait.
// The channel is closed after the final Stopped, Completed or Failed event.
func (p *Player) Play(ctx context.Context, buf *audio.Buffer, start, end int) (<-chan Event, error) {
	clip, err := buf.Copy(start, end)
	if err != nil {
		return nil, fmt.Errorf("transport: play: %w", err)
	}

	sess, err := p.begin(Playing)
	if err != nil {
		return nil, err
	}

	rate := clip.SampleRate
	if rate <= 0 {
		rate = audio.CDRate
	}
	chunk := p.opts.framesPerChunk(rate)

	out, err := p.dev.OpenOutput(rate, clip.Channels(), chunk)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
		p.abort(sess, err)
		return nil, err
	}

	p.log.Debug("transport: playback started",
		"frames", clip.Frames(), "channels", clip.Channels(), "sample_rate", rate)

	events := newEvents()
	go p.run(ctx, sess, out, clip, chunk, events)
	return events, nil
}

func (p *Player) run(ctx context.Context, sess *session, out OutputStream, clip *audio.Buffer, chunk int, events chan Event) {
	began := time.Now()
	total := clip.Frames()
	final := Event{Kind: Failed, Total: total}

	defer func() {
		if v := recover(); v != nil {
			final.Kind, final.Err = Failed, recovered(p.log, "playback", v)
		}
		if err := out.Close(); err != nil {
			p.log.Warn("transport: closing output stream", "error", err)
		}
		final.Elapsed = time.Since(began)
		p.finish(sess, events, final)
	}()

	frame := 0
	for frame < total {
		if p.stopRequested(ctx) {
			final.Kind, final.Frame = Stopped, frame
			return
		}

		next := min(frame+chunk, total)
		if err := out.Write(clip.Interleave(frame, next)); err != nil {
			p.log.Error("transport: playback failed", "error", err, "frame", frame)
			final.Frame, final.Err = frame, fmt.Errorf("transport: write: %w", err)
			return
		}
		frame = next

		progress(events, Event{Kind: Progress, Frame: frame, Total: total, Elapsed: time.Since(began)})
	}

	final.Kind, final.Frame = Completed, frame
}

// Wait blocks until the latest Play call has finished and returns its
// error. It returns nil at once if Play was never called.
func (p *Player) Wait() error {
	sess := p.wait()
	if sess == nil {
		return nil
	}
	return sess.err
}
