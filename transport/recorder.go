// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ik5/wavepanel/audio"
)

// Recorder captures from a Device into a Buffer.
type Recorder struct {
	runner
	dev  Device
	opts Options
}

func NewRecorder(dev Device, opts Options) *Recorder {
	opts = opts.withDefaults()
	return &Recorder{runner: runner{log: opts.Logger}, dev: dev, opts: opts}
}

// Record starts capturing and returns at once. Capture runs until Stop, ctx
// is cancelled or the input reports io.EOF. The events follow the same rules
// as Player.Play; Total is always 0.
func (r *Recorder) Record(ctx context.Context) (<-chan Event, error) {
	sess, err := r.begin(Recording)
	if err != nil {
		return nil, err
	}

	chunk := r.opts.framesPerChunk(r.opts.SampleRate)
	in, err := r.dev.OpenInput(r.opts.SampleRate, r.opts.Channels, chunk)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
		r.abort(sess, err)
		return nil, err
	}

	r.log.Debug("transport: recording started",
		"channels", r.opts.Channels, "sample_rate", r.opts.SampleRate)

	events := newEvents()
	go r.run(ctx, sess, in, chunk, events)
	return events, nil
}

func (r *Recorder) run(ctx context.Context, sess *session, in InputStream, chunk int, events chan Event) {
	began := time.Now()
	channels := r.opts.Channels
	buf := make([]int16, chunk*channels)
	var pcm []int16
	final := Event{Kind: Failed}

	defer func() {
		if v := recover(); v != nil {
			final.Kind, final.Err = Failed, recovered(r.log, "record", v)
		}
		if err := in.Close(); err != nil {
			r.log.Warn("transport: closing input stream", "error", err)
		}

		pcm = pcm[:len(pcm)-len(pcm)%channels]
		sess.buf, _ = audio.FromInterleaved(pcm, channels, r.opts.SampleRate)
		final.Frame = sess.buf.Frames()
		final.Elapsed = time.Since(began)
		r.finish(sess, events, final)
	}()

	for {
		if r.stopRequested(ctx) {
			final.Kind = Stopped
			return
		}

		n, err := in.Read(buf)
		pcm = append(pcm, buf[:min(max(n, 0), len(buf))]...)
		if errors.Is(err, io.EOF) {
			final.Kind = Completed
			return
		}
		if err != nil {
			r.log.Error("transport: recording failed", "error", err, "frame", len(pcm)/channels)
			final.Err = fmt.Errorf("transport: read: %w", err)
			return
		}

		progress(events, Event{Kind: Progress, Frame: len(pcm) / channels, Elapsed: time.Since(began)})
	}
}

// Wait blocks until the latest Record call has finished. The buffer holds
// everything captured, even when the error is non-nil. Both are nil if
// Record was never called.
func (r *Recorder) Wait() (*audio.Buffer, error) {
	sess := r.wait()
	if sess == nil {
		return nil, nil
	}
	return sess.buf, sess.err
}
