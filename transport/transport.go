// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/wavepanel/audio"
)

const (
	DefaultProgressInterval = 75 * time.Millisecond

	// eventBuffer is the capacity of every event channel. One slot is always
	// left free for the final event.
	eventBuffer = 16
)

// OutputStream is a blocking playback stream. Write returns once samples are
// queued on the device.
type OutputStream interface {
	Write(samples []int16) error
	Close() error
}

// InputStream is a blocking capture stream. Read fills samples with
// interleaved frames and returns how many samples it wrote; io.EOF means the
// device has nothing more to give.
type InputStream interface {
	Read(samples []int16) (int, error)
	Close() error
}

// Device opens streams of interleaved 16-bit samples.
type Device interface {
	OpenOutput(sampleRate, channels, framesPerBuffer int) (OutputStream, error)
	OpenInput(sampleRate, channels, framesPerBuffer int) (InputStream, error)
}

type State int32

const (
	Idle State = iota
	Playing
	Recording
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Recording:
		return "recording"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type EventKind int

const (
	Started EventKind = iota
	Progress
	// Stopped follows Stop or a cancelled context.
	Stopped
	// Completed means the buffer or the input ran out.
	Completed
	Failed
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Progress:
		return "progress"
	case Stopped:
		return "stopped"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event reports on a running operation. Frame counts frames handled so far;
// Total is the length of the played range and 0 while recording. Err is set
// on Failed events only.
//
// Events arrive on the operation's goroutine. Consumers that touch UI state
// must hand them to whichever goroutine owns that state.
type Event struct {
	Kind    EventKind
	Frame   int
	Total   int
	Elapsed time.Duration
	Err     error
}

type Options struct {
	// SampleRate and Channels configure recording. Playback follows the
	// buffer it is given.
	SampleRate int
	Channels   int
	// ProgressInterval sets the chunk length and with it how often Progress
	// events are sent.
	ProgressInterval time.Duration
	Logger           *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		SampleRate:       audio.CDRate,
		Channels:         1,
		ProgressInterval: DefaultProgressInterval,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.SampleRate <= 0 {
		o.SampleRate = def.SampleRate
	}
	if o.Channels <= 0 {
		o.Channels = def.Channels
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = def.ProgressInterval
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

func (o Options) framesPerChunk(sampleRate int) int {
	n := int64(sampleRate) * int64(o.ProgressInterval) / int64(time.Second)
	return max(int(n), 1)
}

// session is one Play or Record call.
type session struct {
	done chan struct{}
	err  error
	buf  *audio.Buffer
}

// runner holds the state shared by Player and Recorder: one operation at a
// time, a stop flag read once per chunk, and the latest session for Wait.
type runner struct {
	log   *slog.Logger
	state atomic.Int32
	stop  atomic.Bool

	mu  sync.Mutex
	cur *session
}

func (r *runner) begin(s State) (*session, error) {
	if !r.state.CompareAndSwap(int32(Idle), int32(s)) {
		return nil, fmt.Errorf("%w: %s", ErrBusy, State(r.state.Load()))
	}
	r.stop.Store(false)

	sess := &session{done: make(chan struct{})}
	r.mu.Lock()
	r.cur = sess
	r.mu.Unlock()
	return sess, nil
}

// abort undoes begin when the device could not be opened.
func (r *runner) abort(sess *session, err error) {
	sess.err = err
	r.state.Store(int32(Idle))
	close(sess.done)
}

// finish publishes the final event and releases the runner.
func (r *runner) finish(sess *session, events chan Event, final Event) {
	if final.Kind == Failed {
		sess.err = final.Err
	}
	r.state.Store(int32(Idle))
	events <- final
	close(events)
	close(sess.done)
}

func (r *runner) wait() *session {
	r.mu.Lock()
	sess := r.cur
	r.mu.Unlock()

	if sess == nil {
		return nil
	}
	<-sess.done
	return sess
}

// State reports what the runner is doing right now.
func (r *runner) State() State { return State(r.state.Load()) }

// Stop asks the running operation to end after its current chunk. It does
// not wait; use Wait for that.
func (r *runner) Stop() { r.stop.Store(true) }

func (r *runner) stopRequested(ctx context.Context) bool {
	return r.stop.Load() || ctx.Err() != nil
}

func newEvents() chan Event {
	events := make(chan Event, eventBuffer)
	events <- Event{Kind: Started}
	return events
}

// progress never blocks: a lagging consumer loses Progress events, never the
// final one.
func progress(events chan Event, ev Event) {
	if len(events) >= cap(events)-1 {
		return
	}
	select {
	case events <- ev:
	default:
	}
}

func recovered(log *slog.Logger, op string, v any) error {
	log.Error("transport: "+op+" goroutine panicked", "panic", v)
	return fmt.Errorf("%w: %v", ErrPanicked, v)
}
