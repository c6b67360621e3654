// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"errors"
	"io"
	"sync"
)

var errFake = errors.New("fake device error")

// fakeDevice hands out the streams it was built with and records how they
// were opened.
type fakeDevice struct {
	openErr error
	out     *fakeOutput
	in      *fakeInput

	mu       sync.Mutex
	rate     int
	channels int
	frames   int
}

func (d *fakeDevice) opened(rate, channels, frames int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rate, d.channels, d.frames = rate, channels, frames
}

func (d *fakeDevice) OpenOutput(rate, channels, frames int) (OutputStream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opened(rate, channels, frames)
	return d.out, nil
}

func (d *fakeDevice) OpenInput(rate, channels, frames int) (InputStream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opened(rate, channels, frames)
	return d.in, nil
}

// fakeOutput collects everything written. A non-nil gate makes every Write
// wait for a token or for the gate to close.
type fakeOutput struct {
	gate    chan struct{}
	failAt  int // fail the Nth write, 1-based; 0 never fails
	panicAt int

	mu      sync.Mutex
	writes  int
	written []int16
	closed  bool
}

func (o *fakeOutput) Write(samples []int16) error {
	if o.gate != nil {
		<-o.gate
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.writes++
	if o.writes == o.panicAt {
		panic("device exploded")
	}
	if o.writes == o.failAt {
		return errFake
	}
	o.written = append(o.written, samples...)
	return nil
}

func (o *fakeOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}

func (o *fakeOutput) snapshot() ([]int16, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int16(nil), o.written...), o.closed
}

// fakeInput yields value for every sample until limit samples were read,
// then io.EOF. limit 0 means endless.
type fakeInput struct {
	gate   chan struct{}
	value  int16
	limit  int
	failAt int

	mu     sync.Mutex
	reads  int
	served int
	closed bool
}

func (i *fakeInput) Read(samples []int16) (int, error) {
	if i.gate != nil {
		<-i.gate
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.reads++
	if i.reads == i.failAt {
		return 0, errFake
	}

	n := len(samples)
	if i.limit > 0 {
		n = min(n, i.limit-i.served)
	}
	for k := range n {
		samples[k] = i.value
	}
	i.served += n

	if i.limit > 0 && i.served >= i.limit {
		return n, io.EOF
	}
	return n, nil
}

func (i *fakeInput) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	return nil
}

func (i *fakeInput) isClosed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}

// drain reads events until the channel closes.
func drain(events <-chan Event) []Event {
	var all []Event
	for ev := range events {
		all = append(all, ev)
	}
	return all
}
