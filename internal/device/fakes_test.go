package device

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

type published struct {
	topic   string
	payload []byte
}

type fakeConn struct {
	mu           sync.Mutex
	published    []published
	subscribed   []string
	unsubscribed []string
	ends         int
	handler      func(topic string, payload []byte)

	publishErr   error
	subscribeErr error

	// gate, when set, holds every Publish until it is closed. Each held
	// publish is announced on entered.
	gate    chan struct{}
	entered chan struct{}
}

func (c *fakeConn) Publish(topic string, payload []byte) error {
	c.mu.Lock()
	gate, entered := c.gate, c.entered
	c.mu.Unlock()
	if gate != nil {
		entered <- struct{}{}
		<-gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{topic: topic, payload: payload})
	return nil
}

func (c *fakeConn) Subscribe(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscribeErr != nil {
		return c.subscribeErr
	}
	c.subscribed = append(c.subscribed, topic)
	return nil
}

func (c *fakeConn) Unsubscribe(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsubscribed = append(c.unsubscribed, topic)
	return nil
}

func (c *fakeConn) OnMessage(handler func(topic string, payload []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

func (c *fakeConn) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ends++
	return nil
}

func (c *fakeConn) setPublishErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishErr = err
}

func (c *fakeConn) holdPublishes() (release func(), entered <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = make(chan struct{})
	c.entered = make(chan struct{}, 1)
	return func() { close(c.gate) }, c.entered
}

// deliver simulates an inbound message.
func (c *fakeConn) deliver(topic string, payload []byte) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h != nil {
		h(topic, payload)
	}
}

func (c *fakeConn) publishes() []published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]published(nil), c.published...)
}

func (c *fakeConn) endCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ends
}

type fakeDialer struct {
	mu    sync.Mutex
	err   error
	conns []*fakeConn
	names []string
}

func (d *fakeDialer) Dial(_ context.Context, name string) (Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = append(d.names, name)
	if d.err != nil {
		return nil, d.err
	}
	c := &fakeConn{}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.names)
}

var errBrokerDown = errors.New("broker down")

// fixedRandom always mutates and always draws the largest value.
type fixedRandom struct{ f float64 }

func (r fixedRandom) IntN(n int) int   { return n - 1 }
func (r fixedRandom) Float64() float64 { return r.f }

type countingRecorder struct {
	mu          sync.Mutex
	readings    int
	failures    int
	transitions []Status
}

func (r *countingRecorder) ReadingPublished(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings++
}

func (r *countingRecorder) PublishFailed(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

func (r *countingRecorder) StatusChanged(_ Class, _, to Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, to)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
