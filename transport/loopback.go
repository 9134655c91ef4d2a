package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/asahi-tools/dcpipc"
)

// ErrNoHandler is returned by [Loopback.Send] for a message with no
// registered handler.
var ErrNoHandler = errors.New("no handler for message")

// Loopback is a Transport that serves requests in-process, by
// running the registered [dcpipc.Handler] for each message.
//
// Handlers may make further calls through the same Loopback. Nested
// requests on a channel occupy successive slots, as they would in the
// coprocessor's shared buffers.
type Loopback struct {
	reg *dcpipc.Registry
	// Tracker, if set, observes every exchange.
	Tracker *dcpipc.Tracker

	slots slots

	mu       sync.Mutex
	handlers map[string]dcpipc.Handler
}

// NewLoopback returns a Loopback with no handlers, that looks up
// methods in reg.
func NewLoopback(reg *dcpipc.Registry) *Loopback {
	return &Loopback{
		reg:      reg,
		handlers: map[string]dcpipc.Handler{},
	}
}

// Handle registers h as the handler for the message id.
func (l *Loopback) Handle(id string, h dcpipc.Handler) error {
	if _, err := l.reg.Method(id); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[id] = h
	return nil
}

// Send implements Transport.
func (l *Loopback) Send(ctx context.Context, ch dcpipc.Channel, id string, req []byte) ([]byte, error) {
	m, err := l.reg.Method(id)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	h, ok := l.handlers[id]
	l.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNoHandler, id)
	}
	off, release := l.slots.take(ch, max(m.Request.Size, m.Reply.Size))
	defer release()

	x := &dcpipc.Exchange{
		Dir:     dcpipc.Forward,
		Channel: ch,
		Offset:  off,
		ID:      id,
		InSize:  len(req),
		OutSize: m.Reply.Size,
		Request: req,
	}
	if l.Tracker != nil {
		if err := l.Tracker.Request(x); err != nil {
			return nil, err
		}
	}

	reply, err := m.Callback(ctx, h, req)
	if err != nil {
		return nil, err
	}

	if l.Tracker != nil {
		if _, err := l.Tracker.Ack(ch, off, reply); err != nil {
			return nil, err
		}
	}
	return reply, nil
}
