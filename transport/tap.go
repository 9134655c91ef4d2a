package transport

import (
	"context"
	"sync"

	"github.com/asahi-tools/dcpipc"
)

// slots hands out slot offsets within each channel. A request
// occupies its slot until it is released, and requests made while it
// is outstanding are placed after it.
type slots struct {
	mu   sync.Mutex
	next map[dcpipc.Channel]uint32
}

// take reserves size bytes on ch, and returns their offset and a
// function that releases them. Reservations must be released in
// reverse order.
func (s *slots) take(ch dcpipc.Channel, size int) (uint32, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next == nil {
		s.next = map[dcpipc.Channel]uint32{}
	}
	off := s.next[ch]
	s.next[ch] = off + uint32(size)
	return off, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.next[ch] = off
	}
}

// Tap is a Transport that forwards every request to another
// Transport, and reports each exchange to a Tracker on the way.
type Tap struct {
	t       Transport
	reg     *dcpipc.Registry
	tracker *dcpipc.Tracker
	slots   slots
}

// NewTap returns a Tap that forwards to t, and reports to tracker.
// Declared reply sizes are taken from reg.
func NewTap(t Transport, reg *dcpipc.Registry, tracker *dcpipc.Tracker) *Tap {
	return &Tap{t: t, reg: reg, tracker: tracker}
}

// Send implements Transport. Messages missing from the registry are
// forwarded all the same.
func (t *Tap) Send(ctx context.Context, ch dcpipc.Channel, id string, req []byte) ([]byte, error) {
	outSize := 0
	if e, ok := t.reg.Lookup(id); ok {
		outSize = e.Method.Reply.Size
	}
	off, release := t.slots.take(ch, max(len(req), outSize))
	defer release()

	x := &dcpipc.Exchange{
		Dir:     dcpipc.Forward,
		Channel: ch,
		Offset:  off,
		ID:      id,
		InSize:  len(req),
		OutSize: outSize,
		Request: req,
	}
	if err := t.tracker.Request(x); err != nil {
		return nil, err
	}
	reply, err := t.t.Send(ctx, ch, id, req)
	if err != nil {
		return nil, err
	}
	if _, err := t.tracker.Ack(ch, off, reply); err != nil {
		return nil, err
	}
	return reply, nil
}
