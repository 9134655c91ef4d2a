package dcpipc

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/asahi-tools/dcpipc/internal/hexdump"
	"github.com/creachadair/mds/mapset"
	"go.uber.org/zap"
)

// A Formatter renders exchanges as text.
//
// Rendering is tolerant: a message that is unknown, has the wrong
// size or does not decode is rendered as a diagnostic instead of
// failing. Only write errors and misuse are reported as errors.
type Formatter struct {
	Registry *Registry
	Out      io.Writer
}

// Request renders the request of x, with every line prefixed by
// indent.
func (f *Formatter) Request(x *Exchange, indent string) error {
	hdr := x.header(x.Dir)
	e, ok := f.Registry.Lookup(x.ID)
	if !ok {
		_, err := fmt.Fprintf(f.Out, "%s%s %#x/%#x\n", indent, hdr, x.InSize, x.OutSize)
		return err
	}
	m, name := e.Method, e.Service+"::"+e.Method.Name

	in, err := m.DecodeRequest(x.Request)
	if err != nil {
		return f.diagnose(indent, hdr, name, m.Request, x.Request, err)
	}
	if _, err := fmt.Fprintf(f.Out, "%s%s %s(%s)\n", indent, hdr, name, m.formatArgs(in, nil)); err != nil {
		return err
	}
	return m.writeLongArgs(f.Out, indent, in, nil, nil)
}

// Reply renders the reply of x, which must be complete, with every
// line prefixed by indent. If the reply decodes, Reply records its
// return value in x.Ret.
func (f *Formatter) Reply(x *Exchange, indent string) error {
	if !x.Complete {
		return contractErr("", "exchange %s has no reply", x)
	}
	hdr := x.header(x.ReplyDir())
	e, ok := f.Registry.Lookup(x.ID)
	if !ok {
		_, err := fmt.Fprintf(f.Out, "%s%s %#x/%#x\n", indent, hdr, x.InSize, x.OutSize)
		return err
	}
	m, name := e.Method, e.Service+"::"+e.Method.Name

	// The request has already been rendered, along with any problem
	// it had. Without its values, linked reply fields decode empty.
	in, _ := m.DecodeRequest(x.Request)
	out, err := m.DecodeReply(x.Reply, in)
	if err != nil {
		return f.diagnose(indent, hdr, name, m.Reply, x.Reply, err)
	}

	var ret string
	if m.Ret != nil {
		x.Ret = out[retName]
		ret = " = " + formatValue(m.Ret, x.Ret)
	}
	if _, err := fmt.Fprintf(f.Out, "%s%s %s(%s)%s\n", indent, hdr, name, m.formatArgs(in, out), ret); err != nil {
		return err
	}
	shown := mapset.New(slices.Collect(maps.Keys(in))...)
	return m.writeLongArgs(f.Out, indent, in, out, shown)
}

// diagnose renders a message that could not be decoded: the reason,
// the layout it was expected to have, and its raw bytes.
func (f *Formatter) diagnose(indent, hdr, name string, l Layout, data []byte, cause error) error {
	Logger().Warn("cannot decode message",
		zap.String("message", hdr),
		zap.String("method", name),
		zap.Error(cause))

	reason := cause.Error()
	if sm := (SizeMismatchError{}); errors.As(cause, &sm) {
		reason = fmt.Sprintf("Expected %#x bytes, got %#x bytes (%s)", sm.Want, sm.Got, sm.Side)
	}
	if _, err := fmt.Fprintf(f.Out, "%s%s %s !! %s\n", indent, hdr, name, reason); err != nil {
		return err
	}
	if err := l.WriteTable(f.Out, indent+"  "); err != nil {
		return err
	}
	return hexdump.Dump(f.Out, data, indent+"  ")
}

// A Tracker pairs requests with their replies as they are observed,
// and renders each through its Formatter. Exchanges that open while
// others are outstanding are rendered indented beneath them.
//
// A Tracker is safe for concurrent use.
type Tracker struct {
	f *Formatter

	mu   sync.Mutex
	open map[slot]tracked
}

type slot struct {
	ch  Channel
	off uint32
}

type tracked struct {
	x      *Exchange
	indent string
}

// NewTracker returns a Tracker that renders through f.
func NewTracker(f *Formatter) *Tracker {
	return &Tracker{f: f, open: map[slot]tracked{}}
}

// Request opens x, and renders its request.
func (t *Tracker) Request(x *Exchange) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := slot{x.Channel, x.Offset}
	if prev, ok := t.open[k]; ok {
		Logger().Warn("request replaces open exchange",
			zap.Stringer("previous", prev.x),
			zap.Stringer("exchange", x))
		delete(t.open, k)
	}
	indent := strings.Repeat("  ", len(t.open))
	t.open[k] = tracked{x, indent}
	return t.f.Request(x, indent)
}

// Ack closes the open exchange at offset off of channel ch with the
// reply bytes reply, renders its reply, and returns it. A reply that
// matches no open exchange is reported and otherwise ignored, and
// yields a nil Exchange.
func (t *Tracker) Ack(ch Channel, off uint32, reply []byte) (*Exchange, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := slot{ch, off}
	tr, ok := t.open[k]
	if !ok {
		Logger().Warn("reply matches no open exchange",
			zap.Stringer("channel", ch),
			zap.Uint32("offset", off),
			zap.Int("size", len(reply)))
		_, err := fmt.Fprintf(t.f.Out, "!! stray reply on %s[%#x] (%#x bytes)\n", ch, off, len(reply))
		return nil, err
	}
	delete(t.open, k)
	if err := tr.x.Ack(reply); err != nil {
		return nil, err
	}
	return tr.x, t.f.Reply(tr.x, tr.indent)
}

// Record renders an exchange captured as a whole: its request, then
// its reply if it has one. x must not be complete.
func (t *Tracker) Record(x *Exchange, reply []byte) error {
	if err := t.Request(x); err != nil {
		return err
	}
	if reply == nil {
		return nil
	}
	_, err := t.Ack(x.Channel, x.Offset, reply)
	return err
}

// Open returns the exchanges still waiting for a reply, ordered by
// channel and offset.
func (t *Tracker) Open() []*Exchange {
	t.mu.Lock()
	defer t.mu.Unlock()
	ret := make([]*Exchange, 0, len(t.open))
	for _, tr := range t.open {
		ret = append(ret, tr.x)
	}
	slices.SortFunc(ret, func(a, b *Exchange) int {
		if c := cmp.Compare(a.Channel, b.Channel); c != 0 {
			return c
		}
		return cmp.Compare(a.Offset, b.Offset)
	})
	return ret
}
