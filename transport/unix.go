package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/asahi-tools/dcpipc"
	"github.com/asahi-tools/dcpipc/fragments"
	"go.uber.org/zap"
)

// Frames on a Unix socket have a fixed header:
//
//	0x00  'D' 'C' 'P' arrow
//	0x04  channel tag, byte order ('l' or 'B'), 2 bytes of padding
//	0x08  message identifier, 4 bytes
//	0x0c  slot offset, uint32
//	0x10  payload length, uint32
//	0x14  payload
//
// The offset and length are in the byte order of the sender, and
// replies are written in the order of their request.
const (
	frameHeaderLen = 0x14
	maxPayload     = 1 << 20
)

type frame struct {
	dir     dcpipc.Arrow
	ch      dcpipc.Channel
	id      string
	off     uint32
	payload []byte
	order   fragments.ByteOrder
}

func orderFlag(o fragments.ByteOrder) byte {
	if o.Name() == "big" {
		return 'B'
	}
	return 'l'
}

func writeFrame(w io.Writer, f frame) error {
	if len(f.id) != 4 {
		return fmt.Errorf("invalid message identifier %q", f.id)
	}
	if f.order == nil {
		f.order = fragments.LittleEndian
	}
	e := fragments.Encoder{Order: f.order}
	e.Write([]byte{'D', 'C', 'P', byte(f.dir)})
	e.Uint8(f.ch.Tag())
	e.Uint8(orderFlag(f.order))
	e.Pad(4)
	e.Write([]byte(f.id))
	e.Uint32(f.off)
	e.Uint32(uint32(len(f.payload)))
	e.Write(f.payload)
	_, err := w.Write(e.Out)
	return err
}

func readFrame(r io.Reader) (frame, error) {
	var hdr [frameHeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return frame{}, err
	}
	d := fragments.Decoder{Order: fragments.LittleEndian, In: hdr[:]}
	magic, _ := d.Read(4)
	if string(magic[:3]) != "DCP" {
		return frame{}, fmt.Errorf("bad frame magic %q", magic[:3])
	}
	dir, ok := dcpipc.ParseArrow(string(magic[3:]))
	if !ok {
		return frame{}, fmt.Errorf("bad frame direction %q", magic[3])
	}
	tag, _ := d.Uint8()
	ch, ok := dcpipc.ParseChannel(string(rune(tag)))
	if !ok {
		return frame{}, fmt.Errorf("unknown channel tag %q", tag)
	}
	flag, _ := d.Uint8()
	switch flag {
	case 'l':
		d.Order = fragments.LittleEndian
	case 'B':
		d.Order = fragments.BigEndian
	default:
		return frame{}, fmt.Errorf("unknown byte order flag %q", flag)
	}
	d.Pad(4)
	id, _ := d.Read(4)
	off, _ := d.Uint32()
	n, _ := d.Uint32()
	if n > maxPayload {
		return frame{}, fmt.Errorf("frame payload of %d bytes exceeds limit", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return frame{}, err
	}
	return frame{dir, ch, string(id), off, payload, d.Order}, nil
}

// Unix is a Transport that relays requests over a Unix domain socket,
// to a coprocessor proxy or to a peer running [Serve].
type Unix struct {
	conn net.Conn
	buf  *bufio.Reader
	// Order is the byte order of frame headers sent by Send. It is
	// the CPU's native order unless changed.
	Order fragments.ByteOrder

	mu sync.Mutex
}

// DialUnix connects to the relay at the given path.
func DialUnix(ctx context.Context, path string) (*Unix, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, err
	}
	return newUnix(conn), nil
}

func newUnix(conn net.Conn) *Unix {
	return &Unix{
		conn:  conn,
		buf:   bufio.NewReader(conn),
		Order: fragments.NativeEndian,
	}
}

// Close closes the underlying connection.
func (u *Unix) Close() error {
	return u.conn.Close()
}

// Send implements Transport. Only one request is in flight on the
// connection at a time, so every request occupies the channel's
// first slot.
func (u *Unix) Send(ctx context.Context, ch dcpipc.Channel, id string, req []byte) ([]byte, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := u.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	defer u.conn.SetDeadline(time.Time{})

	const off = 0
	if err := writeFrame(u.conn, frame{dcpipc.Forward, ch, id, off, req, u.Order}); err != nil {
		u.conn.Close()
		return nil, err
	}
	resp, err := readFrame(u.buf)
	if err != nil {
		u.conn.Close()
		return nil, err
	}
	if resp.dir != dcpipc.Backward || resp.ch != ch || resp.off != off || resp.id != id {
		u.conn.Close()
		return nil, fmt.Errorf("reply %s%c[%#x] %s does not match request %s%c[%#x] %s",
			resp.dir, resp.ch.Tag(), resp.off, resp.id, dcpipc.Forward, ch.Tag(), off, id)
	}
	return resp.payload, nil
}

// Serve accepts connections on l, and answers the requests on each
// with t, until ctx is canceled or l fails.
func Serve(ctx context.Context, l net.Listener, t Transport) error {
	go func() {
		<-ctx.Done()
		l.Close()
	}()
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			if err := serveConn(ctx, conn, t); err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
				dcpipc.Logger().Warn("relay connection failed", zap.Error(err))
			}
		}()
	}
}

func serveConn(ctx context.Context, conn net.Conn, t Transport) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	buf := bufio.NewReader(conn)
	for {
		req, err := readFrame(buf)
		if err != nil {
			return err
		}
		if req.dir != dcpipc.Forward {
			return fmt.Errorf("unexpected reply frame for %s", req.id)
		}
		reply, err := t.Send(ctx, req.ch, req.id, req.payload)
		if err != nil {
			return fmt.Errorf("serving %s: %w", req.id, err)
		}
		if err := writeFrame(conn, frame{dcpipc.Backward, req.ch, req.id, req.off, reply, req.order}); err != nil {
			return err
		}
	}
}
