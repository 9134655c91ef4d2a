// Package dcptest provides a helper to run a coprocessor stand-in on
// a Unix socket in tests.
package dcptest

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/asahi-tools/dcpipc"
	"github.com/asahi-tools/dcpipc/transport"
)

// Coprocessor is a stand-in for the display coprocessor, that serves
// requests with the handlers registered on its embedded Loopback.
type Coprocessor struct {
	*transport.Loopback

	sock    string
	lw      *logWriter
	cancel  context.CancelFunc
	stopped chan struct{}
}

// New starts a Coprocessor dedicated to the calling test, that
// serves the methods of reg. It stops when the test completes.
//
// If logTrace is true, the returned Coprocessor logs a trace of every
// exchange using t.Log.
func New(t *testing.T, reg *dcpipc.Registry, logTrace bool) *Coprocessor {
	ret := &Coprocessor{
		Loopback: transport.NewLoopback(reg),
		sock:     filepath.Join(t.TempDir(), "dcp.sock"),
		stopped:  make(chan struct{}),
	}
	if logTrace {
		ret.lw = &logWriter{t: t}
		ret.Tracker = dcpipc.NewTracker(&dcpipc.Formatter{Registry: reg, Out: ret.lw})
	}

	l, err := net.Listen("unix", ret.sock)
	if err != nil {
		t.Fatalf("listening on coprocessor socket: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ret.cancel = cancel
	go func() {
		defer close(ret.stopped)
		if err := transport.Serve(ctx, l, ret.Loopback); err != nil {
			panic(fmt.Errorf("coprocessor stopped prematurely: %w", err))
		}
	}()
	t.Cleanup(ret.close)

	return ret
}

func (c *Coprocessor) close() {
	c.cancel()
	select {
	case <-c.stopped:
	case <-time.After(10 * time.Second):
		log.Print("timed out waiting for coprocessor to stop")
	}
	if c.lw != nil {
		c.lw.Flush()
	}
}

// Socket returns the path to the coprocessor's unix socket.
func (c *Coprocessor) Socket() string {
	return c.sock
}

// MustDial returns a connection to the coprocessor, which is closed
// when the test completes. It causes an immediate test failure with
// t.Fatal if it is unable to connect.
func (c *Coprocessor) MustDial(t *testing.T) *transport.Unix {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ret, err := transport.DialUnix(ctx, c.sock)
	if err != nil {
		t.Fatalf("connecting to test coprocessor: %v", err)
	}
	t.Cleanup(func() { ret.Close() })
	return ret
}

// logWriter logs each complete line written to it.
type logWriter struct {
	t *testing.T

	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *logWriter) Write(bs []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Write(bs)
	for {
		i := bytes.IndexByte(l.buf.Bytes(), '\n')
		if i == -1 {
			return len(bs), nil
		}
		line := l.buf.Next(i + 1)
		l.t.Log(string(line[:i]))
	}
}

func (l *logWriter) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buf.Len() > 0 {
		l.t.Log(l.buf.String())
		l.buf.Reset()
	}
}
