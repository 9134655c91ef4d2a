// Package transport delivers encoded IPC requests to a coprocessor,
// or to something standing in for one.
package transport

import (
	"context"
	"fmt"

	"github.com/asahi-tools/dcpipc"
	"go.uber.org/zap"
)

// Transport delivers requests and returns their replies. It is
// responsible for choosing the slot each request occupies within its
// channel.
//
// Transports are assumed reliable and order-preserving per channel.
type Transport interface {
	Send(ctx context.Context, ch dcpipc.Channel, id string, req []byte) ([]byte, error)
}

// A Client makes outbound calls on one channel.
type Client struct {
	reg *dcpipc.Registry
	t   Transport
	ch  dcpipc.Channel
}

// NewClient returns a Client that looks up methods in reg, and sends
// them over t on channel ch.
func NewClient(reg *dcpipc.Registry, t Transport, ch dcpipc.Channel) *Client {
	return &Client{reg, t, ch}
}

// Call invokes the message id with args. An unknown id is an error.
func (c *Client) Call(ctx context.Context, id string, args dcpipc.Args) (*dcpipc.Result, error) {
	e, ok := c.reg.Lookup(id)
	if !ok {
		return nil, dcpipc.ContractError{Reason: fmt.Sprintf("unknown message %s", id)}
	}
	ctx = dcpipc.WithLogger(ctx, dcpipc.Logger().With(
		zap.String("service", e.Service),
		zap.String("msg", id),
		zap.Stringer("channel", c.ch)))
	send := func(ctx context.Context, req []byte) ([]byte, error) {
		return c.t.Send(ctx, c.ch, id, req)
	}
	return e.Method.Call(ctx, send, args)
}

// CallArgs is like Call, but takes positional arguments.
func (c *Client) CallArgs(ctx context.Context, id string, vals ...any) (*dcpipc.Result, error) {
	m, err := c.reg.Method(id)
	if err != nil {
		return nil, err
	}
	args, err := m.Args(vals...)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, id, args)
}
