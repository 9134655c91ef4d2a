package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net"
	"os"
	"os/signal"
	"regexp"
	"slices"
	"syscall"

	"github.com/asahi-tools/dcpipc"
	"github.com/asahi-tools/dcpipc/catalog"
	"github.com/asahi-tools/dcpipc/fragments"
	"github.com/asahi-tools/dcpipc/transport"
	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/mds/slice"
	"github.com/kr/pretty"
	"go.uber.org/zap"
)

var globalArgs struct {
	Verbose bool `flag:"verbose,Log decoding problems and relay errors to stderr"`
}

func main() {
	root := &command.C{
		Name:     "dcptrace",
		Usage:    "command args...",
		Help:     "Inspect IPC traffic between the host and the display coprocessor.",
		SetFlags: command.Flags(flax.MustBind, &globalArgs),
		Init:     setupLogging,
		Commands: []*command.C{
			{
				Name:  "trace",
				Usage: "trace capture.toml...",
				Help: `Render captured exchanges as a call trace.

Each capture file holds a list of [[exchange]] tables, in the order
the messages were observed:

  [[exchange]]
  dir = ">"
  channel = "CB"
  offset = 0x40
  message = "D120"
  request = "..."
  reply = "..."

An entry with no reply leaves its exchange open, and an entry with
only a reply closes the exchange open at its channel and offset.
Exchanges opened while others are open are shown nested beneath
them.`,
				Run: command.Adapt(runTrace),
			},
			{
				Name:  "list",
				Usage: "list [regexp]",
				Help:  "List the known messages, optionally only those whose identifier, service or name matches regexp.",
				Run:   runList,
			},
			{
				Name:  "layout",
				Usage: "layout message|ctype",
				Help: `Show the request and reply layouts of a message.

If the argument is not a known message, it is looked up as a C type
name, such as uint32_t or FourCC, and its wire type and size are shown.`,
				Run:   command.Adapt(runLayout),
			},
			{
				Name:  "decode",
				Usage: "decode message in|out hex",
				Help: `Decode one side of a message from hex.

Linked fields of a reply take their lengths from the request, which
can be given with --request.`,
				SetFlags: command.Flags(flax.MustBind, &decodeArgs),
				Run:      command.Adapt(runDecode),
			},
			{
				Name:  "relay",
				Usage: "relay listen-socket upstream-socket",
				Help: `Relay requests between Unix sockets, tracing each exchange.

Clients connecting to listen-socket have their requests forwarded to
upstream-socket, and the replies sent back. Frame headers sent
upstream use the byte order given by --order.`,
				SetFlags: command.Flags(flax.MustBind, &relayArgs),
				Run:      command.Adapt(runRelay),
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	env := root.NewEnv(nil).SetContext(ctx)
	command.RunOrFail(env, os.Args[1:])
}

func setupLogging(env *command.Env) error {
	if !globalArgs.Verbose {
		return nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	dcpipc.SetLogger(l)
	return nil
}

func newTracker() *dcpipc.Tracker {
	return dcpipc.NewTracker(&dcpipc.Formatter{
		Registry: catalog.Registry(),
		Out:      os.Stdout,
	})
}

func runTrace(env *command.Env, files ...string) error {
	if len(files) == 0 {
		return env.Usagef("no capture files given")
	}
	t := newTracker()
	for _, path := range files {
		evs, err := loadCapture(path)
		if err != nil {
			return err
		}
		if err := replay(t, evs); err != nil {
			return fmt.Errorf("rendering %s: %w", path, err)
		}
	}
	for _, x := range t.Open() {
		fmt.Printf("!! no reply to %s\n", x)
	}
	return nil
}

func replay(t *dcpipc.Tracker, evs []event) error {
	for _, ev := range evs {
		if ev.Open != nil {
			if err := t.Record(ev.Open, ev.Reply); err != nil {
				return err
			}
			continue
		}
		if _, err := t.Ack(ev.Channel, ev.Offset, ev.Reply); err != nil {
			return err
		}
	}
	return nil
}

func runList(env *command.Env) error {
	args := growTo(env.Args, 1)
	re, err := regexp.Compile(args[0])
	if err != nil {
		return err
	}
	entries := slices.Collect(slice.Select(catalog.Registry().All(), func(e dcpipc.Entry) bool {
		return re.MatchString(e.ID) || re.MatchString(e.Service) || re.MatchString(e.Method.Name)
	}))

	var out indenter
	prev := ""
	for _, svc := range catalog.Services() {
		for _, e := range entries {
			if e.Service != svc.Name {
				continue
			}
			if e.Service != prev {
				out.indent(0)
				out.v(e.Service)
				out.indent(1)
				prev = e.Service
			}
			out.f("%s %s", e.ID, e.Method)
		}
	}
	return nil
}

func runLayout(env *command.Env, id string) error {
	return writeLayout(os.Stdout, id)
}

// writeLayout writes the layouts of the message id to w, or the wire
// type of the C type named id if there is no such message.
func writeLayout(w io.Writer, id string) error {
	e, ok := catalog.Registry().Lookup(id)
	if !ok {
		if t, ok := dcpipc.LookupType(id); ok {
			_, err := fmt.Fprintf(w, "%s: %s (%#x bytes)\n", id, t, t.Size())
			return err
		}
		return fmt.Errorf("unknown message or type %q", id)
	}
	m := e.Method
	fmt.Fprintf(w, "%s %s::%s\n", e.ID, e.Service, m)
	fmt.Fprintf(w, "request (%#x bytes):\n", m.Request.Size)
	if err := m.Request.WriteTable(w, "  "); err != nil {
		return err
	}
	fmt.Fprintf(w, "reply (%#x bytes):\n", m.Reply.Size)
	return m.Reply.WriteTable(w, "  ")
}

var decodeArgs struct {
	Request string `flag:"request,Hex request that the decoded reply answers"`
}

func runDecode(env *command.Env, id, side, data string) error {
	m, err := catalog.Registry().Method(id)
	if err != nil {
		return err
	}
	bs, err := parseHex(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", side, err)
	}

	var vals dcpipc.Args
	switch side {
	case "in":
		vals, err = m.DecodeRequest(bs)
	case "out":
		var in dcpipc.Args
		if decodeArgs.Request != "" {
			req, err := parseHex(decodeArgs.Request)
			if err != nil {
				return fmt.Errorf("parsing request: %w", err)
			}
			if in, err = m.DecodeRequest(req); err != nil {
				return fmt.Errorf("decoding request: %w", err)
			}
		}
		vals, err = m.DecodeReply(bs, in)
	default:
		return env.Usagef("side must be in or out, not %q", side)
	}
	if err != nil {
		return err
	}

	for _, k := range slices.Sorted(maps.Keys(vals)) {
		fmt.Printf("%s: %# v\n", k, pretty.Formatter(vals[k]))
	}
	return nil
}

var relayArgs struct {
	Order string `flag:"order,default=native,Byte order of frame headers sent upstream: little, big or native"`
}

func runRelay(env *command.Env, listen, upstream string) error {
	order, ok := fragments.ParseByteOrder(relayArgs.Order)
	if !ok {
		return env.Usagef("unknown byte order %q", relayArgs.Order)
	}
	ctx := env.Context()
	up, err := transport.DialUnix(ctx, upstream)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", upstream, err)
	}
	defer up.Close()
	up.Order = order

	l, err := net.Listen("unix", listen)
	if err != nil {
		return err
	}
	defer l.Close()

	tap := transport.NewTap(up, catalog.Registry(), newTracker())
	fmt.Printf("Relaying %s to %s\n", listen, upstream)
	return transport.Serve(ctx, l, tap)
}
