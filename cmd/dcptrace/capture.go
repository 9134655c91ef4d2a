package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/asahi-tools/dcpipc"
)

// A capture file lists exchanges in the order they were observed.
//
// An entry with a request opens an exchange, and also closes it if it
// carries a reply. An entry with only a reply closes the exchange
// open at its channel and offset, which lets a capture show calls
// nested inside other calls.
type captureFile struct {
	Exchange []captureEntry `toml:"exchange"`
}

type captureEntry struct {
	Dir     string  `toml:"dir"`
	Channel string  `toml:"channel"`
	Offset  uint32  `toml:"offset"`
	Message string  `toml:"message"`
	InSize  *int    `toml:"in_size"`
	OutSize *int    `toml:"out_size"`
	Request *string `toml:"request"`
	Reply   *string `toml:"reply"`
}

// An event is one step of a capture: an exchange opening, a reply
// arriving, or both.
type event struct {
	// Open is the exchange opened by this event, if any.
	Open *dcpipc.Exchange
	// Channel and Offset address the exchange closed by Reply.
	Channel dcpipc.Channel
	Offset  uint32
	// Reply is nil if the event closes nothing.
	Reply []byte
}

func loadCapture(path string) ([]event, error) {
	var cf captureFile
	md, err := toml.DecodeFile(path, &cf)
	if err != nil {
		return nil, err
	}
	if extra := md.Undecoded(); len(extra) > 0 {
		return nil, fmt.Errorf("%s: unknown keys %v", path, extra)
	}

	ret := make([]event, 0, len(cf.Exchange))
	for i, ce := range cf.Exchange {
		ev, err := ce.event()
		if err != nil {
			return nil, fmt.Errorf("%s: exchange %d: %w", path, i, err)
		}
		ret = append(ret, ev)
	}
	return ret, nil
}

func (ce captureEntry) event() (event, error) {
	ch, ok := dcpipc.ParseChannel(ce.Channel)
	if !ok {
		return event{}, fmt.Errorf("unknown channel %q", ce.Channel)
	}
	ev := event{Channel: ch, Offset: ce.Offset}
	if ce.Reply != nil {
		bs, err := parseHex(*ce.Reply)
		if err != nil {
			return event{}, fmt.Errorf("reply: %w", err)
		}
		ev.Reply = bs
	}
	if ce.Request == nil {
		if ev.Reply == nil {
			return event{}, fmt.Errorf("neither request nor reply given")
		}
		return ev, nil
	}

	dir, ok := dcpipc.ParseArrow(ce.Dir)
	if !ok {
		return event{}, fmt.Errorf("invalid direction %q", ce.Dir)
	}
	if len(ce.Message) != 4 {
		return event{}, fmt.Errorf("invalid message identifier %q", ce.Message)
	}
	req, err := parseHex(*ce.Request)
	if err != nil {
		return event{}, fmt.Errorf("request: %w", err)
	}
	x := &dcpipc.Exchange{
		Dir:     dir,
		Channel: ch,
		Offset:  ce.Offset,
		ID:      ce.Message,
		InSize:  len(req),
		OutSize: len(ev.Reply),
		Request: req,
	}
	if ce.InSize != nil {
		x.InSize = *ce.InSize
	}
	if ce.OutSize != nil {
		x.OutSize = *ce.OutSize
	}
	ev.Open = x
	return ev, nil
}
