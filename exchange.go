package dcpipc

import (
	"fmt"
)

// A Channel is one of the coprocessor's IPC channels.
type Channel uint8

const (
	ChanCB Channel = iota
	ChanCMD
	ChanAsync
	ChanOOBCMD
	ChanOOBCB
)

var channels = [...]struct {
	name string
	tag  byte
}{
	ChanCB:     {"CB", 'd'},
	ChanCMD:    {"CMD", 'C'},
	ChanAsync:  {"ASYNC", 'a'},
	ChanOOBCMD: {"OOBCMD", 'O'},
	ChanOOBCB:  {"OOBCB", 'o'},
}

func (c Channel) String() string {
	if int(c) < len(channels) {
		return channels[c].name
	}
	return fmt.Sprintf("Channel(%d)", uint8(c))
}

// Tag returns the single character that identifies c on the wire.
func (c Channel) Tag() byte {
	if int(c) < len(channels) {
		return channels[c].tag
	}
	return '?'
}

// ParseChannel returns the channel with the given name or wire tag.
func ParseChannel(s string) (Channel, bool) {
	for i, ch := range channels {
		if s == ch.name || (len(s) == 1 && s[0] == ch.tag) {
			return Channel(i), true
		}
	}
	return 0, false
}

// An Arrow is the direction of travel of one message of an
// exchange.
type Arrow byte

const (
	// Forward marks the message that opens an exchange.
	Forward Arrow = '>'
	// Backward marks the message that closes an exchange.
	Backward Arrow = '<'
)

// Reverse returns the direction of the reply to a message travelling
// in direction a.
func (a Arrow) Reverse() Arrow {
	if a == Forward {
		return Backward
	}
	return Forward
}

func (a Arrow) String() string { return string(rune(a)) }

// ParseArrow returns the direction written as s.
func ParseArrow(s string) (Arrow, bool) {
	switch s {
	case ">":
		return Forward, true
	case "<":
		return Backward, true
	}
	return 0, false
}

// An Exchange is one request and its eventual reply.
//
// An Exchange is open from its creation until its reply is
// acknowledged with [Exchange.Ack], and immutable after that.
type Exchange struct {
	// Dir is the direction of travel of the request.
	Dir     Arrow
	Channel Channel
	// Offset identifies the exchange's slot within its channel.
	Offset uint32
	// ID is the message identifier.
	ID string
	// InSize and OutSize are the request and reply sizes declared by
	// the sender.
	InSize  int
	OutSize int

	Request []byte
	Reply   []byte

	// Complete reports whether the reply has been acknowledged.
	Complete bool
	// Ret is the decoded return value, once the reply has been
	// rendered.
	Ret any
}

// Ack closes x with the reply bytes reply. It is an error to
// acknowledge an exchange twice.
func (x *Exchange) Ack(reply []byte) error {
	if x.Complete {
		return contractErr("", "exchange %s already acknowledged", x)
	}
	x.Reply = reply
	x.Complete = true
	return nil
}

// ReplyDir returns the direction of travel of x's reply.
func (x *Exchange) ReplyDir() Arrow { return x.Dir.Reverse() }

func (x *Exchange) String() string { return x.header(x.Dir) }

func (x *Exchange) header(dir Arrow) string {
	return fmt.Sprintf("%s%c[%#x] %s", dir, x.Channel.Tag(), x.Offset, x.ID)
}
