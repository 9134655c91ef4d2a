package fragments

import (
	"fmt"
	"io"
)

// A Decoder provides utilities to read a fixed-layout IPC message
// from a byte slice.
//
// Reads never go past the end of In. A read that would overrun returns an
// error wrapping [io.ErrUnexpectedEOF].
type Decoder struct {
	// Order is the byte order to use when reading multi-byte values.
	Order ByteOrder
	// In is the input buffer to read.
	In []byte

	// offset is the number of bytes of In consumed so far.
	offset int
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.offset
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.In) - d.offset
}

// Pad consumes padding bytes as needed to make the next read happen
// at a multiple of align bytes. If the decoder is already correctly
// aligned, no bytes are consumed.
func (d *Decoder) Pad(align int) error {
	extra := d.offset % align
	if extra == 0 {
		return nil
	}
	return d.Skip(align - extra)
}

// Skip discards n bytes.
func (d *Decoder) Skip(n int) error {
	_, err := d.Read(n)
	return err
}

// Read reads n bytes, with no framing or padding. The returned slice
// aliases In.
func (d *Decoder) Read(n int) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, fmt.Errorf("reading %d bytes at offset %#x with %d remaining: %w", n, d.offset, d.Remaining(), io.ErrUnexpectedEOF)
	}
	ret := d.In[d.offset : d.offset+n]
	d.offset += n
	return ret, nil
}

// Sub returns a Decoder over the next n bytes, and advances d past
// them. The returned Decoder starts at offset zero.
func (d *Decoder) Sub(n int) (*Decoder, error) {
	bs, err := d.Read(n)
	if err != nil {
		return nil, err
	}
	return &Decoder{Order: d.Order, In: bs}, nil
}

// Uint8 reads a uint8.
func (d *Decoder) Uint8() (uint8, error) {
	bs, err := d.Read(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

// Uint16 reads a uint16.
func (d *Decoder) Uint16() (uint16, error) {
	bs, err := d.Read(2)
	if err != nil {
		return 0, err
	}
	return d.Order.Uint16(bs), nil
}

// Uint32 reads a uint32.
func (d *Decoder) Uint32() (uint32, error) {
	bs, err := d.Read(4)
	if err != nil {
		return 0, err
	}
	return d.Order.Uint32(bs), nil
}

// Uint64 reads a uint64.
func (d *Decoder) Uint64() (uint64, error) {
	bs, err := d.Read(8)
	if err != nil {
		return 0, err
	}
	return d.Order.Uint64(bs), nil
}

// Uint reads an unsigned integer of width bytes, where width is 1,
// 2, 4 or 8.
func (d *Decoder) Uint(width int) (uint64, error) {
	switch width {
	case 1:
		v, err := d.Uint8()
		return uint64(v), err
	case 2:
		v, err := d.Uint16()
		return uint64(v), err
	case 4:
		v, err := d.Uint32()
		return uint64(v), err
	case 8:
		return d.Uint64()
	default:
		return 0, fmt.Errorf("invalid integer width %d", width)
	}
}
