package fragments

// An Encoder provides utilities to write a fixed-layout IPC message
// to a byte slice.
//
// No method inserts padding implicitly. Callers use [Encoder.Pad]
// and [Encoder.Zero] where the layout calls for it.
type Encoder struct {
	// Order is the byte order to use when encoding multi-byte values.
	Order ByteOrder
	// Out is the encoded output.
	Out []byte
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.Out)
}

// Pad inserts zero bytes as needed to make the message a multiple of
// align bytes. If the message is already correctly aligned, no
// padding is inserted.
func (e *Encoder) Pad(align int) {
	extra := len(e.Out) % align
	if extra == 0 {
		return
	}
	e.Zero(align - extra)
}

// Zero writes n zero bytes.
func (e *Encoder) Zero(n int) {
	for range n {
		e.Out = append(e.Out, 0)
	}
}

// Write writes bs as-is to the output.
func (e *Encoder) Write(bs []byte) {
	e.Out = append(e.Out, bs...)
}

// Bytes writes bs into a field of exactly size bytes, zero filling
// whatever bs does not cover. Bytes beyond size are dropped, and
// Bytes reports how many bytes of bs were written.
func (e *Encoder) Bytes(bs []byte, size int) int {
	n := min(len(bs), size)
	e.Out = append(e.Out, bs[:n]...)
	e.Zero(size - n)
	return n
}

// Uint8 writes a uint8.
func (e *Encoder) Uint8(u8 uint8) {
	e.Out = append(e.Out, u8)
}

// Uint16 writes a uint16.
func (e *Encoder) Uint16(u16 uint16) {
	e.Out = e.Order.AppendUint16(e.Out, u16)
}

// Uint32 writes a uint32.
func (e *Encoder) Uint32(u32 uint32) {
	e.Out = e.Order.AppendUint32(e.Out, u32)
}

// Uint64 writes a uint64.
func (e *Encoder) Uint64(u64 uint64) {
	e.Out = e.Order.AppendUint64(e.Out, u64)
}

// Uint writes the low width bytes of v, where width is 1, 2, 4 or 8.
func (e *Encoder) Uint(width int, v uint64) {
	switch width {
	case 1:
		e.Uint8(uint8(v))
	case 2:
		e.Uint16(uint16(v))
	case 4:
		e.Uint32(uint32(v))
	case 8:
		e.Uint64(v)
	default:
		panic("invalid integer width")
	}
}
