// Package fragments provides low-level encoding and decoding helpers
// for fixed-layout IPC message buffers.
//
// The provided encoder and decoder are very low level, and do not
// know anything about method signatures. They read and write
// fixed-width integers and raw byte runs with no implicit alignment:
// every byte of an IPC buffer is accounted for by the layout that
// describes it, including explicit padding. It is the caller's
// responsibility to produce buffers that match a layout.
package fragments
