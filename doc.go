// Package dcpipc encodes, decodes and traces the IPC messages
// exchanged between the host and the display coprocessor.
//
// Every message is described by a [Method]: a return type and an
// ordered list of typed parameters. From that one declaration the
// package derives two fixed byte layouts, one for the request buffer
// and one for the reply buffer. Parameters travel in the request, the
// reply, or both, according to their [Direction]:
//
//	MustMethod(Bool8, "read_edt_data",
//	    F("key", CStringOf(0x40)),
//	    F("count", Uint32),
//	    F("value", InOut(LinkedArrayOf(8, "count", Uint32))))
//
// Pointer parameters ([InPtr], [OutPtr], [InOutPtr]) may be null.
// Whether each one is present is carried by a "<name>_null" flag at
// the end of the request; the pointed-to storage is always part of
// the layout, present or not. The return value, if any, is the last
// field of the reply. Both layouts are padded to a multiple of 4
// bytes.
//
// The outbound path is [Method.Call], which encodes the arguments,
// hands the request to a [SendFunc], and decodes the reply. The
// inbound path is [Method.Callback], which decodes a request, runs a
// [Handler], and encodes the handler's outputs as the reply. Both
// paths are strict: any mismatch between a declaration and what the
// caller or handler does is an error.
//
// Tracing is tolerant instead. A [Tracker] pairs each request it is
// shown with the reply that later acknowledges it, and a [Formatter]
// renders both as a readable call trace. Unknown messages, messages
// of the wrong size and undecodable payloads are rendered as
// diagnostics, and tracing carries on.
//
// Methods are grouped into services and indexed by message
// identifier in a [Registry]. The firmware's methods are declared in
// the catalog subpackage.
package dcpipc
