package dcpipc

import (
	"context"
	"fmt"

	"github.com/asahi-tools/dcpipc/fragments"
	"go.uber.org/zap"
)

// wireOrder is the byte order of the coprocessor.
var wireOrder fragments.ByteOrder = fragments.LittleEndian

// Args is a set of parameter values keyed by parameter name.
//
// A missing or nil value means "no value". For nullable parameters
// that sets the parameter's null flag. For an array of nullable
// elements, each nil element is flagged individually.
type Args map[string]any

// Want is the value a caller passes for an output parameter, to
// request that the callee fill it in. A nullable output parameter
// left out of [Args] is sent as null.
var Want = want{}

type want struct{}

func (want) String() string { return "<out>" }

// A Result is the outcome of a [Method.Call].
type Result struct {
	// Ret is the method's return value, or nil for void methods.
	Ret any
	// Out holds the reply values of every output and inout
	// parameter that was not null in the request.
	Out Args
}

// A SendFunc delivers an encoded request to the coprocessor and
// returns the encoded reply. It is the only point at which a call
// blocks.
type SendFunc func(ctx context.Context, req []byte) ([]byte, error)

// Args maps positional parameter values to their parameter names.
func (m *Method) Args(vals ...any) (Args, error) {
	if len(vals) != len(m.Params) {
		return nil, contractErr(m.Name, "got %d arguments, want %d", len(vals), len(m.Params))
	}
	ret := make(Args, len(vals))
	for i, v := range vals {
		ret[m.Params[i].Name] = v
	}
	return ret, nil
}

// Call invokes m as the caller: it encodes args into a request,
// delivers it with send, and decodes the reply.
//
// Before waiting for the reply, Call logs a one-line trace of the
// call at Info level, to the logger set with [WithLogger] or else to
// [Logger].
func (m *Method) Call(ctx context.Context, send SendFunc, args Args) (*Result, error) {
	req, in, err := m.EncodeRequest(args)
	if err != nil {
		return nil, err
	}

	loggerFrom(ctx).Info(fmt.Sprintf("%s(%s)", m.Name, m.formatArgs(in, nil)), zap.String("method", m.Name))

	reply, err := send(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", m.Name, err)
	}
	out, err := m.DecodeReply(reply, in)
	if err != nil {
		return nil, err
	}

	ret := &Result{Out: Args{}}
	for _, p := range m.Params {
		if !p.Dir.IsOut() || isNullFlagged(p, in) {
			continue
		}
		ret.Out[p.Name] = out[p.Name]
	}
	if m.Ret != nil {
		ret.Ret = out[retName]
	}
	return ret, nil
}

// EncodeRequest returns the request buffer for args, along with the
// request values it encoded, including null flags.
func (m *Method) EncodeRequest(args Args) ([]byte, Args, error) {
	for name := range args {
		if _, ok := m.Param(name); !ok || name == retName {
			return nil, nil, contractErr(m.Name, "unknown parameter %q", name)
		}
	}

	in := Args{}
	for _, p := range m.Params {
		v := args[p.Name]
		_, requested := v.(want)
		if requested && !p.Dir.IsOut() {
			return nil, nil, contractErr(m.Name, "Want passed for input parameter %q", p.Name)
		}

		switch {
		case p.ArrayOfNullable:
			flags, elems, err := nullableElems(p, v)
			if err != nil {
				return nil, nil, EncodeError{p.Name, p.Type.String(), err}
			}
			in[p.NullField()] = flags
			v = elems
		case p.Nullable:
			in[p.NullField()] = v == nil
		case v == nil && p.Dir.IsIn():
			return nil, nil, contractErr(m.Name, "missing value for parameter %q", p.Name)
		}

		if p.Dir.IsIn() && v != nil && !requested {
			in[p.Name] = v
		}
	}

	e := fragments.Encoder{Order: wireOrder}
	if err := encodeFields(&e, m.Request.Fields, in, scope{local: in}); err != nil {
		return nil, nil, err
	}
	return e.Out, in, nil
}

// nullableElems splits the value of an array-of-nullable parameter
// into per-element null flags, and a full array in which every nil
// element is replaced by the element type's zero value.
func nullableElems(p Param, v any) (flags []any, elems []any, err error) {
	var elem Type
	switch t := base(p.Type).(type) {
	case Array:
		elem = t.Elem
	case LinkedArray:
		elem = t.Elem
	default:
		return nil, nil, fmt.Errorf("parameter %q is not an array", p.Name)
	}

	var given []any
	if v != nil {
		var ok bool
		if given, ok = asSlice(v); !ok {
			return nil, nil, fmt.Errorf("cannot use %T as an array", v)
		}
		if len(given) > p.Count {
			return nil, nil, fmt.Errorf("got %d elements, want at most %d", len(given), p.Count)
		}
	}
	flags = make([]any, p.Count)
	elems = make([]any, p.Count)
	for i := range p.Count {
		if i < len(given) && given[i] != nil {
			flags[i] = false
			elems[i] = given[i]
			if _, ok := given[i].(want); ok {
				elems[i] = zeroValue(elem)
			}
			continue
		}
		flags[i] = true
		elems[i] = zeroValue(elem)
	}
	return flags, elems, nil
}

// isNullFlagged reports whether in flags the scalar nullable
// parameter p as null.
func isNullFlagged(p Param, in Args) bool {
	if !p.Nullable || p.ArrayOfNullable {
		return false
	}
	null, _ := in[p.NullField()].(bool)
	return null
}

// DecodeRequest decodes a request buffer. Null flags are included in
// the returned values.
func (m *Method) DecodeRequest(bs []byte) (Args, error) {
	if len(bs) != m.Request.Size {
		return nil, SizeMismatchError{"in", m.Request.Size, len(bs)}
	}
	d := fragments.Decoder{Order: wireOrder, In: bs}
	vals, err := decodeFields(&d, m.Request.Fields, nil)
	if err != nil {
		return nil, err
	}
	return vals, nil
}

// DecodeReply decodes a reply buffer. in are the values of the
// matching request, against which length-linked reply fields resolve
// their lengths.
func (m *Method) DecodeReply(bs []byte, in Args) (Args, error) {
	if len(bs) != m.Reply.Size {
		return nil, SizeMismatchError{"out", m.Reply.Size, len(bs)}
	}
	d := fragments.Decoder{Order: wireOrder, In: bs}
	vals, err := decodeFields(&d, m.Reply.Fields, in)
	if err != nil {
		return nil, err
	}
	return vals, nil
}

// EncodeReply returns the reply buffer for the output values out. in
// are the values of the matching request.
func (m *Method) EncodeReply(out Args, in Args) ([]byte, error) {
	e := fragments.Encoder{Order: wireOrder}
	if err := encodeFields(&e, m.Reply.Fields, out, scope{out, in}); err != nil {
		return nil, err
	}
	return e.Out, nil
}
