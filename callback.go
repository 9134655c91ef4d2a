package dcpipc

import (
	"context"
	"fmt"
)

// An Invocation is one inbound call of a [Method], as seen by its
// [Handler].
//
// Input and inout parameters carry the caller's values. Output and
// inout parameters that the caller did not pass as null have an
// output slot, which the handler fills with [Invocation.SetOut].
// Parameters without a slot are left zero in the reply.
type Invocation struct {
	Method *Method

	req  Args
	args []any
	out  Args
}

func (m *Method) newInvocation(req Args) *Invocation {
	inv := &Invocation{
		Method: m,
		req:    req,
		args:   make([]any, len(m.Params)),
		out:    Args{},
	}
	for i, p := range m.Params {
		v := req[p.Name]
		if p.ArrayOfNullable {
			v = maskNulls(v, req[p.NullField()])
		} else if isNullFlagged(p, req) {
			continue
		}
		if p.Dir.IsOut() {
			inv.out[p.Name] = v
		}
		inv.args[i] = v
	}
	return inv
}

// maskNulls returns a copy of the decoded array v in which every
// element whose flag is set is nil.
func maskNulls(v, flags any) any {
	elems, ok := v.([]any)
	fs, _ := flags.([]any)
	if !ok {
		if !anyRequested(fs) {
			return nil
		}
		elems = make([]any, len(fs))
	}
	ret := make([]any, len(elems))
	for i, e := range elems {
		if i < len(fs) && fs[i] == true {
			continue
		}
		ret[i] = e
	}
	return ret
}

// anyRequested reports whether any element of flags is unset, meaning
// that at least one element of an output array was requested.
func anyRequested(flags []any) bool {
	for _, f := range flags {
		if f != true {
			return true
		}
	}
	return false
}

// Arg returns the value of the parameter called name: the caller's
// value for input and inout parameters, or nil.
func (inv *Invocation) Arg(name string) any {
	for i, p := range inv.Method.Params {
		if p.Name == name {
			return inv.args[i]
		}
	}
	return nil
}

// Index returns the value of the i'th parameter, for methods with
// positional parameters.
func (inv *Invocation) Index(i int) any {
	if i < 0 || i >= len(inv.args) {
		return nil
	}
	return inv.args[i]
}

// Args returns the values of all parameters in declaration order.
func (inv *Invocation) Args() []any {
	return append([]any(nil), inv.args...)
}

// IsNull reports whether the caller passed the parameter called name
// as null.
func (inv *Invocation) IsNull(name string) bool {
	p, ok := inv.Method.Param(name)
	if !ok {
		return false
	}
	return isNullFlagged(p, inv.req)
}

// HasOut reports whether the parameter called name has an output
// slot.
func (inv *Invocation) HasOut(name string) bool {
	_, ok := inv.out[name]
	return ok
}

// Out returns the current value of the output slot called name.
func (inv *Invocation) Out(name string) any {
	return inv.out[name]
}

// SetOut sets the output slot called name to v.
func (inv *Invocation) SetOut(name string, v any) error {
	if !inv.HasOut(name) {
		return contractErr(inv.Method.Name, "parameter %q has no output slot", name)
	}
	inv.out[name] = v
	return nil
}

// A Handler implements an inbound method. It returns the method's
// return value, which must be nil exactly when the method is void.
type Handler func(ctx context.Context, inv *Invocation) (any, error)

// Callback invokes m as the callee: it decodes the request req,
// passes it to h, and encodes h's results as the reply.
func (m *Method) Callback(ctx context.Context, h Handler, req []byte) ([]byte, error) {
	in, err := m.DecodeRequest(req)
	if err != nil {
		return nil, err
	}
	inv := m.newInvocation(in)
	ret, err := h(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("handling %s: %w", m.Name, err)
	}

	switch {
	case m.Ret == nil && ret != nil:
		return nil, contractErr(m.Name, "void method returned %v", ret)
	case m.Ret != nil && ret == nil:
		return nil, contractErr(m.Name, "method returning %s returned nothing", m.Ret)
	}

	out := make(Args, len(inv.out)+1)
	for k, v := range inv.out {
		out[k] = v
	}
	if m.Ret != nil {
		out[retName] = ret
	}
	return m.EncodeReply(out, in)
}
