package dcpipc

// scope is the context in which a length-linked field resolves its
// length: first the fields of the record that contains it, then the
// fields of the record that encloses that one.
//
// For a method's top-level fields, the enclosing record is the
// opposite side of the exchange: the reply resolves lengths against
// the request's values.
type scope struct {
	local  map[string]any
	parent map[string]any
}

// nested returns the scope for a record nested within s, whose own
// fields are local.
func (s scope) nested(local map[string]any) scope {
	return scope{local, s.local}
}

// length returns the value of the length field name. Unset, zero or
// non-integer values are zero. If the local value is unset or zero,
// the enclosing value is used instead.
func (s scope) length(name string) int {
	if n, ok := asInt(s.local[name]); ok && n != 0 {
		return n
	}
	if n, ok := asInt(s.parent[name]); ok {
		return n
	}
	return 0
}

// clampLength returns the length of the linked field name, limited
// to [0, limit].
func (s scope) clampLength(name string, limit int) int {
	return min(max(0, s.length(name)), limit)
}
