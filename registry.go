package dcpipc

import (
	"cmp"
	"slices"
)

// A Service is a named collection of methods, keyed by message
// identifier.
//
// Message identifiers are four characters: a channel letter followed
// by a three digit number, as in "A407" or "D120".
type Service struct {
	Name    string
	Methods map[string]*Method
}

// An Entry is one method of a [Registry].
type Entry struct {
	Service string
	ID      string
	Method  *Method
}

// A Registry maps message identifiers to their methods, across all
// services.
//
// A Registry is immutable once constructed, and safe for concurrent
// use.
type Registry struct {
	byID map[string]Entry
}

// NewRegistry returns a Registry of the methods of svcs. It is an
// error for two services to use the same message identifier.
func NewRegistry(svcs ...*Service) (*Registry, error) {
	ret := &Registry{byID: map[string]Entry{}}
	for _, svc := range svcs {
		for id, m := range svc.Methods {
			if prev, ok := ret.byID[id]; ok {
				return nil, contractErr("", "message %s defined by both %s and %s", id, prev.Service, svc.Name)
			}
			ret.byID[id] = Entry{svc.Name, id, m}
		}
	}
	return ret, nil
}

// Lookup returns the entry for the message identifier id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// Method returns the method for id, or a [ContractError] if id is
// unknown.
func (r *Registry) Method(id string) (*Method, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, contractErr("", "unknown message %s", id)
	}
	return e.Method, nil
}

// Len returns the number of methods in r.
func (r *Registry) Len() int { return len(r.byID) }

// All returns every entry of r, sorted by message identifier.
func (r *Registry) All() []Entry {
	ret := make([]Entry, 0, len(r.byID))
	for _, e := range r.byID {
		ret = append(ret, e)
	}
	slices.SortFunc(ret, func(a, b Entry) int { return cmp.Compare(a.ID, b.ID) })
	return ret
}
