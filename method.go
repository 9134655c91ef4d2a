package dcpipc

import (
	"fmt"
	"strings"

	"github.com/creachadair/mds/mapset"
)

// retName is the name of the synthetic parameter that carries a
// method's return value in the reply.
const retName = "ret"

// A Method is the signature of one IPC call or callback, along with
// the request and reply layouts derived from it.
//
// A Method is immutable once constructed, and safe for concurrent use.
type Method struct {
	// Name is the human-readable method name.
	Name string
	// Ret is the return type, or nil for a void method.
	Ret Type
	// Params are the method's parameters, in declaration order. The
	// return value is not included.
	Params []Param
	// Positional reports whether the parameters were declared by
	// position rather than by name. Positional parameters are named
	// arg0, arg1 and so on.
	Positional bool

	// Request is the layout of the request buffer.
	Request Layout
	// Reply is the layout of the reply buffer.
	Reply Layout

	// all is Params plus the return slot, if any.
	all []Param
}

// NewMethod returns the Method with the given return type, name and
// named parameters. ret may be nil for void methods.
func NewMethod(ret Type, name string, params ...Field) (*Method, error) {
	return newMethod(ret, name, false, params)
}

// NewPositional returns the Method with the given return type, name
// and unnamed parameter types.
func NewPositional(ret Type, name string, types ...Type) (*Method, error) {
	params := make([]Field, len(types))
	for i, t := range types {
		params[i] = Field{fmt.Sprintf("arg%d", i), t}
	}
	return newMethod(ret, name, true, params)
}

// MustMethod is like [NewMethod], but panics on error. It is meant for
// static method catalogues.
func MustMethod(ret Type, name string, params ...Field) *Method {
	m, err := NewMethod(ret, name, params...)
	if err != nil {
		panic(err)
	}
	return m
}

// MustPositional is like [NewPositional], but panics on error.
func MustPositional(ret Type, name string, types ...Type) *Method {
	m, err := NewPositional(ret, name, types...)
	if err != nil {
		panic(err)
	}
	return m
}

func newMethod(ret Type, name string, positional bool, decls []Field) (*Method, error) {
	m := &Method{
		Name:       name,
		Ret:        ret,
		Positional: positional,
	}

	if ret != nil {
		decls = append(decls[:len(decls):len(decls)], Field{retName, ret})
	}

	var in, out []Field
	for _, d := range decls {
		if d.Type == nil {
			return nil, contractErr(name, "parameter %q has no type", d.Name)
		}
		dir := DirIn
		if d.Name == retName {
			dir = DirOut
		}
		p := Param{
			Name: d.Name,
			Type: d.Type,
			Dir:  resolveDirection(d.Type, dir),
		}
		p.Nullable, p.ArrayOfNullable, p.Count = resolveNullable(d.Type)

		if p.Dir.IsIn() {
			in = append(in, Field{p.Name, p.Type})
		}
		if p.Dir.IsOut() {
			out = append(out, Field{p.Name, p.Type})
		}
		m.all = append(m.all, p)
	}

	// Null flags for every nullable parameter live in the request,
	// whatever the parameter's direction.
	for _, p := range m.all {
		if !p.Nullable {
			continue
		}
		if p.ArrayOfNullable {
			in = append(in, Field{p.NullField(), ArrayOf(p.Count, Bool8)})
		} else {
			in = append(in, Field{p.NullField(), Bool8})
		}
	}

	m.Request = newLayout(in)
	m.Reply = newLayout(out)
	m.Params = m.all
	if ret != nil {
		m.Params = m.all[:len(m.all)-1]
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// validate checks the method's declaration for mistakes that would
// make its wire format ambiguous.
func (m *Method) validate() error {
	names := mapset.New[string]()
	for i, p := range m.all {
		if p.Name == "" {
			return contractErr(m.Name, "parameter with empty name")
		}
		isRet := m.Ret != nil && i == len(m.all)-1
		if p.Name == retName && !isRet {
			return contractErr(m.Name, "parameter name %q is reserved for the return value", retName)
		}
		if names.Has(p.Name) {
			return contractErr(m.Name, "duplicate parameter %q", p.Name)
		}
		names.Add(p.Name)
	}
	for _, p := range m.all {
		if p.Nullable && names.Has(p.NullField()) {
			return contractErr(m.Name, "parameter %q collides with the null flags of %q", p.NullField(), p.Name)
		}
	}

	for _, p := range m.all {
		if contains(p.Type, badWidth) {
			return contractErr(m.Name, "parameter %q has a scalar of unsupported width", p.Name)
		}
		if p.Nullable && p.Dir == DirInOut && !encodable(p.Type) {
			return contractErr(m.Name, "nullable inout parameter %q has no encodable default", p.Name)
		}
		if err := checkLinks(p.Type, names); err != nil {
			return contractErr(m.Name, "parameter %q: %v", p.Name, err)
		}
	}
	return nil
}

// checkLinks verifies that every length-linked field in t names a
// field that exists, either in an enclosing record or among the
// method's parameters.
func checkLinks(t Type, params mapset.Set[string]) error {
	var walk func(t Type, siblings mapset.Set[string]) error
	walk = func(t Type, siblings mapset.Set[string]) error {
		switch v := t.(type) {
		case LinkedArray:
			if !siblings.Has(v.CountField) && !params.Has(v.CountField) {
				return fmt.Errorf("length field %q does not exist", v.CountField)
			}
		case LinkedBytes:
			if !siblings.Has(v.SizeField) && !params.Has(v.SizeField) {
				return fmt.Errorf("length field %q does not exist", v.SizeField)
			}
		case Record:
			fs := mapset.New[string]()
			for _, f := range v.Fields {
				fs.Add(f.Name)
			}
			for _, f := range v.Fields {
				if err := walk(f.Type, fs); err != nil {
					return err
				}
			}
			return nil
		}
		if inner, ok := unwrap(t); ok {
			return walk(inner, siblings)
		}
		return nil
	}
	return walk(t, mapset.New[string]())
}

// Param returns the parameter called name. The return slot is
// reported under the name "ret".
func (m *Method) Param(name string) (Param, bool) {
	for _, p := range m.all {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// HasReturn reports whether m returns a value.
func (m *Method) HasReturn() bool {
	return m.Ret != nil
}

// String returns a C-like prototype of the method.
func (m *Method) String() string {
	rtype := "void"
	if m.Ret != nil {
		rtype = m.Ret.String()
	}
	args := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		args = append(args, fmt.Sprintf("%s %s", p.Type, p.Name))
	}
	return fmt.Sprintf("%s %s(%s)", rtype, m.Name, strings.Join(args, ", "))
}
