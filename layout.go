package dcpipc

import (
	"fmt"
	"io"
)

// Direction is the way a parameter's value travels: in the request,
// in the reply, or both.
type Direction uint8

const (
	DirIn Direction = 1 << iota
	DirOut
	DirInOut = DirIn | DirOut
)

func (d Direction) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirInOut:
		return "inout"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// IsIn reports whether values with direction d travel in the
// request.
func (d Direction) IsIn() bool { return d&DirIn != 0 }

// IsOut reports whether values with direction d travel in the reply.
func (d Direction) IsOut() bool { return d&DirOut != 0 }

// A Param is one resolved parameter of a [Method].
type Param struct {
	Name string
	Type Type
	Dir  Direction
	// Nullable reports whether the caller declares, with a flag in
	// the request, that the parameter has no value.
	Nullable bool
	// ArrayOfNullable reports whether the parameter is an array of
	// nullable elements, flagged individually.
	ArrayOfNullable bool
	// Count is the element count of an ArrayOfNullable parameter.
	Count int
}

// NullField returns the name of the request field that holds p's
// null flags.
func (p Param) NullField() string {
	return p.Name + "_null"
}

// resolveDirection walks the wrapper chain of t from the outside in,
// and returns the direction it declares. Each direction wrapper
// overrides the ones outside it.
func resolveDirection(t Type, dir Direction) Direction {
	for {
		switch v := t.(type) {
		case Pointer:
			dir = v.Dir
		case InOutValue:
			dir = DirInOut
		}
		inner, ok := unwrap(t)
		if !ok {
			return dir
		}
		t = inner
	}
}

// resolveNullable walks the wrapper chain of t and reports whether t
// is nullable. If an array encloses the pointer that makes t
// nullable, t is an array of nullable elements, and count is the
// outermost array's element count.
func resolveNullable(t Type) (nullable, arrayOf bool, count int) {
	count = -1
	for {
		switch v := t.(type) {
		case Array:
			if count < 0 {
				count = v.Count
			}
		case LinkedArray:
			if count < 0 {
				count = v.Max
			}
		case Pointer:
			nullable = true
			arrayOf = count >= 0
		}
		inner, ok := unwrap(t)
		if !ok {
			break
		}
		t = inner
	}
	if !arrayOf {
		count = 0
	}
	return nullable, arrayOf, count
}

// A Layout is the ordered list of fields that make up one side of a
// method's wire format.
type Layout struct {
	// Fields are the fields of the layout, in wire order. Padding
	// fields have an empty name.
	Fields []Field
	// Offsets holds the byte offset of each field.
	Offsets []int
	// Size is the total size of the layout in bytes, always a
	// multiple of 4.
	Size int
}

func newLayout(fields []Field) Layout {
	ret := Layout{Fields: fields}
	for _, f := range fields {
		ret.Offsets = append(ret.Offsets, ret.Size)
		ret.Size += f.Type.Size()
	}
	if extra := ret.Size % 4; extra != 0 {
		pad := Padding(4 - extra)
		ret.Fields = append(ret.Fields, pad)
		ret.Offsets = append(ret.Offsets, ret.Size)
		ret.Size += pad.Type.Size()
	}
	return ret
}

// Field returns the layout field called name.
func (l Layout) Field(name string) (Field, int, bool) {
	for i, f := range l.Fields {
		if f.Name != "" && f.Name == name {
			return f, l.Offsets[i], true
		}
	}
	return Field{}, 0, false
}

// WriteTable writes one line per field of l to w, giving the field's
// offset, name, type and size.
func (l Layout) WriteTable(w io.Writer, indent string) error {
	for i, f := range l.Fields {
		name := f.Name
		if name == "" {
			name = "-"
		}
		if _, err := fmt.Fprintf(w, "%s%#x: %s %s (%#x)\n", indent, l.Offsets[i], name, f.Type, f.Type.Size()); err != nil {
			return err
		}
	}
	return nil
}
