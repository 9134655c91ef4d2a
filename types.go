package dcpipc

import (
	"fmt"
	"strings"
)

// A Type describes the wire representation of one value in an IPC
// buffer.
//
// Types form a closed set: integers, booleans, floats, four character
// codes, fixed arrays and byte blobs, fixed-capacity strings,
// length-linked arrays and byte blobs, records, keyed values and
// padding, plus the wrappers [InPtr], [OutPtr], [InOutPtr], [InOut]
// and [HexOf], each of which wraps exactly one inner Type.
//
// Every Type has a fixed wire size. [LinkedArray] and [LinkedBytes]
// always occupy their maximum capacity, but only a prefix of that
// capacity is meaningful, as given by a named sibling field.
type Type interface {
	// Size returns the number of bytes the type occupies on the wire.
	Size() int
	// String returns a C-like rendering of the type.
	String() string

	isType()
}

// Int is a fixed-width little-endian integer.
type Int struct {
	// Width is the integer size in bytes: 1, 2, 4 or 8.
	Width  int
	Signed bool
}

// Bool is a boolean carried in an integer of Width bytes. Only the
// low bit is significant when decoding.
type Bool struct {
	Width int
}

// Float is an IEEE 754 float of Width bytes, 4 or 8.
type Float struct {
	Width int
}

// FourCC is a uint32 that holds four ASCII characters, most
// significant byte first.
type FourCC struct{}

// Pad is N bytes of zero padding. It carries no value.
type Pad struct {
	N int
}

// Array is a fixed count of elements.
type Array struct {
	Count int
	Elem  Type
}

// Bytes is a fixed-size opaque byte blob.
type Bytes struct {
	N int
}

// CString is a NUL-terminated string stored in a field of N bytes.
type CString struct {
	N int
}

// LinkedArray is an array with room for Max elements, of which only
// the first n are meaningful, where n is the value of the field
// named CountField.
type LinkedArray struct {
	Max        int
	CountField string
	Elem       Type
}

// LinkedBytes is a byte blob with room for Max bytes, of which only
// the first n are meaningful, where n is the value of the field named
// SizeField.
type LinkedBytes struct {
	Max       int
	SizeField string
}

// A Field is one named member of a [Record].
type Field struct {
	Name string
	Type Type
}

// Record is an ordered sequence of named fields, with no implicit
// padding between them.
type Record struct {
	Name   string
	Fields []Field
}

// KeyedValue is a self-describing tagged value (see [DecodeKeyed])
// stored in a field of N bytes. The outermost tag must be Tag.
type KeyedValue struct {
	N   int
	Tag Tag
}

// Pointer is a pointer-typed parameter. It is nullable, and carries
// the direction Dir.
type Pointer struct {
	Dir  Direction
	Elem Type
}

// InOutValue is a non-pointer parameter that travels in both the
// request and the reply.
type InOutValue struct {
	Elem Type
}

// Hex wraps an integer type so that it renders in hexadecimal.
type Hex struct {
	Elem Type
}

func (Int) isType()         {}
func (Bool) isType()        {}
func (Float) isType()       {}
func (FourCC) isType()      {}
func (Pad) isType()         {}
func (Array) isType()       {}
func (Bytes) isType()       {}
func (CString) isType()     {}
func (LinkedArray) isType() {}
func (LinkedBytes) isType() {}
func (Record) isType()      {}
func (KeyedValue) isType()  {}
func (Pointer) isType()     {}
func (InOutValue) isType()  {}
func (Hex) isType()         {}

func (t Int) Size() int         { return t.Width }
func (t Bool) Size() int        { return t.Width }
func (t Float) Size() int       { return t.Width }
func (FourCC) Size() int        { return 4 }
func (t Pad) Size() int         { return t.N }
func (t Array) Size() int       { return t.Count * t.Elem.Size() }
func (t Bytes) Size() int       { return t.N }
func (t CString) Size() int     { return t.N }
func (t LinkedArray) Size() int { return t.Max * t.Elem.Size() }
func (t LinkedBytes) Size() int { return t.Max }
func (t KeyedValue) Size() int  { return t.N }
func (t Pointer) Size() int     { return t.Elem.Size() }
func (t InOutValue) Size() int  { return t.Elem.Size() }
func (t Hex) Size() int         { return t.Elem.Size() }

func (t Record) Size() int {
	ret := 0
	for _, f := range t.Fields {
		ret += f.Type.Size()
	}
	return ret
}

func (t Int) String() string {
	if n, ok := intNames[t]; ok {
		return n
	}
	return fmt.Sprintf("int%d?", t.Width*8)
}

func (t Bool) String() string {
	if t.Width == 1 {
		return "bool"
	}
	return fmt.Sprintf("bool(%s)", Int{Width: t.Width})
}

func (t Float) String() string {
	if t.Width == 4 {
		return "float"
	}
	return "double"
}

func (FourCC) String() string        { return "FourCC" }
func (t Pad) String() string         { return fmt.Sprintf("pad[%#x]", t.N) }
func (t Array) String() string       { return fmt.Sprintf("%s[%d]", t.Elem, t.Count) }
func (t Bytes) String() string       { return fmt.Sprintf("bytes[%#x]", t.N) }
func (t CString) String() string     { return fmt.Sprintf("char[%#x]", t.N) }
func (t LinkedArray) String() string { return fmt.Sprintf("%s[%s<=%d]", t.Elem, t.CountField, t.Max) }
func (t LinkedBytes) String() string { return fmt.Sprintf("bytes[%s<=%#x]", t.SizeField, t.Max) }
func (t InOutValue) String() string  { return "inout " + t.Elem.String() }
func (t Hex) String() string         { return t.Elem.String() }

func (t Record) String() string {
	if t.Name != "" {
		return t.Name
	}
	var b strings.Builder
	b.WriteString("struct{")
	for i, f := range t.Fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Type.String())
		if f.Name != "" {
			b.WriteString(" " + f.Name)
		}
	}
	b.WriteString("}")
	return b.String()
}

func (t KeyedValue) String() string {
	if t.Tag == TagDict {
		return fmt.Sprintf("OSDictionary[%#x]", t.N)
	}
	return fmt.Sprintf("OSObject[%#x]", t.N)
}

func (t Pointer) String() string {
	return fmt.Sprintf("%s %s*", t.Dir, t.Elem)
}

var (
	Uint8  Type = Int{Width: 1}
	Uint16 Type = Int{Width: 2}
	Uint32 Type = Int{Width: 4}
	Uint64 Type = Int{Width: 8}
	Int8   Type = Int{Width: 1, Signed: true}
	Int16  Type = Int{Width: 2, Signed: true}
	Int32  Type = Int{Width: 4, Signed: true}
	Int64  Type = Int{Width: 8, Signed: true}

	// Bool8 is a boolean stored in a single byte.
	Bool8 Type = Bool{Width: 1}
	// Bool32 is a boolean stored in a uint32.
	Bool32 Type = Bool{Width: 4}

	Float32 Type = Float{Width: 4}
	Float64 Type = Float{Width: 8}

	FourCharCode Type = FourCC{}
)

// ArrayOf returns a fixed array of n elem values.
func ArrayOf(n int, elem Type) Type { return Array{n, elem} }

// BytesOf returns a fixed blob of n bytes.
func BytesOf(n int) Type { return Bytes{n} }

// CStringOf returns a NUL-terminated string field of n bytes.
func CStringOf(n int) Type { return CString{n} }

// LinkedArrayOf returns an array of up to max elem values, whose
// meaningful length is held by the field named countField.
func LinkedArrayOf(max int, countField string, elem Type) Type {
	return LinkedArray{max, countField, elem}
}

// LinkedBytesOf returns a byte blob of up to max bytes, whose
// meaningful length is held by the field named sizeField.
func LinkedBytesOf(max int, sizeField string) Type {
	return LinkedBytes{max, sizeField}
}

// RecordOf returns a record type with the given fields.
func RecordOf(name string, fields ...Field) Type {
	return Record{name, fields}
}

// F returns a record field.
func F(name string, t Type) Field { return Field{name, t} }

// Padding returns an unnamed record field of n zero bytes.
func Padding(n int) Field { return Field{"", Pad{n}} }

// Dictionary returns a keyed value field of size bytes that must hold
// a dictionary.
func Dictionary(size int) Type { return KeyedValue{size, TagDict} }

// InPtr marks t as a nullable input.
func InPtr(t Type) Type { return Pointer{DirIn, t} }

// OutPtr marks t as a nullable output.
func OutPtr(t Type) Type { return Pointer{DirOut, t} }

// InOutPtr marks t as a nullable input and output.
func InOutPtr(t Type) Type { return Pointer{DirInOut, t} }

// InOut marks t as a non-nullable input and output.
func InOut(t Type) Type { return InOutValue{t} }

// HexOf renders t in hexadecimal.
func HexOf(t Type) Type { return Hex{t} }

// unwrap returns the type t wraps, if t is a wrapper or an array.
func unwrap(t Type) (Type, bool) {
	switch v := t.(type) {
	case Pointer:
		return v.Elem, true
	case InOutValue:
		return v.Elem, true
	case Hex:
		return v.Elem, true
	case Array:
		return v.Elem, true
	case LinkedArray:
		return v.Elem, true
	}
	return nil, false
}

// base strips direction and display wrappers off t, stopping at the
// first type that is not one.
func base(t Type) Type {
	for {
		switch v := t.(type) {
		case Pointer:
			t = v.Elem
		case InOutValue:
			t = v.Elem
		case Hex:
			t = v.Elem
		default:
			return t
		}
	}
}

// isHex reports whether t renders in hexadecimal.
func isHex(t Type) bool {
	for {
		switch v := t.(type) {
		case Hex:
			return true
		case Pointer:
			t = v.Elem
		case InOutValue:
			t = v.Elem
		default:
			return false
		}
	}
}

// contains reports whether t, or any type nested within it, matches
// pred.
func contains(t Type, pred func(Type) bool) bool {
	if pred(t) {
		return true
	}
	if r, ok := t.(Record); ok {
		for _, f := range r.Fields {
			if contains(f.Type, pred) {
				return true
			}
		}
		return false
	}
	if inner, ok := unwrap(t); ok {
		return contains(inner, pred)
	}
	return false
}

func isKeyed(t Type) bool {
	_, ok := t.(KeyedValue)
	return ok
}

func isLinked(t Type) bool {
	switch t.(type) {
	case LinkedArray, LinkedBytes:
		return true
	}
	return false
}

// badWidth reports whether t is a scalar whose width the codec has no
// encoding for.
func badWidth(t Type) bool {
	switch v := t.(type) {
	case Int:
		return !intWidth(v.Width)
	case Bool:
		return !intWidth(v.Width)
	case Float:
		return v.Width != 4 && v.Width != 8
	}
	return false
}

func intWidth(w int) bool {
	switch w {
	case 1, 2, 4, 8:
		return true
	}
	return false
}

// encodable reports whether values of t can be encoded. Keyed values
// are decode-only.
func encodable(t Type) bool {
	return !contains(t, isKeyed)
}
