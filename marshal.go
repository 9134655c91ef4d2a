package dcpipc

import (
	"errors"
	"fmt"
	"math"

	"github.com/asahi-tools/dcpipc/fragments"
	"go.uber.org/zap"
)

// Values are represented as follows:
//
//   - [Int] as the Go integer of the same width and signedness
//     (uint32, int8, ...). Any Go integer that fits is accepted when
//     encoding.
//   - [Bool] as bool.
//   - [Float] as float32 or float64.
//   - [FourCC] and [CString] as string.
//   - [Array] and [LinkedArray] as []any. Any slice or array is
//     accepted when encoding.
//   - [Bytes] and [LinkedBytes] as []byte.
//   - [Record] as map[string]any keyed by field name.
//   - [KeyedValue] as described in [DecodeKeyed], or nil if its
//     storage is all zero.
//
// A nil value encodes as the zero bytes of its type.

// encodeValue appends the encoding of v as t to e.
func encodeValue(e *fragments.Encoder, t Type, v any, sc scope) error {
	if v == nil {
		e.Zero(t.Size())
		return nil
	}

	switch t := t.(type) {
	case Int:
		bits, err := intBits(t, v)
		if err != nil {
			return err
		}
		e.Uint(t.Width, bits)
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("cannot encode %T as %s", v, t)
		}
		var bits uint64
		if b {
			bits = 1
		}
		e.Uint(t.Width, bits)
	case Float:
		f, ok := asFloat(v)
		if !ok {
			return fmt.Errorf("cannot encode %T as %s", v, t)
		}
		if t.Width == 4 {
			e.Uint32(math.Float32bits(float32(f)))
		} else {
			e.Uint64(math.Float64bits(f))
		}
	case FourCC:
		s, ok := v.(string)
		if !ok || len(s) != 4 {
			return fmt.Errorf("cannot encode %#v as %s, need a 4 character string", v, t)
		}
		e.Uint32(uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3]))
	case Pad:
		e.Zero(t.N)
	case Array:
		elems, ok := asSlice(v)
		if !ok {
			return fmt.Errorf("cannot encode %T as %s", v, t)
		}
		if len(elems) != t.Count {
			return fmt.Errorf("cannot encode %d elements as %s", len(elems), t)
		}
		for i, elem := range elems {
			if err := encodeValue(e, t.Elem, elem, sc); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
	case Bytes:
		bs, err := asBytes(v, t)
		if err != nil {
			return err
		}
		if len(bs) > t.N {
			return fmt.Errorf("cannot encode %d bytes as %s", len(bs), t)
		}
		e.Bytes(bs, t.N)
	case CString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("cannot encode %T as %s", v, t)
		}
		if len(s) >= t.N {
			return fmt.Errorf("string of length %d does not fit in %s", len(s), t)
		}
		e.Bytes([]byte(s), t.N)
	case LinkedArray:
		elems, ok := asSlice(v)
		if !ok {
			return fmt.Errorf("cannot encode %T as %s", v, t)
		}
		if len(elems) > t.Max {
			return fmt.Errorf("cannot encode %d elements as %s", len(elems), t)
		}
		n := min(sc.clampLength(t.CountField, t.Max), len(elems))
		for i, elem := range elems[:n] {
			if err := encodeValue(e, t.Elem, elem, sc); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		e.Zero((t.Max - n) * t.Elem.Size())
	case LinkedBytes:
		bs, err := asBytes(v, t)
		if err != nil {
			return err
		}
		if len(bs) > t.Max {
			return fmt.Errorf("cannot encode %d bytes as %s", len(bs), t)
		}
		n := min(sc.clampLength(t.SizeField, t.Max), len(bs))
		e.Bytes(bs[:n], t.Max)
	case Record:
		fields, ok := asFields(v)
		if !ok {
			return fmt.Errorf("cannot encode %T as %s", v, t)
		}
		return encodeFields(e, t.Fields, fields, sc.nested(fields))
	case KeyedValue:
		return EncodeKeyed(v)
	case Pointer:
		return encodeValue(e, t.Elem, v, sc)
	case InOutValue:
		return encodeValue(e, t.Elem, v, sc)
	case Hex:
		return encodeValue(e, t.Elem, v, sc)
	default:
		return fmt.Errorf("unknown type %T", t)
	}
	return nil
}

func asBytes(v any, t Type) ([]byte, error) {
	switch bs := v.(type) {
	case []byte:
		return bs, nil
	case string:
		return []byte(bs), nil
	}
	return nil, fmt.Errorf("cannot encode %T as %s", v, t)
}

// encodeFields appends the encoding of the named values vals to e,
// following fields in order. Missing values encode as zero bytes.
func encodeFields(e *fragments.Encoder, fields []Field, vals map[string]any, sc scope) error {
	for _, f := range fields {
		var v any
		if f.Name != "" {
			v = vals[f.Name]
		}
		if err := encodeValue(e, f.Type, v, sc); err != nil {
			var ee EncodeError
			if errors.As(err, &ee) {
				return err
			}
			return EncodeError{f.Name, f.Type.String(), err}
		}
	}
	return nil
}

// decodeValue decodes one value of type t from d.
func decodeValue(d *fragments.Decoder, t Type, sc scope) (any, error) {
	off := d.Offset()
	wrap := func(err error) error {
		var de DecodeError
		if errors.As(err, &de) {
			return err
		}
		return DecodeError{t.String(), off, err}
	}

	switch t := t.(type) {
	case Int:
		u, err := d.Uint(t.Width)
		if err != nil {
			return nil, wrap(err)
		}
		return intValue(t, u), nil
	case Bool:
		u, err := d.Uint(t.Width)
		if err != nil {
			return nil, wrap(err)
		}
		return u&1 != 0, nil
	case Float:
		u, err := d.Uint(t.Width)
		if err != nil {
			return nil, wrap(err)
		}
		if t.Width == 4 {
			return math.Float32frombits(uint32(u)), nil
		}
		return math.Float64frombits(u), nil
	case FourCC:
		u, err := d.Uint32()
		if err != nil {
			return nil, wrap(err)
		}
		return string([]byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}), nil
	case Pad:
		if err := d.Skip(t.N); err != nil {
			return nil, wrap(err)
		}
		return nil, nil
	case Array:
		ret := make([]any, t.Count)
		for i := range ret {
			v, err := decodeValue(d, t.Elem, sc)
			if err != nil {
				return nil, wrap(err)
			}
			ret[i] = v
		}
		return ret, nil
	case Bytes:
		bs, err := d.Read(t.N)
		if err != nil {
			return nil, wrap(err)
		}
		return append([]byte(nil), bs...), nil
	case CString:
		bs, err := d.Read(t.N)
		if err != nil {
			return nil, wrap(err)
		}
		for i, b := range bs {
			if b == 0 {
				return string(bs[:i]), nil
			}
		}
		return string(bs), nil
	case LinkedArray:
		sub, err := d.Sub(t.Size())
		if err != nil {
			return nil, wrap(err)
		}
		n := linkedLength(sc, t.CountField, t.Max)
		ret := make([]any, n)
		for i := range ret {
			v, err := decodeValue(sub, t.Elem, sc)
			if err != nil {
				return nil, wrap(err)
			}
			ret[i] = v
		}
		return ret, nil
	case LinkedBytes:
		bs, err := d.Read(t.Max)
		if err != nil {
			return nil, wrap(err)
		}
		n := linkedLength(sc, t.SizeField, t.Max)
		return append([]byte(nil), bs[:n]...), nil
	case Record:
		vals, err := decodeFields(d, t.Fields, sc.local)
		if err != nil {
			return nil, wrap(err)
		}
		return vals, nil
	case KeyedValue:
		sub, err := d.Sub(t.N)
		if err != nil {
			return nil, wrap(err)
		}
		// Zeroed storage holds no object. No tag is zero.
		if isZero(sub.In) {
			return nil, nil
		}
		v, err := DecodeKeyed(sub, t.Tag)
		if err != nil {
			return nil, wrap(err)
		}
		return v, nil
	case Pointer:
		return decodeValue(d, t.Elem, sc)
	case InOutValue:
		return decodeValue(d, t.Elem, sc)
	case Hex:
		return decodeValue(d, t.Elem, sc)
	default:
		return nil, fmt.Errorf("unknown type %T", t)
	}
}

func isZero(bs []byte) bool {
	for _, b := range bs {
		if b != 0 {
			return false
		}
	}
	return true
}

// linkedLength returns the meaningful length of a linked field,
// clamped to its capacity.
func linkedLength(sc scope, field string, capacity int) int {
	n := sc.length(field)
	if n > capacity {
		Logger().Debug("clamping linked field length to capacity",
			zap.String("field", field),
			zap.Int("length", n),
			zap.Int("capacity", capacity))
	}
	return sc.clampLength(field, capacity)
}

func intValue(t Int, u uint64) any {
	switch {
	case t.Width == 1 && t.Signed:
		return int8(u)
	case t.Width == 1:
		return uint8(u)
	case t.Width == 2 && t.Signed:
		return int16(u)
	case t.Width == 2:
		return uint16(u)
	case t.Width == 4 && t.Signed:
		return int32(u)
	case t.Width == 4:
		return uint32(u)
	case t.Signed:
		return int64(u)
	default:
		return u
	}
}

// decodeFields decodes fields in order from d, and returns the
// decoded values by name.
//
// Fields whose length is linked to a sibling are decoded after all
// other fields, so that the sibling can come after them in the
// buffer.
func decodeFields(d *fragments.Decoder, fields []Field, parent map[string]any) (map[string]any, error) {
	type deferred struct {
		f   Field
		sub *fragments.Decoder
	}
	var (
		vals  = map[string]any{}
		later []deferred
		sc    = scope{vals, parent}
	)
	for _, f := range fields {
		if contains(f.Type, isLinked) {
			sub, err := d.Sub(f.Type.Size())
			if err != nil {
				return nil, DecodeError{f.Type.String(), d.Offset(), err}
			}
			later = append(later, deferred{f, sub})
			continue
		}
		v, err := decodeValue(d, f.Type, sc)
		if err != nil {
			return nil, err
		}
		if f.Name != "" {
			vals[f.Name] = v
		}
	}
	for _, l := range later {
		v, err := decodeValue(l.sub, l.f.Type, sc)
		if err != nil {
			return nil, err
		}
		vals[l.f.Name] = v
	}
	return vals, nil
}

// zeroValue returns the value that decodes from t's all-zero
// encoding. Keyed values have no zero encoding, and yield nil.
func zeroValue(t Type) any {
	if !encodable(t) {
		return nil
	}
	d := fragments.Decoder{
		Order: fragments.LittleEndian,
		In:    make([]byte, t.Size()),
	}
	v, err := decodeValue(&d, t, scope{})
	if err != nil {
		return nil
	}
	return v
}
