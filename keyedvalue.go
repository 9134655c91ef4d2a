package dcpipc

import (
	"fmt"
	"unicode/utf8"

	"github.com/asahi-tools/dcpipc/fragments"
)

// Tag identifies the kind of a self-describing keyed value.
type Tag byte

const (
	// TagDict is a dictionary: a uint32 count, followed by that many
	// key/value pairs, each itself a tagged value. Keys must be
	// strings.
	TagDict Tag = 'd'
	// TagNumber is a uint64.
	TagNumber Tag = 'n'
	// TagString is a uint32 length, that many bytes of UTF-8, and a
	// terminating zero byte.
	TagString Tag = 's'
)

func (t Tag) String() string {
	return fmt.Sprintf("%q", byte(t))
}

// Dict is a decoded keyed dictionary.
type Dict map[string]any

// DecodeKeyed decodes one self-describing value from d. The outermost
// value must carry the tag want. Nested values may carry any tag.
//
// Dictionaries decode to [Dict], numbers to uint64 and strings to
// string.
func DecodeKeyed(d *fragments.Decoder, want Tag) (any, error) {
	return decodeKeyed(d, want, false)
}

func decodeKeyed(d *fragments.Decoder, want Tag, nested bool) (any, error) {
	off := d.Offset()
	b, err := d.Uint8()
	if err != nil {
		return nil, DecodeError{"keyed value", off, err}
	}
	tag := Tag(b)
	if !nested && tag != want {
		return nil, DecodeError{"keyed value", off, fmt.Errorf("object type mismatch: got tag %s, want %s", tag, want)}
	}

	switch tag {
	case TagDict:
		count, err := d.Uint32()
		if err != nil {
			return nil, DecodeError{"keyed dictionary", off, err}
		}
		ret := Dict{}
		for i := range count {
			koff := d.Offset()
			k, err := decodeKeyed(d, 0, true)
			if err != nil {
				return nil, err
			}
			ks, ok := k.(string)
			if !ok {
				return nil, DecodeError{"keyed dictionary", koff, fmt.Errorf("key %d is %T, not a string", i, k)}
			}
			v, err := decodeKeyed(d, 0, true)
			if err != nil {
				return nil, err
			}
			ret[ks] = v
		}
		return ret, nil
	case TagNumber:
		n, err := d.Uint64()
		if err != nil {
			return nil, DecodeError{"keyed number", off, err}
		}
		return n, nil
	case TagString:
		ln, err := d.Uint32()
		if err != nil {
			return nil, DecodeError{"keyed string", off, err}
		}
		bs, err := d.Read(int(ln))
		if err != nil {
			return nil, DecodeError{"keyed string", off, err}
		}
		if !utf8.Valid(bs) {
			return nil, DecodeError{"keyed string", off, fmt.Errorf("invalid UTF-8 %q", bs)}
		}
		term, err := d.Uint8()
		if err != nil {
			return nil, DecodeError{"keyed string", off, err}
		}
		if term != 0 {
			return nil, DecodeError{"keyed string", off, fmt.Errorf("missing zero terminator, got %#x", term)}
		}
		return string(bs), nil
	default:
		return nil, DecodeError{"keyed value", off, fmt.Errorf("unknown object tag %s", tag)}
	}
}

// EncodeKeyed always fails with an [UnsupportedError]. Keyed values
// are only ever consumed, never produced.
func EncodeKeyed(v any) error {
	return UnsupportedError{fmt.Sprintf("keyed value %T", v), "encoding"}
}
