package dcpipc

import (
	"errors"
	"testing"

	"github.com/asahi-tools/dcpipc/fragments"
	"github.com/google/go-cmp/cmp"
)

func TestDecodeKeyed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{
			"single number",
			`64 01000000
			   73 01000000 61 00
			   6e 0500000000000000`,
			Dict{"a": uint64(5)},
		},
		{
			"empty",
			`64 00000000`,
			Dict{},
		},
		{
			"nested",
			`64 02000000
			   73 01000000 6b 00
			   64 01000000
			     73 01000000 78 00
			     73 02000000 797a 00
			   73 02000000 6e6e 00
			   6e ffffffffffffffff`,
			Dict{
				"k":  Dict{"x": "yz"},
				"nn": uint64(0xffffffffffffffff),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := fragments.Decoder{Order: fragments.LittleEndian, In: unhex(t, tc.raw)}
			got, err := DecodeKeyed(&d, TagDict)
			if err != nil {
				t.Fatalf("DecodeKeyed: %v", err)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("DecodeKeyed wrong result (-got+want):\n%s", diff)
			}
			if d.Remaining() != 0 {
				t.Errorf("DecodeKeyed left %d bytes unread", d.Remaining())
			}
		})
	}
}

func TestDecodeKeyedErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"top level mismatch", `6e 0500000000000000`},
		{"unknown tag", `64 01000000 78`},
		{"number key", `64 01000000 6e 0100000000000000 6e 0100000000000000`},
		{"missing terminator", `64 01000000 73 01000000 61 01`},
		{"bad utf8", `64 01000000 73 01000000 ff 00 6e 0000000000000000`},
		{"truncated count", `64 0100`},
		{"truncated string", `64 01000000 73 05000000 6162`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := fragments.Decoder{Order: fragments.LittleEndian, In: unhex(t, tc.raw)}
			got, err := DecodeKeyed(&d, TagDict)
			if err == nil {
				t.Fatalf("DecodeKeyed = %v, want error", got)
			}
			var de DecodeError
			if !errors.As(err, &de) {
				t.Errorf("DecodeKeyed error %v is not a DecodeError", err)
			}
		})
	}
}

func TestDecodeKeyedOtherTag(t *testing.T) {
	d := fragments.Decoder{Order: fragments.LittleEndian, In: unhex(t, `73 03000000 616263 00`)}
	got, err := DecodeKeyed(&d, TagString)
	if err != nil {
		t.Fatal(err)
	}
	if got != "abc" {
		t.Errorf("DecodeKeyed = %v, want abc", got)
	}
}

func TestEncodeKeyed(t *testing.T) {
	for _, v := range []any{Dict{"a": uint64(5)}, uint64(1), "foo", nil} {
		err := EncodeKeyed(v)
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("EncodeKeyed(%v) got err %v, want ErrUnsupported", v, err)
		}
	}
}

func TestKeyedInMethod(t *testing.T) {
	raw := make([]byte, setPropertyDict.Request.Size)
	copy(raw, "k")
	_, off, _ := setPropertyDict.Request.Field("value")
	copy(raw[off:], unhex(t, `64 01000000 73 01000000 61 00 6e 0500000000000000`))

	got, err := setPropertyDict.DecodeRequest(raw)
	if err != nil {
		t.Fatal(err)
	}
	want := Args{
		"key":        "k",
		"value":      Dict{"a": uint64(5)},
		"value_null": false,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("DecodeRequest wrong result (-got+want):\n%s", diff)
	}
}
