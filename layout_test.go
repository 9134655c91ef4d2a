package dcpipc

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func layoutTable(l Layout) string {
	var sb strings.Builder
	l.WriteTable(&sb, "")
	return sb.String()
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name    string
		m       *Method
		request string
		reply   string
	}{
		{
			"linked inout",
			readEDTData,
			`
0x0: key char[0x40] (0x40)
0x40: count uint32_t (0x4)
0x44: value inout uint32_t[count<=8] (0x20)
`,
			`
0x0: value inout uint32_t[count<=8] (0x20)
0x20: ret bool (0x1)
0x21: - pad[0x3] (0x3)
`,
		},
		{
			"array of nullable",
			swapSubmit,
			`
0x0: swap_rec in bytes[0x320]* (0x320)
0x320: surfaces in bytes[0x204]*[4] (0x810)
0xb30: surfAddr uint64_t[4] (0x20)
0xb50: unkBool bool (0x1)
0xb51: unkFloat double (0x8)
0xb59: unkInt uint32_t (0x4)
0xb5d: swap_rec_null bool (0x1)
0xb5e: surfaces_null bool[4] (0x4)
0xb62: unkOutBool_null bool (0x1)
0xb63: - pad[0x1] (0x1)
`,
			`
0x0: unkOutBool out bool* (0x1)
0x1: ret uint32_t (0x4)
0x5: - pad[0x3] (0x3)
`,
		},
		{
			"positional",
			mapBuf,
			`
0x0: arg0 in uint64_t* (0x8)
0x8: arg3 bool (0x1)
0x9: arg0_null bool (0x1)
0xa: arg1_null bool (0x1)
0xb: arg2_null bool (0x1)
`,
			`
0x0: arg1 out uint64_t* (0x8)
0x8: arg2 out uint64_t* (0x8)
0x10: ret uint32_t (0x4)
`,
		},
		{
			"void",
			willPowerOff,
			"\n",
			"\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(layoutTable(tc.m.Request), strings.TrimPrefix(tc.request, "\n")); diff != "" {
				t.Errorf("request layout of %s wrong (-got+want):\n%s", tc.m, diff)
			}
			if diff := cmp.Diff(layoutTable(tc.m.Reply), strings.TrimPrefix(tc.reply, "\n")); diff != "" {
				t.Errorf("reply layout of %s wrong (-got+want):\n%s", tc.m, diff)
			}
			if tc.m.Request.Size%4 != 0 || tc.m.Reply.Size%4 != 0 {
				t.Errorf("layout sizes %#x/%#x not a multiple of 4", tc.m.Request.Size, tc.m.Reply.Size)
			}
		})
	}
}

func TestParams(t *testing.T) {
	tests := []struct {
		m    *Method
		want []Param
	}{
		{
			readEDTData,
			[]Param{
				{Name: "key", Type: CStringOf(0x40), Dir: DirIn},
				{Name: "count", Type: Uint32, Dir: DirIn},
				{Name: "value", Type: InOut(LinkedArrayOf(8, "count", Uint32)), Dir: DirInOut},
			},
		},
		{
			swapStart,
			[]Param{
				{Name: "swap_id", Type: swapStart.Params[0].Type, Dir: DirInOut, Nullable: true},
				{Name: "client", Type: swapStart.Params[1].Type, Dir: DirInOut, Nullable: true},
			},
		},
		{
			swapSubmit,
			[]Param{
				{Name: "swap_rec", Type: swapSubmit.Params[0].Type, Dir: DirIn, Nullable: true},
				{Name: "surfaces", Type: swapSubmit.Params[1].Type, Dir: DirIn, Nullable: true, ArrayOfNullable: true, Count: 4},
				{Name: "surfAddr", Type: swapSubmit.Params[2].Type, Dir: DirIn},
				{Name: "unkBool", Type: Bool8, Dir: DirIn},
				{Name: "unkFloat", Type: Float64, Dir: DirIn},
				{Name: "unkInt", Type: Uint32, Dir: DirIn},
				{Name: "unkOutBool", Type: OutPtr(Bool8), Dir: DirOut, Nullable: true},
			},
		},
	}

	for _, tc := range tests {
		if diff := cmp.Diff(tc.m.Params, tc.want); diff != "" {
			t.Errorf("%s params wrong (-got+want):\n%s", tc.m.Name, diff)
		}
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		typ  Type
		want Direction
	}{
		{Uint32, DirIn},
		{InPtr(Uint32), DirIn},
		{OutPtr(Uint32), DirOut},
		{InOutPtr(Uint32), DirInOut},
		{InOut(Uint32), DirInOut},
		// The innermost direction wrapper wins.
		{OutPtr(InPtr(Uint32)), DirIn},
		{InPtr(InOut(Uint32)), DirInOut},
		{ArrayOf(2, OutPtr(Uint32)), DirOut},
		{HexOf(OutPtr(Uint32)), DirOut},
	}
	for _, tc := range tests {
		if got := resolveDirection(tc.typ, DirIn); got != tc.want {
			t.Errorf("resolveDirection(%s) = %s, want %s", tc.typ, got, tc.want)
		}
	}
	if got := resolveDirection(Uint32, DirOut); got != DirOut {
		t.Errorf("resolveDirection of unwrapped return = %s, want out", got)
	}
}

func TestNullable(t *testing.T) {
	tests := []struct {
		typ             Type
		nullable, array bool
		count           int
	}{
		{Uint32, false, false, 0},
		{InOut(Uint32), false, false, 0},
		{InPtr(Uint32), true, false, 0},
		{InPtr(ArrayOf(3, Uint32)), true, false, 0},
		{ArrayOf(3, InPtr(Uint32)), true, true, 3},
		{ArrayOf(3, ArrayOf(2, OutPtr(Uint32))), true, true, 3},
		{LinkedArrayOf(5, "n", InPtr(Uint8)), true, true, 5},
	}
	for _, tc := range tests {
		nullable, array, count := resolveNullable(tc.typ)
		if nullable != tc.nullable || array != tc.array || count != tc.count {
			t.Errorf("resolveNullable(%s) = %v, %v, %d, want %v, %v, %d", tc.typ, nullable, array, count, tc.nullable, tc.array, tc.count)
		}
	}
}

func TestNullFlagsOnlyInRequest(t *testing.T) {
	for _, m := range []*Method{readEDTData, swapSubmit, mapBuf, swapStart, setPropertyDict} {
		for _, p := range m.Params {
			_, _, inReq := m.Request.Field(p.NullField())
			_, _, inReply := m.Reply.Field(p.NullField())
			if inReply {
				t.Errorf("%s: null flags of %s in reply layout", m.Name, p.Name)
			}
			if inReq != p.Nullable {
				t.Errorf("%s: null flags of %s in request = %v, want %v", m.Name, p.Name, inReq, p.Nullable)
			}
		}
	}
}

func TestMethodString(t *testing.T) {
	tests := []struct {
		m    *Method
		want string
	}{
		{readEDTData, "bool read_edt_data(char[0x40] key, uint32_t count, inout uint32_t[count<=8] value)"},
		{mapBuf, "uint32_t map_buf(in uint64_t* arg0, out uint64_t* arg1, out uint64_t* arg2, bool arg3)"},
		{willPowerOff, "void will_power_off_signal()"},
	}
	for _, tc := range tests {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("Method.String() = %q, want %q", got, tc.want)
		}
	}
}

func TestNewMethodErrors(t *testing.T) {
	tests := []struct {
		name   string
		ret    Type
		params []Field
	}{
		{"duplicate", nil, []Field{F("a", Uint8), F("a", Uint32)}},
		{"reserved ret", Uint32, []Field{F("ret", Uint8)}},
		{"empty name", nil, []Field{F("", Uint8)}},
		{"no type", nil, []Field{F("a", nil)}},
		{"null flag collision", nil, []Field{F("a", InPtr(Uint8)), F("a_null", Uint8)}},
		{"dangling link", nil, []Field{F("v", LinkedArrayOf(4, "n", Uint8))}},
		{"nullable inout keyed", nil, []Field{F("d", InOutPtr(Dictionary(0x100)))}},
		{"int width", nil, []Field{F("x", Int{Width: 3})}},
		{"bool width", nil, []Field{F("b", Bool{Width: 5})}},
		{"float width", nil, []Field{F("f", Float{Width: 2})}},
		{"nested width", nil, []Field{F("r", InPtr(Record{Name: "r", Fields: []Field{F("a", Uint32), F("b", Int{Width: 6})}}))}},
		{"ret width", Int{Width: 16}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewMethod(tc.ret, "test", tc.params...)
			if err == nil {
				t.Fatalf("NewMethod(%v) = %s, want error", tc.params, m)
			}
			if !errors.Is(err, ErrContract) {
				t.Errorf("NewMethod error %v is not ErrContract", err)
			}
		})
	}
}
