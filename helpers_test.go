package dcpipc

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/asahi-tools/dcpipc/fragments"
)

// unhex decodes s, a hex string that may contain spaces and
// newlines for readability.
func unhex(t *testing.T, s string) []byte {
	t.Helper()
	s = strings.Join(strings.Fields(s), "")
	ret, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("invalid hex %q: %v", s, err)
	}
	return ret
}

func encodeOne(typ Type, v any) ([]byte, error) {
	e := fragments.Encoder{Order: fragments.LittleEndian}
	if err := encodeValue(&e, typ, v, scope{}); err != nil {
		return nil, err
	}
	return e.Out, nil
}

func decodeOne(typ Type, raw []byte) (any, error) {
	d := fragments.Decoder{Order: fragments.LittleEndian, In: raw}
	return decodeValue(&d, typ, scope{})
}

// testMethods are method declarations that exercise every corner of
// the layout engine.
var (
	readEDTData = MustMethod(Bool8, "read_edt_data",
		F("key", CStringOf(0x40)),
		F("count", Uint32),
		F("value", InOut(LinkedArrayOf(8, "count", Uint32))))

	swapSubmit = MustMethod(Uint32, "swap_submit_dcp",
		F("swap_rec", InPtr(BytesOf(0x320))),
		F("surfaces", ArrayOf(4, InPtr(HexOf(BytesOf(0x204))))),
		F("surfAddr", ArrayOf(4, HexOf(Uint64))),
		F("unkBool", Bool8),
		F("unkFloat", Float64),
		F("unkInt", Uint32),
		F("unkOutBool", OutPtr(Bool8)))

	mapBuf = MustPositional(Uint32, "map_buf",
		InPtr(Uint64),
		OutPtr(Uint64),
		OutPtr(Uint64),
		Bool8)

	swapStart = MustMethod(Uint32, "swap_start",
		F("swap_id", InOutPtr(Uint32)),
		F("client", InOutPtr(RecordOf("IOUserClient",
			F("addr", HexOf(Uint64)),
			F("unk", Uint32),
			F("flag1", Uint8),
			F("flag2", Uint8),
			Padding(2)))))

	setPropertyDict = MustMethod(Bool8, "setProperty_dict",
		F("key", CStringOf(0x40)),
		F("value", InPtr(Dictionary(0x1000))))

	willPowerOff = MustMethod(nil, "will_power_off_signal")
)
