package catalog

import "github.com/asahi-tools/dcpipc"

func unifiedPipeline2() *dcpipc.Service {
	return &dcpipc.Service{
		Name: "UnifiedPipeline2",
		Methods: map[string]*dcpipc.Method{
			"A357": method(nil, "set_create_DFB"),
			"A358": method(ioMFBStatus, "vi_set_temperature_hint"),

			"D100": method(nil, "match_pmu_service"),
			"D101": method(dcpipc.Uint32, "UNK_get_some_field"),
			"D103": method(nil, "set_boolean_property", f("key", key), f("value", dcpipc.Bool8)),
			"D106": method(nil, "removeProperty", f("key", key)),
			"D107": method(dcpipc.Bool8, "create_provider_service"),
			"D108": method(dcpipc.Bool8, "create_product_service"),
			"D109": method(dcpipc.Bool8, "create_PMU_service"),
			"D110": method(dcpipc.Bool8, "create_iomfb_service"),
			"D111": method(dcpipc.Bool8, "create_backlight_service"),
			"D116": method(dcpipc.Bool8, "start_hardware_boot"),
			"D118": method(dcpipc.Bool8, "is_waking_from_hibernate"),
			"D120": method(dcpipc.Bool8, "read_edt_data",
				f("key", key),
				f("count", dcpipc.Uint32),
				f("value", dcpipc.InOut(dcpipc.LinkedArrayOf(8, "count", dcpipc.Uint32)))),

			"D122": method(dcpipc.Bool8, "setDCPAVPropStart", f("length", dcpipc.Uint32)),
			"D123": method(dcpipc.Bool8, "setDCPAVPropChunk",
				f("data", dcpipc.HexOf(dcpipc.LinkedBytesOf(0x1000, "length"))),
				f("offset", dcpipc.Uint32),
				f("length", dcpipc.Uint32)),
			"D124": method(dcpipc.Bool8, "setDCPAVPropEnd", f("key", key)),
		},
	}
}
