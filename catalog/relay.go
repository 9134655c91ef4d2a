package catalog

import "github.com/asahi-tools/dcpipc"

// Property identifiers published through PropRelay.
const (
	PropBrightnessCorrection = 14
)

func propRelay() *dcpipc.Service {
	return &dcpipc.Service{
		Name: "PropRelay",
		Methods: map[string]*dcpipc.Method{
			"D300": method(nil, "pr_publish", f("prop_id", dcpipc.Uint32), f("value", dcpipc.Int32)),
		},
	}
}

func serviceRelay() *dcpipc.Service {
	return &dcpipc.Service{
		Name: "ServiceRelay",
		Methods: map[string]*dcpipc.Method{
			"D401": method(dcpipc.Bool8, "sr_get_uint_prop",
				f("obj", dcpipc.FourCharCode),
				f("key", key),
				f("value", dcpipc.InOutPtr(dcpipc.Uint64))),
			"D408": method(dcpipc.Uint64, "sr_getClockFrequency",
				f("obj", dcpipc.FourCharCode),
				f("arg", dcpipc.Uint32)),
			"D411": method(ioMFBStatus, "sr_mapDeviceMemoryWithIndex",
				f("obj", dcpipc.FourCharCode),
				f("index", dcpipc.Uint32),
				f("flags", dcpipc.Uint32),
				f("addr", dcpipc.OutPtr(dcpipc.Uint64)),
				f("length", dcpipc.OutPtr(dcpipc.Uint64))),
			"D413": method(dcpipc.Bool8, "sr_setProperty_dict",
				f("obj", dcpipc.FourCharCode),
				f("key", key),
				f("value", dcpipc.InPtr(osDictionary))),
			"D414": method(dcpipc.Bool8, "sr_setProperty_int",
				f("obj", dcpipc.FourCharCode),
				f("key", key),
				f("value", dcpipc.InPtr(dcpipc.Uint64))),
			"D415": method(dcpipc.Bool8, "sr_setProperty_bool",
				f("obj", dcpipc.FourCharCode),
				f("key", key),
				f("value", dcpipc.InPtr(dcpipc.Bool32))),
		},
	}
}

func memDescRelay() *dcpipc.Service {
	return &dcpipc.Service{
		Name: "MemDescRelay",
		Methods: map[string]*dcpipc.Method{
			"D451": positional(dcpipc.Uint32, "allocate_buffer",
				dcpipc.Uint32,
				dcpipc.Uint64,
				dcpipc.Uint32,
				dcpipc.OutPtr(dcpipc.Uint64),
				dcpipc.OutPtr(dcpipc.Uint64),
				dcpipc.OutPtr(dcpipc.Uint64)),
			"D452": method(dcpipc.Uint32, "map_physical",
				f("paddr", dcpipc.Uint64),
				f("size", dcpipc.Uint64),
				f("flags", dcpipc.Uint32),
				f("dva", dcpipc.OutPtr(dcpipc.Uint64)),
				f("dvasize", dcpipc.OutPtr(dcpipc.Uint64))),
		},
	}
}
