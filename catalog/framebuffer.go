package catalog

import "github.com/asahi-tools/dcpipc"

func ioMobileFramebufferAP() *dcpipc.Service {
	return &dcpipc.Service{
		Name: "IOMobileFramebufferAP",
		Methods: map[string]*dcpipc.Method{
			"A401": method(dcpipc.Uint32, "start_signal"),

			"A407": method(dcpipc.Uint32, "swap_start",
				f("swap_id", dcpipc.InOutPtr(dcpipc.Uint32)),
				f("client", dcpipc.InOutPtr(ioUserClient))),
			"A408": method(dcpipc.Uint32, "swap_submit_dcp",
				f("swap_rec", dcpipc.InPtr(ioMFBSwapRec)),
				f("surfaces", dcpipc.ArrayOf(4, dcpipc.InPtr(ioSurface))),
				f("surfAddr", dcpipc.ArrayOf(4, dcpipc.HexOf(dcpipc.Uint64))),
				f("unkBool", dcpipc.Bool8),
				f("unkFloat", dcpipc.Float64),
				f("unkInt", dcpipc.Uint32),
				f("unkOutBool", dcpipc.OutPtr(dcpipc.Bool8))),

			"A410": positional(dcpipc.Uint32, "set_display_device", dcpipc.Uint32),
			"A411": method(dcpipc.Bool8, "is_main_display"),
			"A412": positional(dcpipc.Uint32, "set_digital_out_mode", dcpipc.Uint32, dcpipc.Uint32),
			"A419": positional(dcpipc.Uint32, "get_gamma_table", dcpipc.InOutPtr(dcpipc.BytesOf(0xc0c))),
			"A422": positional(dcpipc.Uint32, "set_matrix",
				dcpipc.Uint32,
				dcpipc.InPtr(dcpipc.ArrayOf(3, dcpipc.ArrayOf(3, dcpipc.Uint64)))),
			"A423": positional(dcpipc.Uint32, "set_contrast", dcpipc.InOutPtr(dcpipc.Float32)),
			"A426": positional(dcpipc.Uint32, "get_color_remap_mode", dcpipc.InOutPtr(dcpipc.Uint32)),
			"A427": positional(dcpipc.Uint32, "setBrightnessCorrection", dcpipc.Uint32),

			"A435": method(dcpipc.Uint32, "set_block_dcp",
				f("arg1", dcpipc.Uint64),
				f("arg2", dcpipc.Uint32),
				f("arg3", dcpipc.Uint32),
				f("arg4", dcpipc.ArrayOf(8, dcpipc.Uint64)),
				f("arg5", dcpipc.Uint32),
				f("data", dcpipc.LinkedBytesOf(0x1000, "length")),
				f("length", dcpipc.Uint64)),
			"A438": method(dcpipc.Uint32, "swap_set_color_matrix",
				f("matrix", dcpipc.InOutPtr(ioMFBColorFixedMatrix)),
				f("func", dcpipc.Uint32),
				f("unk", dcpipc.Uint32)),
			"A439": method(dcpipc.Uint32, "set_parameter_dcp",
				f("param", ioMFBParameterName),
				f("value", dcpipc.LinkedArrayOf(4, "count", dcpipc.Uint64)),
				f("count", dcpipc.Uint32)),

			"A440": method(dcpipc.Uint32, "display_width"),
			"A441": method(dcpipc.Uint32, "display_height"),
			"A442": positional(nil, "get_display_size", dcpipc.OutPtr(dcpipc.Uint32), dcpipc.OutPtr(dcpipc.Uint32)),
			"A443": method(dcpipc.Int32, "do_create_default_frame_buffer"),
			"A447": positional(dcpipc.Int32, "enable_disable_video_power_savings", dcpipc.Uint32),
			"A454": method(nil, "first_client_open"),
			"A456": positional(dcpipc.Bool8, "writeDebugInfo", dcpipc.Uint64),
			"A458": positional(dcpipc.Bool8, "io_fence_notify", dcpipc.Uint32, dcpipc.Uint32, dcpipc.Uint64, ioMFBStatus),
			"A460": method(dcpipc.Bool8, "setDisplayRefreshProperties"),
			"A463": positional(nil, "flush_supportsPower", dcpipc.Bool8),
			"A468": positional(dcpipc.Uint32, "setPowerState", dcpipc.Uint64, dcpipc.Bool8, dcpipc.OutPtr(dcpipc.Uint32)),
			"A469": method(dcpipc.Bool8, "isKeepOnScreen"),

			"D552": method(dcpipc.Bool8, "setProperty_dict", f("key", key), f("value", dcpipc.InPtr(osDictionary))),
			"D561": method(dcpipc.Bool8, "setProperty_dict", f("key", key), f("value", dcpipc.InPtr(osDictionary))),
			"D563": method(dcpipc.Bool8, "setProperty_int", f("key", key), f("value", dcpipc.InPtr(dcpipc.Uint64))),
			"D565": method(dcpipc.Bool8, "setProperty_bool", f("key", key), f("value", dcpipc.InPtr(dcpipc.Bool32))),
			"D567": method(dcpipc.Bool8, "setProperty_str", f("key", key), f("value", key)),

			"D574": positional(ioMFBStatus, "powerUpDART", dcpipc.Bool8),
			"D576": positional(nil, "hotPlug_notify_gated", dcpipc.Uint64),
			"D577": positional(nil, "powerstate_notify", dcpipc.Bool8, dcpipc.Bool8),
			"D583": positional(dcpipc.Bool8, "serializeDebugInfoCb", dcpipc.Uint64, dcpipc.InPtr(dcpipc.Uint64), dcpipc.Uint32),
			"D589": positional(nil, "swap_complete_ap_gated",
				dcpipc.Uint32,
				dcpipc.Bool8,
				dcpipc.InPtr(swapCompleteData),
				swapInfoBlob,
				dcpipc.Uint32),
			"D591": positional(nil, "swap_complete_intent_gated",
				dcpipc.Uint32, dcpipc.Bool8, dcpipc.Uint32, dcpipc.Uint32, dcpipc.Uint32),
			"D598": method(nil, "find_swap_function_gated"),
		},
	}
}
