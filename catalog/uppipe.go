package catalog

import "github.com/asahi-tools/dcpipc"

func upPipeAPH13P() *dcpipc.Service {
	return &dcpipc.Service{
		Name: "UPPipeAP_H13P",
		Methods: map[string]*dcpipc.Method{
			"A000": method(dcpipc.Bool8, "late_init_signal"),
			"A029": method(nil, "setup_video_limits"),
			"A034": positional(nil, "update_notify_clients_dcp", dcpipc.ArrayOf(13, dcpipc.Uint32)),
			"A036": method(dcpipc.Bool8, "apt_supported"),

			"D000": method(dcpipc.Bool8, "did_boot_signal"),
			"D001": method(dcpipc.Bool8, "did_power_on_signal"),
			"D002": method(nil, "will_power_off_signal"),
			"D003": method(nil, "rt_bandwidth_setup_ap", f("config", dcpipc.OutPtr(rtBWConfig))),
		},
	}
}

func upPipe2() *dcpipc.Service {
	return &dcpipc.Service{
		Name: "UPPipe2",
		Methods: map[string]*dcpipc.Method{
			"A103": method(dcpipc.Uint64, "test_control", f("cmd", dcpipc.Uint64), f("arg", dcpipc.Uint32)),
			"A131": method(dcpipc.Bool8, "pmu_service_matched"),

			"D201": positional(dcpipc.Uint32, "map_buf",
				dcpipc.InPtr(bufferDescriptor),
				dcpipc.OutPtr(dcpipc.Uint64),
				dcpipc.OutPtr(dcpipc.Uint64),
				dcpipc.Bool8),

			"D206": method(dcpipc.Bool8, "match_pmu_service_2"),
			"D207": method(dcpipc.Bool8, "match_backlight_service"),
			"D208": method(dcpipc.Uint64, "get_calendar_time_ms"),
		},
	}
}
