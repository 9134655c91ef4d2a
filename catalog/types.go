package catalog

import "github.com/asahi-tools/dcpipc"

// Firmware types shared across services.
var (
	// key is a property name.
	key = dcpipc.CStringOf(0x40)
	// osDictionary is a serialized property dictionary.
	osDictionary = dcpipc.Dictionary(0x1000)

	rtBWConfig = dcpipc.RecordOf("rt_bw_config_t",
		f("data", dcpipc.HexOf(dcpipc.BytesOf(0x3c))),
	)

	ioUserClient = dcpipc.RecordOf("IOUserClient",
		f("addr", dcpipc.HexOf(dcpipc.Uint64)),
		f("unk", dcpipc.Uint32),
		f("flag1", dcpipc.Uint8),
		f("flag2", dcpipc.Uint8),
		dcpipc.Padding(2),
	)

	ioMFBStatus        = dcpipc.Uint32
	ioMFBParameterName = dcpipc.Uint32
	bufferDescriptor   = dcpipc.Uint64

	swapCompleteData = dcpipc.BytesOf(0x12)
	swapInfoBlob     = dcpipc.BytesOf(0x680)
	ioMFBSwapRec     = dcpipc.BytesOf(0x320)
	ioSurface        = dcpipc.HexOf(dcpipc.BytesOf(0x204))

	ioMFBColorFixedMatrix = dcpipc.ArrayOf(5, dcpipc.ArrayOf(3, dcpipc.Uint64))
)
