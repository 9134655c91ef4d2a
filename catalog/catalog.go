// Package catalog declares the IPC methods of the display
// coprocessor, grouped by the firmware service that implements them.
//
// Message identifiers starting with 'A' are calls from the
// application processor into the coprocessor. Identifiers starting
// with 'D' are callbacks from the coprocessor.
package catalog

import (
	"sync"

	"github.com/asahi-tools/dcpipc"
)

var (
	method     = dcpipc.MustMethod
	positional = dcpipc.MustPositional
	f          = dcpipc.F
)

// Services returns every service of the catalogue.
var Services = sync.OnceValue(func() []*dcpipc.Service {
	return []*dcpipc.Service{
		upPipeAPH13P(),
		unifiedPipeline2(),
		ioMobileFramebufferAP(),
		serviceRelay(),
		propRelay(),
		upPipe2(),
		memDescRelay(),
	}
})

// Registry returns the registry of every method of the catalogue.
var Registry = sync.OnceValue(func() *dcpipc.Registry {
	reg, err := dcpipc.NewRegistry(Services()...)
	if err != nil {
		panic(err)
	}
	return reg
})
