package fragments

import (
	"encoding/binary"

	"golang.org/x/sys/cpu"
)

// ByteOrder is the byte order used to read and write multi-byte
// values.
type ByteOrder interface {
	byteOrder
	// Name returns "little" or "big", resolving the native order to
	// the concrete order of the running CPU.
	Name() string
}

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

type wrapStd struct {
	byteOrder
}

func (w wrapStd) Name() string {
	switch w.byteOrder {
	case binary.BigEndian:
		return "big"
	case binary.LittleEndian:
		return "little"
	case binary.NativeEndian:
		if cpu.IsBigEndian {
			return "big"
		}
		return "little"
	default:
		panic("unknown ByteOrder, how did you manage to make one of those?")
	}
}

var (
	BigEndian    = wrapStd{binary.BigEndian}
	LittleEndian = wrapStd{binary.LittleEndian}
	NativeEndian = wrapStd{binary.NativeEndian}
)

// ParseByteOrder returns the ByteOrder called name, which must be
// one of "little", "big" or "native".
func ParseByteOrder(name string) (ByteOrder, bool) {
	switch name {
	case "little":
		return LittleEndian, true
	case "big":
		return BigEndian, true
	case "native":
		return NativeEndian, true
	}
	return nil, false
}
