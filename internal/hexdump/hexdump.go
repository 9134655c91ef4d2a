// Package hexdump renders byte buffers as canonical hex+ASCII
// listings, collapsing runs of identical lines.
package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

const stride = 16

// Dump writes a listing of data to w, each line prefixed by indent.
// A run of lines identical to the one before it is shown as a single
// "*" line.
func Dump(w io.Writer, data []byte, indent string) error {
	var (
		last []byte
		skip bool
	)
	for off := 0; off < len(data); off += stride {
		line := data[off:min(off+stride, len(data))]
		if last != nil && bytes.Equal(line, last) {
			if !skip {
				if _, err := fmt.Fprintf(w, "%s%08x  *\n", indent, off); err != nil {
					return err
				}
				skip = true
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s%08x  %s |%s|\n", indent, off, hexBytes(line), printable(line)); err != nil {
			return err
		}
		last, skip = line, false
	}
	return nil
}

// String returns the listing [Dump] would write.
func String(data []byte, indent string) string {
	var sb strings.Builder
	Dump(&sb, data, indent)
	return sb.String()
}

func hexBytes(line []byte) string {
	var sb strings.Builder
	for i := range stride {
		if i == stride/2 {
			sb.WriteByte(' ')
		}
		if i < len(line) {
			fmt.Fprintf(&sb, "%02x ", line[i])
		} else {
			sb.WriteString("   ")
		}
	}
	return sb.String()
}

func printable(line []byte) string {
	ret := make([]byte, len(line))
	for i, b := range line {
		if b < 0x20 || b > 0x7e {
			b = '.'
		}
		ret[i] = b
	}
	return string(ret)
}
