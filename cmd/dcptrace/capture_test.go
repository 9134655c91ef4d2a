package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/asahi-tools/dcpipc"
	"github.com/google/go-cmp/cmp"
)

func writeCapture(t *testing.T, s string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.toml")
	if err := os.WriteFile(path, []byte(s), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const nestedCapture = `
[[exchange]]
dir = ">"
channel = "CMD"
offset = 0
message = "A999"
out_size = 8
request = "00000000"

[[exchange]]
dir = "<"
channel = "d"
offset = 0x40
message = "D999"
request = "0x01020304"
reply = "00 00"

[[exchange]]
channel = "CMD"
offset = 0
reply = """
00000000
00000000
"""
`

func TestLoadCapture(t *testing.T) {
	evs, err := loadCapture(writeCapture(t, nestedCapture))
	if err != nil {
		t.Fatal(err)
	}
	want := []event{
		{
			Open: &dcpipc.Exchange{
				Dir:     dcpipc.Forward,
				Channel: dcpipc.ChanCMD,
				Offset:  0,
				ID:      "A999",
				InSize:  4,
				OutSize: 8,
				Request: []byte{0, 0, 0, 0},
			},
			Channel: dcpipc.ChanCMD,
		},
		{
			Open: &dcpipc.Exchange{
				Dir:     dcpipc.Backward,
				Channel: dcpipc.ChanCB,
				Offset:  0x40,
				ID:      "D999",
				InSize:  4,
				OutSize: 2,
				Request: []byte{1, 2, 3, 4},
			},
			Channel: dcpipc.ChanCB,
			Offset:  0x40,
			Reply:   []byte{0, 0},
		},
		{
			Channel: dcpipc.ChanCMD,
			Reply:   make([]byte, 8),
		},
	}
	if diff := cmp.Diff(evs, want); diff != "" {
		t.Errorf("loadCapture wrong result (-got+want):\n%s", diff)
	}
}

func TestLoadCaptureErrors(t *testing.T) {
	tests := []struct {
		name, capture, want string
	}{
		{
			"unknown channel",
			`[[exchange]]
channel = "NOPE"
reply = ""`,
			"unknown channel",
		},
		{
			"empty entry",
			`[[exchange]]
channel = "CB"`,
			"neither request nor reply",
		},
		{
			"bad direction",
			`[[exchange]]
dir = "^"
channel = "CB"
message = "D100"
request = ""`,
			"invalid direction",
		},
		{
			"bad message",
			`[[exchange]]
dir = ">"
channel = "CB"
message = "D1000"
request = ""`,
			"invalid message identifier",
		},
		{
			"bad hex",
			`[[exchange]]
dir = ">"
channel = "CB"
message = "D100"
request = "zz"`,
			"request:",
		},
		{
			"unknown key",
			`[[exchange]]
dir = ">"
channel = "CB"
message = "D100"
request = ""
rquest = ""`,
			"unknown keys",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadCapture(writeCapture(t, tc.capture))
			if err == nil {
				t.Fatal("loadCapture succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("loadCapture error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestReplay(t *testing.T) {
	evs, err := loadCapture(writeCapture(t, nestedCapture))
	if err != nil {
		t.Fatal(err)
	}
	reg, err := dcpipc.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	tr := dcpipc.NewTracker(&dcpipc.Formatter{Registry: reg, Out: &out})
	if err := replay(tr, evs); err != nil {
		t.Fatal(err)
	}
	want := `>C[0x0] A999 0x4/0x8
  <d[0x40] D999 0x4/0x2
  >d[0x40] D999 0x4/0x2
<C[0x0] A999 0x4/0x8
`
	if diff := cmp.Diff(out.String(), want); diff != "" {
		t.Errorf("replay output wrong (-got+want):\n%s", diff)
	}
	if open := tr.Open(); len(open) != 0 {
		t.Errorf("exchanges left open: %v", open)
	}
}

func TestParseHex(t *testing.T) {
	got, err := parseHex("0x0102 0304\n\t05")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, []byte{1, 2, 3, 4, 5}); diff != "" {
		t.Errorf("parseHex wrong result (-got+want):\n%s", diff)
	}
	if _, err := parseHex("0x1"); err == nil {
		t.Error("parseHex of odd length succeeded")
	}
}
