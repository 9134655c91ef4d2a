package dcpipc

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// loop returns a SendFunc that serves requests for m with h.
func loop(m *Method, h Handler) SendFunc {
	return func(ctx context.Context, req []byte) ([]byte, error) {
		return m.Callback(ctx, h, req)
	}
}

func TestLinkedRoundTrip(t *testing.T) {
	args := Args{
		"key":   "edt",
		"count": uint32(3),
		"value": []any{uint32(1), uint32(2), uint32(3), uint32(0), uint32(0), uint32(0), uint32(0), uint32(0)},
	}
	req, _, err := readEDTData.EncodeRequest(args)
	if err != nil {
		t.Fatalf("encoding request: %v", err)
	}
	if got, want := len(req), readEDTData.Request.Size; got != want {
		t.Fatalf("request is %#x bytes, want %#x", got, want)
	}

	got, err := readEDTData.DecodeRequest(req)
	if err != nil {
		t.Fatalf("decoding request: %v", err)
	}
	want := Args{
		"key":   "edt",
		"count": uint32(3),
		"value": []any{uint32(1), uint32(2), uint32(3)},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("decoded request wrong (-got+want):\n%s", diff)
	}

	again, _, err := readEDTData.EncodeRequest(got)
	if err != nil {
		t.Fatalf("re-encoding request: %v", err)
	}
	if !bytes.Equal(again, req) {
		t.Errorf("re-encoded request differs:\n got %x\nwant %x", again, req)
	}
}

func TestCallCallback(t *testing.T) {
	h := func(ctx context.Context, inv *Invocation) (any, error) {
		if got := inv.Arg("key"); got != "edt" {
			t.Errorf("key = %v, want edt", got)
		}
		vals := inv.Arg("value").([]any)
		doubled := make([]any, len(vals))
		for i, v := range vals {
			doubled[i] = v.(uint32) * 2
		}
		if err := inv.SetOut("value", doubled); err != nil {
			t.Errorf("setting value: %v", err)
		}
		return true, nil
	}

	got, err := readEDTData.Call(context.Background(), loop(readEDTData, h), Args{
		"key":   "edt",
		"count": uint32(3),
		"value": []any{uint32(1), uint32(2), uint32(3)},
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	want := &Result{
		Ret: true,
		Out: Args{"value": []any{uint32(2), uint32(4), uint32(6)}},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Call result wrong (-got+want):\n%s", diff)
	}
}

func TestCallNullOut(t *testing.T) {
	h := func(ctx context.Context, inv *Invocation) (any, error) {
		if got := inv.Index(0); got != uint64(0x1000) {
			t.Errorf("arg0 = %v, want 0x1000", got)
		}
		if inv.HasOut("arg1") {
			t.Error("null arg1 has an output slot")
		}
		if !inv.IsNull("arg1") {
			t.Error("arg1 is not null")
		}
		if err := inv.SetOut("arg1", uint64(1)); !errors.Is(err, ErrContract) {
			t.Errorf("setting null arg1 got err %v, want ErrContract", err)
		}
		if inv.HasOut("arg2") {
			if err := inv.SetOut("arg2", uint64(0xdead)); err != nil {
				t.Errorf("setting arg2: %v", err)
			}
		}
		return uint32(7), nil
	}

	args, err := mapBuf.Args(uint64(0x1000), nil, Want, true)
	if err != nil {
		t.Fatal(err)
	}
	got, err := mapBuf.Call(context.Background(), loop(mapBuf, h), args)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	want := &Result{
		Ret: uint32(7),
		Out: Args{"arg2": uint64(0xdead)},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Call result wrong (-got+want):\n%s", diff)
	}
}

func TestCallbackNullOutReply(t *testing.T) {
	// A null output parameter has no slot, and its reply bytes stay
	// zero.
	req, _, err := mapBuf.EncodeRequest(Args{"arg0": uint64(1), "arg3": false})
	if err != nil {
		t.Fatal(err)
	}
	h := func(ctx context.Context, inv *Invocation) (any, error) {
		if inv.HasOut("arg1") || inv.HasOut("arg2") {
			t.Error("null outputs have slots")
		}
		return uint32(0x11223344), nil
	}
	got, err := mapBuf.Callback(context.Background(), h, req)
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	want := unhex(t, `
		0000000000000000
		0000000000000000
		44332211`)
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("reply wrong (-got+want):\n%s", diff)
	}
}

func TestArrayOfNullable(t *testing.T) {
	surf0 := bytes.Repeat([]byte{0xaa}, 0x204)
	surf3 := bytes.Repeat([]byte{0xbb}, 0x10)
	args := Args{
		"swap_rec": make([]byte, 0x320),
		"surfaces": []any{surf0, nil, nil, surf3},
		"surfAddr": []uint64{1, 2, 3, 4},
		"unkBool":  true,
		"unkFloat": 0.5,
		"unkInt":   uint32(9),
	}
	req, _, err := swapSubmit.EncodeRequest(args)
	if err != nil {
		t.Fatalf("encoding request: %v", err)
	}

	got, err := swapSubmit.DecodeRequest(req)
	if err != nil {
		t.Fatalf("decoding request: %v", err)
	}
	zero := make([]byte, 0x204)
	wantSurfaces := []any{surf0, zero, zero, append(surf3, make([]byte, 0x204-0x10)...)}
	if diff := cmp.Diff(got["surfaces"], wantSurfaces); diff != "" {
		t.Errorf("decoded surfaces wrong (-got+want):\n%s", diff)
	}
	wantFlags := []any{false, true, true, false}
	if diff := cmp.Diff(got["surfaces_null"], wantFlags); diff != "" {
		t.Errorf("decoded surface flags wrong (-got+want):\n%s", diff)
	}
	if got["unkOutBool_null"] != true {
		t.Errorf("unkOutBool_null = %v, want true", got["unkOutBool_null"])
	}

	again, _, err := swapSubmit.EncodeRequest(Args{
		"swap_rec": got["swap_rec"],
		"surfaces": maskNulls(got["surfaces"], got["surfaces_null"]),
		"surfAddr": got["surfAddr"],
		"unkBool":  got["unkBool"],
		"unkFloat": got["unkFloat"],
		"unkInt":   got["unkInt"],
	})
	if err != nil {
		t.Fatalf("re-encoding request: %v", err)
	}
	if !bytes.Equal(again, req) {
		t.Error("re-encoded request differs from original")
	}

	h := func(ctx context.Context, inv *Invocation) (any, error) {
		surfaces := inv.Arg("surfaces").([]any)
		if surfaces[1] != nil || surfaces[2] != nil {
			t.Errorf("null surfaces passed as %v, %v", surfaces[1], surfaces[2])
		}
		if inv.HasOut("unkOutBool") {
			t.Error("null unkOutBool has an output slot")
		}
		return uint32(0), nil
	}
	res, err := swapSubmit.Call(context.Background(), loop(swapSubmit, h), args)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if diff := cmp.Diff(res, &Result{Ret: uint32(0), Out: Args{}}); diff != "" {
		t.Errorf("Call result wrong (-got+want):\n%s", diff)
	}
}

func TestCallInOutRecord(t *testing.T) {
	h := func(ctx context.Context, inv *Invocation) (any, error) {
		client := inv.Arg("client").(map[string]any)
		client["flag1"] = uint8(1)
		if err := inv.SetOut("client", client); err != nil {
			return nil, err
		}
		if err := inv.SetOut("swap_id", inv.Arg("swap_id").(uint32)+1); err != nil {
			return nil, err
		}
		return uint32(0), nil
	}
	got, err := swapStart.Call(context.Background(), loop(swapStart, h), Args{
		"swap_id": uint32(41),
		"client":  map[string]any{"addr": uint64(0xfeed), "unk": uint32(2)},
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	want := &Result{
		Ret: uint32(0),
		Out: Args{
			"swap_id": uint32(42),
			"client": map[string]any{
				"addr":  uint64(0xfeed),
				"unk":   uint32(2),
				"flag1": uint8(1),
				"flag2": uint8(0),
			},
		},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Call result wrong (-got+want):\n%s", diff)
	}
}

func TestCallErrors(t *testing.T) {
	ctx := context.Background()
	ok := func(ctx context.Context, inv *Invocation) (any, error) { return true, nil }

	tests := []struct {
		name string
		m    *Method
		h    Handler
		args Args
		want error
	}{
		{"missing input", readEDTData, ok, Args{"count": uint32(0), "value": []any{}}, ErrContract},
		{"unknown parameter", readEDTData, ok, Args{"key": "", "count": uint32(0), "value": []any{}, "bogus": 1}, ErrContract},
		{"want for input", readEDTData, ok, Args{"key": Want, "count": uint32(0), "value": []any{}}, ErrContract},
		{"void returns value", willPowerOff, ok, Args{}, ErrContract},
		{"missing return", readEDTData, func(ctx context.Context, inv *Invocation) (any, error) { return nil, nil },
			Args{"key": "", "count": uint32(0), "value": []any{}}, ErrContract},
		{"keyed value", setPropertyDict, ok, Args{"key": "k", "value": Dict{}}, ErrUnsupported},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.m.Call(ctx, loop(tc.m, tc.h), tc.args)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Call = %v, %v, want error %v", got, err, tc.want)
			}
		})
	}

	if _, err := mapBuf.Args(1, 2); !errors.Is(err, ErrContract) {
		t.Errorf("Args with wrong count got err %v, want ErrContract", err)
	}
}

func TestCallReplySize(t *testing.T) {
	short := func(ctx context.Context, req []byte) ([]byte, error) {
		return make([]byte, 4), nil
	}
	_, err := readEDTData.Call(context.Background(), short, Args{"key": "", "count": uint32(0), "value": []any{}})
	var sm SizeMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("Call with short reply got err %v, want SizeMismatchError", err)
	}
	if want := (SizeMismatchError{"out", 0x24, 4}); sm != want {
		t.Errorf("Call with short reply got %v, want %v", sm, want)
	}

	_, err = readEDTData.Callback(context.Background(), nil, make([]byte, 3))
	if !errors.As(err, &sm) || sm.Side != "in" {
		t.Errorf("Callback with short request got err %v, want SizeMismatchError", err)
	}
}

func TestCallNullableDict(t *testing.T) {
	// A null keyed value needs no encoding, so the call can be made.
	h := func(ctx context.Context, inv *Invocation) (any, error) {
		if !inv.IsNull("value") {
			t.Error("value is not null")
		}
		return inv.Arg("key") == "k", nil
	}
	got, err := setPropertyDict.Call(context.Background(), loop(setPropertyDict, h), Args{"key": "k"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Ret != true {
		t.Errorf("Call returned %v, want true", got.Ret)
	}
}
