package patch_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/wippyai/wasm-patch/patch"
)

func TestDecodeULEB128(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   uint32
		width   int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x01}, 1, 1},
		{[]byte{0x7f}, 127, 1},
		{[]byte{0x80, 0x01}, 128, 2},
		{[]byte{0xff, 0x01}, 255, 2},
		{[]byte{0xff, 0x7f}, 16383, 2},
		{[]byte{0x80, 0x80, 0x01}, 16384, 3},
		{[]byte{0xe5, 0x8e, 0x26}, 624485, 3},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF, 5},
		// Non-minimal encodings are legal: same value, wider field.
		{[]byte{0x84, 0x00}, 4, 2},
		{[]byte{0x84, 0x80, 0x00}, 4, 3},
	}

	for _, tt := range tests {
		got, n, err := patch.DecodeULEB128(tt.encoded, 0)
		if err != nil {
			t.Fatalf("decode %v: %v", tt.encoded, err)
		}
		if got != tt.value {
			t.Errorf("decode %v: got %d, want %d", tt.encoded, got, tt.value)
		}
		if n != tt.width {
			t.Errorf("decode %v: got width %d, want %d", tt.encoded, n, tt.width)
		}
	}
}

func TestDecodeULEB128Offset(t *testing.T) {
	data := []byte{0xde, 0xad, 0x80, 0x02}
	got, n, err := patch.DecodeULEB128(data, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != 256 || n != 2 {
		t.Errorf("got (%d, %d), want (256, 2)", got, n)
	}
}

func TestDecodeULEB128UnexpectedEOF(t *testing.T) {
	tests := [][]byte{
		{},
		{0x80},
		{0x80, 0x80},
	}
	for _, data := range tests {
		_, _, err := patch.DecodeULEB128(data, 0)
		if !errors.Is(err, patch.ErrUnexpectedEOF) {
			t.Errorf("decode %v: got %v, want ErrUnexpectedEOF", data, err)
		}
	}
}

func TestDecodeULEB128Overflow(t *testing.T) {
	// Sixth continuation byte pushes the shift past 35 bits.
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, _, err := patch.DecodeULEB128(data, 0)
	if !errors.Is(err, patch.ErrOverflow) {
		t.Errorf("got %v, want ErrOverflow", err)
	}
}

func TestEncodeULEB128Fixed(t *testing.T) {
	tests := []struct {
		value   uint64
		width   int
		encoded []byte
	}{
		{0, 1, []byte{0x00}},
		{4, 1, []byte{0x04}},
		{127, 1, []byte{0x7f}},
		{4, 2, []byte{0x84, 0x00}},
		{16383, 2, []byte{0xff, 0x7f}},
		{128, 2, []byte{0x80, 0x01}},
		{4, 3, []byte{0x84, 0x80, 0x00}},
	}

	for _, tt := range tests {
		got, err := patch.EncodeULEB128Fixed(tt.value, tt.width)
		if err != nil {
			t.Fatalf("encode %d width %d: %v", tt.value, tt.width, err)
		}
		if !bytes.Equal(got, tt.encoded) {
			t.Errorf("encode %d width %d: got %v, want %v", tt.value, tt.width, got, tt.encoded)
		}
	}
}

func TestEncodeULEB128FixedOverflow(t *testing.T) {
	tests := []struct {
		value uint64
		width int
	}{
		{128, 1},
		{16384, 2},
		{1 << 21, 3},
	}
	for _, tt := range tests {
		_, err := patch.EncodeULEB128Fixed(tt.value, tt.width)
		if !errors.Is(err, patch.ErrFixedWidthOverflow) {
			t.Errorf("encode %d width %d: got %v, want ErrFixedWidthOverflow", tt.value, tt.width, err)
		}
	}
}

// Anything the fixed-width encoder produces must decode back to the same
// value, consuming exactly the requested width.
func TestFixedWidthRoundTrip(t *testing.T) {
	for width := 1; width <= 5; width++ {
		limit := uint64(1)<<(7*uint(width)) - 1
		for _, v := range []uint64{0, 1, 4, limit / 2, limit} {
			enc, err := patch.EncodeULEB128Fixed(v, width)
			if err != nil {
				t.Fatalf("encode %d width %d: %v", v, width, err)
			}
			if len(enc) != width {
				t.Fatalf("encode %d width %d: emitted %d bytes", v, width, len(enc))
			}
			got, n, err := patch.DecodeULEB128(enc, 0)
			if err != nil {
				t.Fatalf("decode %v: %v", enc, err)
			}
			if n != width {
				t.Errorf("decode %v: consumed %d bytes, want %d", enc, n, width)
			}
			if uint64(got) != v&0xFFFFFFFF {
				t.Errorf("round trip %d width %d: got %d", v, width, got)
			}
		}
	}
}
