package patch

import "errors"

// Codec errors.
var (
	// ErrUnexpectedEOF is returned when a LEB128 value runs past the end of
	// the buffer before its terminating byte.
	ErrUnexpectedEOF = errors.New("leb128: unexpected end of data")

	// ErrOverflow is returned when a LEB128 value exceeds the maximum bit width.
	ErrOverflow = errors.New("leb128: overflow")

	// ErrFixedWidthOverflow is returned when a value cannot be encoded in the
	// requested number of bytes.
	ErrFixedWidthOverflow = errors.New("leb128: value does not fit in fixed width")
)

// DecodeULEB128 decodes an unsigned LEB128 value starting at data[off].
// It returns the value and the number of bytes consumed.
func DecodeULEB128(data []byte, off int) (uint32, int, error) {
	var result uint32
	var shift uint
	n := 0
	for {
		if off+n >= len(data) {
			return 0, 0, ErrUnexpectedEOF
		}
		b := data[off+n]
		n++
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, n, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, 0, ErrOverflow
		}
	}
}

// EncodeULEB128Fixed encodes v into exactly width bytes: the continuation
// bit is set on every byte except the last, even when fewer bytes would
// suffice. The caller must guarantee v < 2^(7*width); otherwise
// ErrFixedWidthOverflow is returned.
//
// In-place patching depends on this: a replacement value must occupy the
// same bytes as the original so that section sizes stay valid.
func EncodeULEB128Fixed(v uint64, width int) ([]byte, error) {
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		b := byte(v & 0x7f)
		v >>= 7
		if i != width-1 {
			b |= 0x80
		}
		out[i] = b
	}
	if v != 0 {
		return nil, ErrFixedWidthOverflow
	}
	return out, nil
}
