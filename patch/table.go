package patch

import (
	"fmt"

	"go.uber.org/zap"
)

// tableEntry is one decoded table descriptor, with enough position
// information to rewrite its maximum in place.
type tableEntry struct {
	elemType byte
	initial  uint32
	hasMax   bool
	max      uint32
	maxOff   int
	maxWidth int
}

// needsWiden reports whether the table's maximum is too small for the
// runtime's initial grow.
func (e tableEntry) needsWiden() bool {
	return e.elemType == ValExtern && e.hasMax &&
		uint64(e.max) < uint64(e.initial)+growHeadroom
}

// widenedMax returns the largest value representable in the entry's
// original maximum encoding.
func (e tableEntry) widenedMax() uint64 {
	return uint64(1)<<(7*uint(e.maxWidth)) - 1
}

// parseTableEntry decodes the table descriptor at buf[p] and returns it
// together with the offset of the next descriptor. end bounds the table
// section payload.
func parseTableEntry(buf []byte, p, end int) (tableEntry, int, error) {
	if p >= end {
		return tableEntry{}, 0, ErrTruncatedTableSection
	}
	e := tableEntry{elemType: buf[p]}
	p++

	flags, n, err := DecodeULEB128(buf, p)
	if err != nil {
		return tableEntry{}, 0, fmt.Errorf("table flags: %w", err)
	}
	p += n

	e.initial, n, err = DecodeULEB128(buf, p)
	if err != nil {
		return tableEntry{}, 0, fmt.Errorf("table initial size: %w", err)
	}
	p += n

	if flags&uint32(LimitsHasMax) != 0 {
		e.hasMax = true
		e.maxOff = p
		e.max, e.maxWidth, err = DecodeULEB128(buf, p)
		if err != nil {
			return tableEntry{}, 0, fmt.Errorf("table maximum size: %w", err)
		}
		p += e.maxWidth
	}
	return e, p, nil
}

// patchTableSection walks the table section payload in buf[off:end],
// widening in place the maximum of any externref table that could not
// absorb the runtime's grow. It also reports the ordinal of the first
// externref table, which the export patcher needs later in the same pass.
func patchTableSection(buf []byte, off, end int) (bool, *uint32, error) {
	count, n, err := DecodeULEB128(buf, off)
	if err != nil {
		return false, nil, fmt.Errorf("table count: %w", err)
	}
	p := off + n

	modified := false
	var externref *uint32

	for i := uint32(0); i < count; i++ {
		e, next, err := parseTableEntry(buf, p, end)
		if err != nil {
			return modified, externref, err
		}
		p = next

		if e.elemType == ValExtern && externref == nil {
			idx := i
			externref = &idx
		}

		if !e.needsWiden() {
			continue
		}

		newMax := e.widenedMax()
		enc, err := EncodeULEB128Fixed(newMax, e.maxWidth)
		if err != nil {
			// 2^(7*width)-1 always fits in width bytes.
			return modified, externref, err
		}
		copy(buf[e.maxOff:e.maxOff+e.maxWidth], enc)
		modified = true

		Logger().Debug("widened externref table maximum",
			zap.Uint32("table", i),
			zap.Uint32("initial", e.initial),
			zap.Uint32("old_max", e.max),
			zap.Uint64("new_max", newMax))
	}

	return modified, externref, nil
}
