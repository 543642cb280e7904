package patch

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// exportEntry is one decoded export descriptor, with enough position
// information to rewrite its index in place.
type exportEntry struct {
	name       string
	kind       byte
	index      uint32
	indexOff   int
	indexWidth int
}

// parseExportEntry decodes the export descriptor at buf[p] and returns it
// together with the offset of the next descriptor. The name is kept as raw
// bytes converted to a string; it only feeds an equality check, so invalid
// UTF-8 simply never matches.
func parseExportEntry(buf []byte, p int) (exportEntry, int, error) {
	nameLen, n, err := DecodeULEB128(buf, p)
	if err != nil {
		return exportEntry{}, 0, fmt.Errorf("export name length: %w", err)
	}
	p += n

	if p+int(nameLen) > len(buf) {
		return exportEntry{}, 0, fmt.Errorf("export name: %w", ErrTruncatedSection)
	}
	e := exportEntry{name: string(buf[p : p+int(nameLen)])}
	p += int(nameLen)

	if p >= len(buf) {
		return exportEntry{}, 0, fmt.Errorf("export kind: %w", ErrTruncatedSection)
	}
	e.kind = buf[p]
	p++

	e.indexOff = p
	e.index, e.indexWidth, err = DecodeULEB128(buf, p)
	if err != nil {
		return exportEntry{}, 0, fmt.Errorf("export index: %w", err)
	}
	p += e.indexWidth

	return e, p, nil
}

// patchExportSection walks the export section payload in buf[off:end] and
// retargets the __wbindgen_externrefs table export at the externref table
// discovered earlier in the pass. When externref is nil the whole section
// is skipped unread: without knowing which table is the externref table
// there is nothing to retarget.
func patchExportSection(buf []byte, off, end int, externref *uint32) (bool, error) {
	if externref == nil {
		return false, nil
	}

	count, n, err := DecodeULEB128(buf, off)
	if err != nil {
		return false, fmt.Errorf("export count: %w", err)
	}
	p := off + n

	modified := false
	for i := uint32(0); i < count; i++ {
		e, next, err := parseExportEntry(buf, p)
		if err != nil {
			return modified, err
		}
		p = next

		if e.name != ExternrefsExport || e.kind != KindTable || e.index == *externref {
			continue
		}

		enc, err := EncodeULEB128Fixed(uint64(*externref), e.indexWidth)
		if errors.Is(err, ErrFixedWidthOverflow) {
			// The correct index cannot be encoded in the original field
			// width, and resizing the field would invalidate every
			// enclosing length. Leave this export alone.
			Logger().Warn("externrefs export index does not fit in place",
				zap.Uint32("current", e.index),
				zap.Uint32("want", *externref),
				zap.Int("width", e.indexWidth))
			continue
		}
		if err != nil {
			return modified, err
		}
		copy(buf[e.indexOff:e.indexOff+e.indexWidth], enc)
		modified = true

		Logger().Debug("retargeted externrefs export",
			zap.Uint32("from", e.index),
			zap.Uint32("to", *externref))
	}

	return modified, nil
}
