package patch

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// Structural errors.
var (
	// ErrNotModule is returned for buffers that do not start with the wasm
	// magic number or are shorter than the module header.
	ErrNotModule = errors.New("not a wasm module")

	// ErrTruncatedSection is returned when a section's declared size extends
	// past the end of the module, or a descriptor ends mid-field.
	ErrTruncatedSection = errors.New("section truncated")

	// ErrTruncatedTableSection is returned when the table section ends in
	// the middle of a table descriptor.
	ErrTruncatedTableSection = errors.New("table section truncated")
)

// File patches the module at path in place, returning whether anything was
// rewritten. The file is written back after each section whose patcher
// modified the buffer; a file with both a table and an export fix is
// therefore written twice. File length and permissions are preserved.
func File(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	patched, err := Apply(data, func(b []byte) error {
		return os.WriteFile(path, b, mode)
	})
	if patched {
		Logger().Info("patched module", zap.String("path", path))
	}
	return patched, err
}

// Apply walks the sections of data, fixing the externref table maximum and
// the __wbindgen_externrefs export target where defective. data itself is
// never modified; patches are applied to a private copy, and persist (if
// non-nil) receives the full copy after every section visit that modified
// it. Apply reports whether any patch was applied.
//
// The externref table index is discovered during the table-section visit of
// the same pass. Sections are visited strictly in on-disk order, so an
// export section that physically precedes the table section is left alone.
func Apply(data []byte, persist func([]byte) error) (bool, error) {
	if len(data) < headerLen || !bytes.Equal(data[:4], moduleMagic) {
		return false, ErrNotModule
	}

	buf := append([]byte(nil), data...)
	off := headerLen
	patched := false
	var externref *uint32

	for off < len(buf) {
		id := buf[off]
		off++

		size, n, err := DecodeULEB128(buf, off)
		if err != nil {
			return patched, fmt.Errorf("section 0x%02x size: %w", id, err)
		}
		off += n

		payloadEnd := off + int(size)
		if payloadEnd > len(buf) {
			return patched, fmt.Errorf("%s section at offset %d: %w", sectionName(id), off, ErrTruncatedSection)
		}

		var modified bool
		switch id {
		case SectionTable:
			var found *uint32
			modified, found, err = patchTableSection(buf, off, payloadEnd)
			if err != nil {
				return patched, err
			}
			if externref == nil {
				externref = found
			}
		case SectionExport:
			modified, err = patchExportSection(buf, off, payloadEnd, externref)
			if err != nil {
				return patched, err
			}
		}

		if modified {
			patched = true
			if persist != nil {
				if err := persist(buf); err != nil {
					return patched, err
				}
			}
		}

		off = payloadEnd
	}

	return patched, nil
}
