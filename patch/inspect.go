package patch

import (
	"bytes"
	"errors"
	"fmt"
)

// SectionInfo describes one top-level section of a module.
type SectionInfo struct {
	ID     byte
	Name   string
	Offset int // payload start, relative to the module
	Size   int // payload length in bytes
}

// TableInfo describes one table descriptor.
type TableInfo struct {
	ElemType byte
	Initial  uint32
	Max      *uint32 // nil when the table has no explicit maximum
	MaxWidth int     // encoded byte width of Max

	// NeedsWiden is set when a patch pass would rewrite the maximum, and
	// NewMax is the value it would write.
	NeedsWiden bool
	NewMax     uint64
}

// ExportInfo describes one export descriptor.
type ExportInfo struct {
	Name  string
	Kind  byte
	Index uint32

	// Retarget is the index a patch pass wants this export to reference,
	// set only for a defective __wbindgen_externrefs table export. Fits
	// reports whether that index can be rewritten in place; when false the
	// defect is present but unfixable without re-encoding the module.
	Retarget *uint32
	Fits     bool
}

// Report is the read-only analysis of a module produced by Inspect.
type Report struct {
	Sections       []SectionInfo
	Tables         []TableInfo
	Exports        []ExportInfo
	ExternrefTable *uint32 // ordinal of the first externref table, if any
}

// NeedsPatch reports whether a patch pass over the same bytes would modify
// the module.
func (r *Report) NeedsPatch() bool {
	for _, t := range r.Tables {
		if t.NeedsWiden {
			return true
		}
	}
	for _, e := range r.Exports {
		if e.Retarget != nil && e.Fits {
			return true
		}
	}
	return false
}

// Inspect scans a module without modifying it and reports its section
// layout, table and export descriptors, and the patches a write pass would
// apply. It shares the patchers' in-order discovery rule: export defects
// are only recognized when the table section has already been seen.
func Inspect(data []byte) (*Report, error) {
	if len(data) < headerLen || !bytes.Equal(data[:4], moduleMagic) {
		return nil, ErrNotModule
	}

	rep := &Report{}
	off := headerLen

	for off < len(data) {
		id := data[off]
		off++

		size, n, err := DecodeULEB128(data, off)
		if err != nil {
			return nil, fmt.Errorf("section 0x%02x size: %w", id, err)
		}
		off += n

		payloadEnd := off + int(size)
		if payloadEnd > len(data) {
			return nil, fmt.Errorf("%s section at offset %d: %w", sectionName(id), off, ErrTruncatedSection)
		}

		rep.Sections = append(rep.Sections, SectionInfo{
			ID:     id,
			Name:   sectionName(id),
			Offset: off,
			Size:   int(size),
		})

		switch id {
		case SectionTable:
			if err := inspectTableSection(data, off, payloadEnd, rep); err != nil {
				return nil, err
			}
		case SectionExport:
			if err := inspectExportSection(data, off, rep); err != nil {
				return nil, err
			}
		}

		off = payloadEnd
	}

	return rep, nil
}

func inspectTableSection(data []byte, off, end int, rep *Report) error {
	count, n, err := DecodeULEB128(data, off)
	if err != nil {
		return fmt.Errorf("table count: %w", err)
	}
	p := off + n

	for i := uint32(0); i < count; i++ {
		e, next, err := parseTableEntry(data, p, end)
		if err != nil {
			return err
		}
		p = next

		if e.elemType == ValExtern && rep.ExternrefTable == nil {
			idx := i
			rep.ExternrefTable = &idx
		}

		info := TableInfo{
			ElemType: e.elemType,
			Initial:  e.initial,
			MaxWidth: e.maxWidth,
		}
		if e.hasMax {
			max := e.max
			info.Max = &max
		}
		if e.needsWiden() {
			info.NeedsWiden = true
			info.NewMax = e.widenedMax()
		}
		rep.Tables = append(rep.Tables, info)
	}
	return nil
}

func inspectExportSection(data []byte, off int, rep *Report) error {
	count, n, err := DecodeULEB128(data, off)
	if err != nil {
		return fmt.Errorf("export count: %w", err)
	}
	p := off + n

	for i := uint32(0); i < count; i++ {
		e, next, err := parseExportEntry(data, p)
		if err != nil {
			return err
		}
		p = next

		info := ExportInfo{Name: e.name, Kind: e.kind, Index: e.index}
		if rep.ExternrefTable != nil &&
			e.name == ExternrefsExport && e.kind == KindTable && e.index != *rep.ExternrefTable {
			want := *rep.ExternrefTable
			info.Retarget = &want
			_, err := EncodeULEB128Fixed(uint64(want), e.indexWidth)
			info.Fits = !errors.Is(err, ErrFixedWidthOverflow)
		}
		rep.Exports = append(rep.Exports, info)
	}
	return nil
}
