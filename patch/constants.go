package patch

// Section IDs define the binary identifiers for each module section.
const (
	SectionCustom    byte = 0  // Custom section (can appear anywhere)
	SectionType      byte = 1  // Type section (function signatures)
	SectionImport    byte = 2  // Import section
	SectionFunction  byte = 3  // Function section (type indices)
	SectionTable     byte = 4  // Table section
	SectionMemory    byte = 5  // Memory section
	SectionGlobal    byte = 6  // Global section
	SectionExport    byte = 7  // Export section
	SectionStart     byte = 8  // Start section
	SectionElement   byte = 9  // Element section
	SectionCode      byte = 10 // Code section (function bodies)
	SectionData      byte = 11 // Data section
	SectionDataCount byte = 12 // Data count section (bulk memory)
	SectionTag       byte = 13 // Tag section (exception handling)
)

// Import/Export descriptor kinds identify the type of imported or exported item.
const (
	KindFunc   byte = 0 // Function import/export
	KindTable  byte = 1 // Table import/export
	KindMemory byte = 2 // Memory import/export
	KindGlobal byte = 3 // Global import/export
	KindTag    byte = 4 // Tag import/export (exception handling)
)

// Reference type encodings used as table element types.
const (
	ValFuncRef byte = 0x70 // Function reference
	ValExtern  byte = 0x6F // External reference
)

// Limits flags
const (
	LimitsNoMax  byte = 0x00
	LimitsHasMax byte = 0x01
)

// ExternrefsExport is the name under which wasm-bindgen exports the
// externref table. Some builds export the funcref table under this name,
// which breaks externref bookkeeping in browsers.
const ExternrefsExport = "__wbindgen_externrefs"

// growHeadroom is the number of slots wasm-bindgen grows the externref
// table by during initialization. A maximum that cannot absorb this growth
// is defective.
const growHeadroom = 4

// headerLen is the length of the module header (4-byte magic + 4-byte version).
const headerLen = 8

// moduleMagic is the WebAssembly binary magic number ("\0asm").
var moduleMagic = []byte{0x00, 0x61, 0x73, 0x6D}

// sectionName returns a human-readable name for a section ID.
func sectionName(id byte) string {
	switch id {
	case SectionCustom:
		return "custom"
	case SectionType:
		return "type"
	case SectionImport:
		return "import"
	case SectionFunction:
		return "function"
	case SectionTable:
		return "table"
	case SectionMemory:
		return "memory"
	case SectionGlobal:
		return "global"
	case SectionExport:
		return "export"
	case SectionStart:
		return "start"
	case SectionElement:
		return "element"
	case SectionCode:
		return "code"
	case SectionData:
		return "data"
	case SectionDataCount:
		return "datacount"
	case SectionTag:
		return "tag"
	default:
		return "unknown"
	}
}
