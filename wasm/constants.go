package wasm

// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
const Magic uint32 = 0x6D736100

// HeaderSize is the length of the magic number plus the version field.
const HeaderSize = 8

// Version/layer pairs found in the second header word.
const (
	ModuleVersion    uint16 = 0x01
	ModuleLayer      uint16 = 0x00
	ComponentVersion uint16 = 0x0d
	ComponentLayer   uint16 = 0x01
)

// Core module section IDs.
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

// Component section IDs.
const (
	ComponentSectionCustom       byte = 0
	ComponentSectionCoreModule   byte = 1
	ComponentSectionCoreInstance byte = 2
	ComponentSectionCoreType     byte = 3
	ComponentSectionComponent    byte = 4
	ComponentSectionInstance     byte = 5
	ComponentSectionAlias        byte = 6
	ComponentSectionType         byte = 7
	ComponentSectionCanon        byte = 8
	ComponentSectionStart        byte = 9
	ComponentSectionImport       byte = 10
	ComponentSectionExport       byte = 11
	ComponentSectionValue        byte = 12
)

// Import/Export descriptor kinds identify the type of imported or exported item.
const (
	KindFunc   byte = 0 // Function import/export
	KindTable  byte = 1 // Table import/export
	KindMemory byte = 2 // Memory import/export
	KindGlobal byte = 3 // Global import/export
	KindTag    byte = 4 // Tag import/export (exception handling)
)

var kindNames = [...]string{
	KindFunc:   "func",
	KindTable:  "table",
	KindMemory: "memory",
	KindGlobal: "global",
	KindTag:    "tag",
}

// KindName returns the name of an import or export descriptor kind.
func KindName(kind byte) string {
	if int(kind) < len(kindNames) {
		return kindNames[kind]
	}
	return "unknown"
}

var moduleSectionNames = [...]string{
	SectionCustom:    "custom",
	SectionType:      "type",
	SectionImport:    "import",
	SectionFunction:  "function",
	SectionTable:     "table",
	SectionMemory:    "memory",
	SectionGlobal:    "global",
	SectionExport:    "export",
	SectionStart:     "start",
	SectionElement:   "element",
	SectionCode:      "code",
	SectionData:      "data",
	SectionDataCount: "datacount",
	SectionTag:       "tag",
}

var componentSectionNames = [...]string{
	ComponentSectionCustom:       "custom",
	ComponentSectionCoreModule:   "core module",
	ComponentSectionCoreInstance: "core instance",
	ComponentSectionCoreType:     "core type",
	ComponentSectionComponent:    "component",
	ComponentSectionInstance:     "instance",
	ComponentSectionAlias:        "alias",
	ComponentSectionType:         "type",
	ComponentSectionCanon:        "canon",
	ComponentSectionStart:        "start",
	ComponentSectionImport:       "import",
	ComponentSectionExport:       "export",
	ComponentSectionValue:        "value",
}

// SectionName returns a human-readable name for a section id under the
// given encoding.
func SectionName(enc Encoding, id byte) string {
	names := moduleSectionNames[:]
	if enc == EncodingComponent {
		names = componentSectionNames[:]
	}
	if int(id) < len(names) {
		return names[id]
	}
	return "unknown"
}

// MaxSectionID returns the highest section id defined for the encoding.
func MaxSectionID(enc Encoding) byte {
	if enc == EncodingComponent {
		return ComponentSectionValue
	}
	return SectionTag
}
