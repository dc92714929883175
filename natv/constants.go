package natv

// Magic is the 32-bit value of the ASCII bytes "NATV".
const Magic uint32 = 0x5654414E

// Version is the current format version.
const Version uint32 = 1

// Architecture identifies the machine code target of a module.
type Architecture uint32

const (
	ArchX8664 Architecture = 1
	ArchARM64 Architecture = 2
	ArchX8632 Architecture = 3
)

func (a Architecture) String() string {
	switch a {
	case ArchX8664:
		return "x86-64"
	case ArchARM64:
		return "arm64"
	case ArchX8632:
		return "x86-32"
	default:
		return "unknown"
	}
}

// ModuleType classifies what role a module plays in the runtime.
type ModuleType uint32

const (
	TypeVM   ModuleType = 1 // VM core module
	TypeLibc ModuleType = 2 // libc forwarding module
	TypeUser ModuleType = 3 // user-defined module
)

func (t ModuleType) String() string {
	switch t {
	case TypeVM:
		return "vm"
	case TypeLibc:
		return "libc"
	case TypeUser:
		return "user"
	default:
		return "unknown"
	}
}

// ExportType classifies an export table entry.
type ExportType uint32

const (
	ExportFunction  ExportType = 1
	ExportVariable  ExportType = 2
	ExportConstant  ExportType = 3
	ExportTypeDef   ExportType = 4
	ExportInterface ExportType = 5
)

func (t ExportType) String() string {
	switch t {
	case ExportFunction:
		return "function"
	case ExportVariable:
		return "variable"
	case ExportConstant:
		return "constant"
	case ExportTypeDef:
		return "type"
	case ExportInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// Module flags stored in metadata.
const (
	FlagRelocatable         = 1 << 0
	FlagPositionIndependent = 1 << 1
	FlagDebugInfo           = 1 << 2
	FlagOptimized           = 1 << 3
	FlagSigned              = 1 << 4
)

// Dependency flags.
const (
	DepOptional = 1 << 0
)

// RelocationType classifies a relocation entry.
type RelocationType uint32

const (
	RelocAbsolute RelocationType = 1 // absolute address
	RelocRelative RelocationType = 2 // PC-relative displacement
	RelocSymbol   RelocationType = 3 // export table reference
	RelocImport   RelocationType = 4 // import from a dependency
)

func (t RelocationType) String() string {
	switch t {
	case RelocAbsolute:
		return "absolute"
	case RelocRelative:
		return "relative"
	case RelocSymbol:
		return "symbol"
	case RelocImport:
		return "import"
	default:
		return "unknown"
	}
}

// Default capacity ceilings. These mirror the fixed array bounds of the
// V1 format and can be raised per module via Limits.
const (
	DefaultMaxExports      = 1024
	DefaultMaxNameLength   = 255
	DefaultMaxDependencies = 256
	DefaultMaxRelocations  = 4096
)

// On-disk sizes. The layout is packed: no implicit padding anywhere, so
// the same bytes parse identically on every platform.
const (
	// HeaderSize is the packed size of the fixed module header.
	HeaderSize = 108

	// exportEntrySize is the packed size of one export table entry:
	// 256-byte name field, type, flags, offset, size.
	exportEntrySize = 256 + 4 + 4 + 8 + 8

	// exportNameWidth is the fixed width of the on-disk name field
	// (DefaultMaxNameLength characters plus the terminator).
	exportNameWidth = 256

	// exportTablePrefixSize is the count plus reserved padding that
	// precede the entries.
	exportTablePrefixSize = 8

	// metadataSize is the packed size of the optional metadata block.
	metadataSize = 940

	// dependencyEntrySize is the packed size of one dependency entry:
	// 128-byte name field, version triple, flags.
	dependencyEntrySize = 128 + 4 + 4 + 4 + 4

	// relocationEntrySize is the packed size of one relocation entry:
	// offset, type, symbol index, addend.
	relocationEntrySize = 8 + 4 + 4 + 8
)

// Fixed widths of the metadata string fields.
const (
	metaNameWidth        = 128
	metaVersionWidth     = 32
	metaAuthorWidth      = 64
	metaDescriptionWidth = 256
	metaLicenseWidth     = 64
	metaHomepageWidth    = 128
	metaRepositoryWidth  = 128
	depNameWidth         = 128
)
