package natv

// Header is the fixed-layout record at the start of every NATV file.
// Magic and Version must match the supported constants before any other
// field is trusted.
type Header struct {
	Magic             uint32
	Version           uint32
	Architecture      Architecture
	ModuleType        ModuleType
	CodeOffset        uint64
	CodeSize          uint64
	DataOffset        uint64
	DataSize          uint64
	ExportTableOffset uint64
	ExportCount       uint32
	EntryPointOffset  uint32 // relative to code start
	MetadataOffset    uint64
	RelocationOffset  uint64
	RelocationCount   uint32
	Checksum          uint64 // CRC64(code) ^ CRC64(data) ^ CRC64(export entries)
}

// Export is a named, typed offset a module makes available to callers.
// Offset is relative to the owning section: code for functions and
// interfaces, data for variables and constants.
type Export struct {
	Name   string
	Type   ExportType
	Flags  uint32
	Offset uint64
	Size   uint64
}

// Dependency names another module this module requires, with the minimum
// version triple it needs.
type Dependency struct {
	Name  string
	Major uint32
	Minor uint32
	Patch uint32
	Flags uint32
}

// Relocation is an instruction to patch a code offset at load time.
type Relocation struct {
	Offset      uint64 // byte offset in code to patch
	Type        RelocationType
	SymbolIndex uint32 // index into the export table for RelocSymbol
	Addend      int64
}

// Metadata is the optional extended block describing a module.
//
// ContentHash is NOT a cryptographic hash even though legacy files label
// the field "SHA-256"; see checksum.Content. SignatureOffset/SignatureSize
// are bookkeeping only: no signature scheme is defined for V1 and
// verification is a placeholder.
type Metadata struct {
	Name          string
	VersionString string
	Author        string
	Description   string
	License       string
	Homepage      string
	Repository    string

	VersionMajor   uint32
	VersionMinor   uint32
	VersionPatch   uint32
	BuildTimestamp uint32
	Flags          uint32

	DependencyCount    uint32
	DependenciesOffset uint64

	FileSize      uint64
	ChecksumCRC32 uint32 // stored in an 8-byte field on disk
	ContentHash   [4]uint64

	APIVersion       uint32
	ABIVersion       uint32
	MinLoaderVersion uint32
	SecurityLevel    uint32 // clearance level 0-3

	SignatureOffset uint64
	SignatureSize   uint32
}

// Limits carries the capacity ceilings enforced by the builder methods.
// The defaults mirror the fixed array bounds of the V1 format.
type Limits struct {
	MaxExports      int
	MaxNameLength   int
	MaxDependencies int
	MaxRelocations  int
}

// DefaultLimits returns the V1 format ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxExports:      DefaultMaxExports,
		MaxNameLength:   DefaultMaxNameLength,
		MaxDependencies: DefaultMaxDependencies,
		MaxRelocations:  DefaultMaxRelocations,
	}
}

// Module is an assembled native module. It exclusively owns its code and
// data buffers and all of its tables; nothing is shared with another
// module, and releasing the Module releases everything it holds.
type Module struct {
	Header       Header
	Code         []byte
	Data         []byte
	Exports      []Export
	Dependencies []Dependency
	Relocations  []Relocation
	Metadata     *Metadata
	Signature    []byte
	Limits       Limits
}
