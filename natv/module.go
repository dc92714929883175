package natv

import (
	"encoding/binary"
	"unsafe"

	"github.com/astcvm/natv-runtime/checksum"
	"github.com/astcvm/natv-runtime/errors"
)

// New creates an empty module for the given architecture and type. All
// sections start empty; the header carries only magic, version,
// architecture and type.
func New(arch Architecture, typ ModuleType) *Module {
	return &Module{
		Header: Header{
			Magic:        Magic,
			Version:      Version,
			Architecture: arch,
			ModuleType:   typ,
		},
		Limits: DefaultLimits(),
	}
}

// SetCode replaces the code section and records the entry point offset.
// The bytes are copied; the module owns its buffer. Any previously
// computed checksums are invalidated.
func (m *Module) SetCode(code []byte, entryPoint uint32) error {
	if len(code) == 0 {
		return errors.Invalid(errors.PhaseBuild, "code section must not be empty")
	}

	m.Code = make([]byte, len(code))
	copy(m.Code, code)
	m.Header.CodeSize = uint64(len(code))
	m.Header.EntryPointOffset = entryPoint

	m.invalidateChecksums()
	return nil
}

// SetData replaces the data section. Empty data is permitted and leaves
// the module with a zero-size data section.
func (m *Module) SetData(data []byte) error {
	if len(data) == 0 {
		m.Data = nil
		m.Header.DataSize = 0
		m.invalidateChecksums()
		return nil
	}

	m.Data = make([]byte, len(data))
	copy(m.Data, data)
	m.Header.DataSize = uint64(len(data))

	m.invalidateChecksums()
	return nil
}

func (m *Module) invalidateChecksums() {
	m.Header.Checksum = 0
	if m.Metadata != nil {
		m.Metadata.ChecksumCRC32 = 0
		m.Metadata.ContentHash = [4]uint64{}
	}
}

// AddExport appends an entry to the export table. Lookup is first-match
// by name: a duplicate name is permitted but only the first entry is
// reachable through FindExport.
func (m *Module) AddExport(name string, typ ExportType, offset, size uint64) error {
	if name == "" {
		return errors.Invalid(errors.PhaseBuild, "export name must not be empty")
	}
	if len(name) > m.Limits.MaxNameLength {
		return errors.Invalid(errors.PhaseBuild, "export name exceeds maximum length")
	}
	if len(m.Exports) >= m.Limits.MaxExports {
		return errors.TooMany(errors.PhaseBuild, "exports", m.Limits.MaxExports)
	}

	m.Exports = append(m.Exports, Export{
		Name:   name,
		Type:   typ,
		Offset: offset,
		Size:   size,
	})
	m.Header.ExportCount = uint32(len(m.Exports))
	return nil
}

// AddDependency appends a dependency on another module at a minimum
// version.
func (m *Module) AddDependency(name string, major, minor, patch, flags uint32) error {
	if name == "" {
		return errors.Invalid(errors.PhaseBuild, "dependency name must not be empty")
	}
	if len(name) > depNameWidth-1 {
		return errors.Invalid(errors.PhaseBuild, "dependency name exceeds maximum length")
	}
	if len(m.Dependencies) >= m.Limits.MaxDependencies {
		return errors.TooMany(errors.PhaseBuild, "dependencies", m.Limits.MaxDependencies)
	}

	m.Dependencies = append(m.Dependencies, Dependency{
		Name:  name,
		Major: major,
		Minor: minor,
		Patch: patch,
		Flags: flags,
	})
	if m.Metadata != nil {
		m.Metadata.DependencyCount = uint32(len(m.Dependencies))
	}
	return nil
}

// AddRelocation appends a relocation entry.
func (m *Module) AddRelocation(offset uint64, typ RelocationType, symbolIndex uint32, addend int64) error {
	if len(m.Relocations) >= m.Limits.MaxRelocations {
		return errors.TooMany(errors.PhaseBuild, "relocations", m.Limits.MaxRelocations)
	}

	m.Relocations = append(m.Relocations, Relocation{
		Offset:      offset,
		Type:        typ,
		SymbolIndex: symbolIndex,
		Addend:      addend,
	})
	m.Header.RelocationCount = uint32(len(m.Relocations))
	return nil
}

// SetMetadata attaches a metadata block to the module. The block is
// copied; dependency count is kept in sync with the dependency table.
func (m *Module) SetMetadata(meta *Metadata) error {
	if meta == nil {
		return errors.Invalid(errors.PhaseBuild, "metadata must not be nil")
	}
	clone := *meta
	clone.DependencyCount = uint32(len(m.Dependencies))
	m.Metadata = &clone
	return nil
}

// SetEnhancedMetadata fills the extended descriptive and compatibility
// fields. Metadata must already be attached.
func (m *Module) SetEnhancedMetadata(license, homepage, repository string,
	apiVersion, abiVersion, minLoaderVersion, securityLevel uint32) error {
	if m.Metadata == nil {
		return errors.Invalid(errors.PhaseBuild, "module has no metadata")
	}

	if license != "" {
		m.Metadata.License = license
	}
	if homepage != "" {
		m.Metadata.Homepage = homepage
	}
	if repository != "" {
		m.Metadata.Repository = repository
	}
	m.Metadata.APIVersion = apiVersion
	m.Metadata.ABIVersion = abiVersion
	m.Metadata.MinLoaderVersion = minLoaderVersion
	m.Metadata.SecurityLevel = securityLevel
	return nil
}

// CalculateChecksums computes the metadata CRC32 over the code section
// and the 4-lane content identity hash. The header checksum is computed
// separately during Encode.
func (m *Module) CalculateChecksums() error {
	if m.Metadata == nil {
		return errors.Invalid(errors.PhaseBuild, "module has no metadata")
	}

	if len(m.Code) > 0 {
		m.Metadata.ChecksumCRC32 = checksum.CRC32(m.Code)
	}
	m.Metadata.ContentHash = checksum.Content(m.Code)
	return nil
}

// VerifyChecksums recomputes the metadata checksums and compares them
// with the stored values.
func (m *Module) VerifyChecksums() error {
	if m.Metadata == nil {
		return errors.Invalid(errors.PhaseVerify, "module has no metadata")
	}

	if len(m.Code) > 0 {
		if got := checksum.CRC32(m.Code); got != m.Metadata.ChecksumCRC32 {
			return errors.ChecksumMismatch(errors.PhaseVerify, "code crc32",
				uint64(m.Metadata.ChecksumCRC32), uint64(got))
		}
	}
	if got := checksum.Content(m.Code); got[0] != m.Metadata.ContentHash[0] {
		return errors.ChecksumMismatch(errors.PhaseVerify, "content hash",
			m.Metadata.ContentHash[0], got[0])
	}
	return nil
}

// AddSignature records the signature bytes and sets the signed flag.
// This is bookkeeping only: no cryptographic operation takes place, and
// the signature offset is filled in during Encode.
func (m *Module) AddSignature(sig []byte) error {
	if m.Metadata == nil {
		return errors.Invalid(errors.PhaseBuild, "module has no metadata")
	}
	if len(sig) == 0 {
		return errors.Invalid(errors.PhaseBuild, "signature must not be empty")
	}

	m.Signature = make([]byte, len(sig))
	copy(m.Signature, sig)
	m.Metadata.SignatureSize = uint32(len(sig))
	m.Metadata.Flags |= FlagSigned
	return nil
}

// VerifySignature checks that a signature record is present and
// well-formed.
//
// PLACEHOLDER: V1 defines no signature scheme, so once a signature is
// merely present this reports success without any cryptographic
// verification. Do not gate a security decision on it.
func (m *Module) VerifySignature(publicKey []byte) error {
	if m.Metadata == nil || len(publicKey) == 0 {
		return errors.Invalid(errors.PhaseVerify, "module has no metadata or key is empty")
	}

	if m.Metadata.Flags&FlagSigned == 0 {
		return errors.NotSigned(m.name())
	}
	if m.Metadata.SignatureSize == 0 {
		return errors.InvalidSignature(m.name(), "signature record has zero size")
	}
	return nil
}

// CheckCompatibility gates a module against the running loader.
func (m *Module) CheckCompatibility(loaderVersion, requiredAPIVersion uint32) error {
	if m.Metadata == nil {
		return errors.Invalid(errors.PhaseValidate, "module has no metadata")
	}

	if loaderVersion < m.Metadata.MinLoaderVersion {
		return errors.VersionMismatch(loaderVersion, m.Metadata.MinLoaderVersion)
	}
	if m.Metadata.APIVersion > requiredAPIVersion {
		return errors.APIMismatch(m.Metadata.APIVersion, requiredAPIVersion)
	}
	return nil
}

// SecurityLevel returns the module's security clearance level, 0 when no
// metadata is present.
func (m *Module) SecurityLevel() uint32 {
	if m.Metadata == nil {
		return 0
	}
	return m.Metadata.SecurityLevel
}

// FindExport scans the export table for name. First match wins, so a
// duplicated name only ever resolves to its earliest entry.
func (m *Module) FindExport(name string) *Export {
	for i := range m.Exports {
		if m.Exports[i].Name == name {
			return &m.Exports[i]
		}
	}
	return nil
}

// SymbolAddress resolves an export name to an in-process address.
// Function and interface exports are offsets into the code buffer,
// variable and constant exports into the data buffer. The second return
// is false when the export is missing or its type has no resolvable
// section.
func (m *Module) SymbolAddress(name string) (uintptr, bool) {
	exp := m.FindExport(name)
	if exp == nil {
		return 0, false
	}

	switch exp.Type {
	case ExportFunction, ExportInterface:
		if len(m.Code) == 0 || exp.Offset >= uint64(len(m.Code)) {
			return 0, false
		}
		return uintptr(unsafe.Pointer(&m.Code[0])) + uintptr(exp.Offset), true
	case ExportVariable, ExportConstant:
		if len(m.Data) == 0 || exp.Offset >= uint64(len(m.Data)) {
			return 0, false
		}
		return uintptr(unsafe.Pointer(&m.Data[0])) + uintptr(exp.Offset), true
	default:
		return 0, false
	}
}

// SatisfiesDependency reports whether this module can stand in for dep:
// same name, and its own version triple at or above the required one.
func (m *Module) SatisfiesDependency(dep *Dependency) bool {
	if dep == nil || m.Metadata == nil {
		return false
	}
	if m.Metadata.Name != dep.Name {
		return false
	}
	return VersionSatisfies(
		m.Metadata.VersionMajor, m.Metadata.VersionMinor, m.Metadata.VersionPatch,
		dep.Major, dep.Minor, dep.Patch)
}

// ResolveRelocations patches the code buffer for a module mapped at base.
// Absolute entries receive base+addend, relative entries a 32-bit
// displacement from the end of the patch site, and symbol entries the
// address of the referenced export. Import entries need a cross-module
// link step and are skipped here. Returns the number of entries patched.
func (m *Module) ResolveRelocations(base uintptr) (int, error) {
	resolved := 0
	for i := range m.Relocations {
		rel := &m.Relocations[i]

		switch rel.Type {
		case RelocAbsolute:
			if !relocInBounds(rel.Offset, 8, len(m.Code)) {
				return resolved, errors.Invalid(errors.PhaseLoad, "relocation offset out of range")
			}
			binary.LittleEndian.PutUint64(m.Code[rel.Offset:], uint64(base)+uint64(rel.Addend))
			resolved++

		case RelocRelative:
			if !relocInBounds(rel.Offset, 4, len(m.Code)) {
				return resolved, errors.Invalid(errors.PhaseLoad, "relocation offset out of range")
			}
			target := int64(base) + rel.Addend
			disp := target - (int64(base) + int64(rel.Offset) + 4)
			binary.LittleEndian.PutUint32(m.Code[rel.Offset:], uint32(int32(disp)))
			resolved++

		case RelocSymbol:
			if int(rel.SymbolIndex) >= len(m.Exports) {
				return resolved, errors.Invalid(errors.PhaseLoad, "relocation symbol index out of range")
			}
			if !relocInBounds(rel.Offset, 8, len(m.Code)) {
				return resolved, errors.Invalid(errors.PhaseLoad, "relocation offset out of range")
			}
			exp := &m.Exports[rel.SymbolIndex]
			addr := uint64(base) + exp.Offset + uint64(rel.Addend)
			binary.LittleEndian.PutUint64(m.Code[rel.Offset:], addr)
			resolved++

		case RelocImport:
			// Requires the dependency's load address; left to the linker.

		default:
			return resolved, errors.Invalid(errors.PhaseLoad, "unknown relocation type")
		}
	}
	return resolved, nil
}

// relocInBounds reports whether a width-byte patch at offset fits inside
// a code buffer of size bytes. Offsets come from decoded files, so the
// comparison must not rely on offset+width staying below 2^64.
func relocInBounds(offset uint64, width, size int) bool {
	return offset < uint64(size) && uint64(size)-offset >= uint64(width)
}

func (m *Module) name() string {
	if m.Metadata != nil {
		return m.Metadata.Name
	}
	return ""
}
