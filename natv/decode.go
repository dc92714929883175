package natv

import (
	stderrors "errors"
	"os"

	"github.com/astcvm/natv-runtime/errors"
	"github.com/astcvm/natv-runtime/natv/internal/binary"
)

// Parsing errors returned by ParseModule.
var (
	ErrInvalidMagic   = stderrors.New("invalid NATV magic number")
	ErrInvalidVersion = stderrors.New("invalid NATV format version")
)

// ParseModule parses a NATV binary module. The header's magic and version
// gate everything else: no other field is read until they match. Call
// Validate afterwards (or use LoadFile) to verify the checksum.
func ParseModule(data []byte) (*Module, error) {
	r := binary.NewReader(data)

	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	// Declared sizes come from untrusted input; bound them against the
	// file before any allocation sized by them.
	total := uint64(len(data))
	if h.CodeSize > 0 && (h.CodeOffset > total || h.CodeSize > total-h.CodeOffset) {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalid).
			Detail("code section exceeds file size").
			Build()
	}
	if h.DataSize > 0 && (h.DataOffset > total || h.DataSize > total-h.DataOffset) {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalid).
			Detail("data section exceeds file size").
			Build()
	}

	m := &Module{
		Header: *h,
		Limits: DefaultLimits(),
	}

	if h.CodeSize > 0 {
		if err := r.Seek(int(h.CodeOffset)); err != nil {
			return nil, err
		}
		m.Code, err = r.ReadBytes(int(h.CodeSize))
		if err != nil {
			return nil, r.WrapError("code section", err)
		}
	}

	if h.DataSize > 0 {
		if err := r.Seek(int(h.DataOffset)); err != nil {
			return nil, err
		}
		m.Data, err = r.ReadBytes(int(h.DataSize))
		if err != nil {
			return nil, r.WrapError("data section", err)
		}
	}

	if h.ExportCount > 0 {
		if err := readExportTable(r, m); err != nil {
			return nil, err
		}
	}

	if h.RelocationCount > 0 && h.RelocationOffset > 0 {
		if err := readRelocations(r, m); err != nil {
			return nil, err
		}
	}

	if h.MetadataOffset > 0 {
		if err := readMetadata(r, m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// LoadFile reads a NATV file, parses it, and validates the result.
func LoadFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseDecode, path, err)
	}

	m, err := ParseModule(data)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func readHeader(r *binary.Reader) (*Header, error) {
	magic, err := r.ReadU32()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	version, err := r.ReadU32()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	h := &Header{Magic: magic, Version: version}

	arch, err := r.ReadU32()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	h.Architecture = Architecture(arch)

	typ, err := r.ReadU32()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	h.ModuleType = ModuleType(typ)

	fields := []*uint64{
		&h.CodeOffset, &h.CodeSize,
		&h.DataOffset, &h.DataSize,
		&h.ExportTableOffset,
	}
	for _, f := range fields {
		if *f, err = r.ReadU64(); err != nil {
			return nil, r.WrapError("header", err)
		}
	}

	if h.ExportCount, err = r.ReadU32(); err != nil {
		return nil, r.WrapError("header", err)
	}
	if h.EntryPointOffset, err = r.ReadU32(); err != nil {
		return nil, r.WrapError("header", err)
	}
	if h.MetadataOffset, err = r.ReadU64(); err != nil {
		return nil, r.WrapError("header", err)
	}
	if h.RelocationOffset, err = r.ReadU64(); err != nil {
		return nil, r.WrapError("header", err)
	}
	if h.RelocationCount, err = r.ReadU32(); err != nil {
		return nil, r.WrapError("header", err)
	}
	if h.Checksum, err = r.ReadU64(); err != nil {
		return nil, r.WrapError("header", err)
	}
	if _, err = r.ReadBytes(16); err != nil { // reserved
		return nil, r.WrapError("header", err)
	}

	return h, nil
}

func readExportTable(r *binary.Reader, m *Module) error {
	if err := r.Seek(int(m.Header.ExportTableOffset)); err != nil {
		return err
	}

	count, err := r.ReadU32()
	if err != nil {
		return r.WrapError("export table", err)
	}
	if _, err := r.ReadU32(); err != nil { // reserved padding
		return r.WrapError("export table", err)
	}

	if count != m.Header.ExportCount {
		return errors.New(errors.PhaseDecode, errors.KindInvalid).
			Detail("export table count %d disagrees with header count %d", count, m.Header.ExportCount).
			Build()
	}
	if uint64(count)*exportEntrySize > uint64(r.Remaining()) {
		return errors.New(errors.PhaseDecode, errors.KindInvalid).
			Detail("export table exceeds file size").
			Build()
	}

	m.Exports = make([]Export, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.ReadFixedString(exportNameWidth)
		if err != nil {
			return r.WrapError("export entry", err)
		}
		typ, err := r.ReadU32()
		if err != nil {
			return r.WrapError("export entry", err)
		}
		flags, err := r.ReadU32()
		if err != nil {
			return r.WrapError("export entry", err)
		}
		offset, err := r.ReadU64()
		if err != nil {
			return r.WrapError("export entry", err)
		}
		size, err := r.ReadU64()
		if err != nil {
			return r.WrapError("export entry", err)
		}

		m.Exports = append(m.Exports, Export{
			Name:   name,
			Type:   ExportType(typ),
			Flags:  flags,
			Offset: offset,
			Size:   size,
		})
	}
	return nil
}

func readRelocations(r *binary.Reader, m *Module) error {
	if err := r.Seek(int(m.Header.RelocationOffset)); err != nil {
		return err
	}

	count := m.Header.RelocationCount
	if uint64(count)*relocationEntrySize > uint64(r.Remaining()) {
		return errors.New(errors.PhaseDecode, errors.KindInvalid).
			Detail("relocation table exceeds file size").
			Build()
	}
	m.Relocations = make([]Relocation, 0, count)
	for i := uint32(0); i < count; i++ {
		offset, err := r.ReadU64()
		if err != nil {
			return r.WrapError("relocation entry", err)
		}
		typ, err := r.ReadU32()
		if err != nil {
			return r.WrapError("relocation entry", err)
		}
		symIdx, err := r.ReadU32()
		if err != nil {
			return r.WrapError("relocation entry", err)
		}
		addend, err := r.ReadS64()
		if err != nil {
			return r.WrapError("relocation entry", err)
		}

		m.Relocations = append(m.Relocations, Relocation{
			Offset:      offset,
			Type:        RelocationType(typ),
			SymbolIndex: symIdx,
			Addend:      addend,
		})
	}
	return nil
}

func readMetadata(r *binary.Reader, m *Module) error {
	if err := r.Seek(int(m.Header.MetadataOffset)); err != nil {
		return err
	}

	meta := &Metadata{}
	var err error

	strFields := []struct {
		dst   *string
		width int
	}{
		{&meta.Name, metaNameWidth},
		{&meta.VersionString, metaVersionWidth},
		{&meta.Author, metaAuthorWidth},
		{&meta.Description, metaDescriptionWidth},
		{&meta.License, metaLicenseWidth},
		{&meta.Homepage, metaHomepageWidth},
		{&meta.Repository, metaRepositoryWidth},
	}
	for _, f := range strFields {
		if *f.dst, err = r.ReadFixedString(f.width); err != nil {
			return r.WrapError("metadata", err)
		}
	}

	u32Fields := []*uint32{
		&meta.VersionMajor, &meta.VersionMinor, &meta.VersionPatch,
		&meta.BuildTimestamp, &meta.Flags, &meta.DependencyCount,
	}
	for _, f := range u32Fields {
		if *f, err = r.ReadU32(); err != nil {
			return r.WrapError("metadata", err)
		}
	}

	if meta.DependenciesOffset, err = r.ReadU64(); err != nil {
		return r.WrapError("metadata", err)
	}
	if meta.FileSize, err = r.ReadU64(); err != nil {
		return r.WrapError("metadata", err)
	}

	crc32Field, err := r.ReadU64()
	if err != nil {
		return r.WrapError("metadata", err)
	}
	meta.ChecksumCRC32 = uint32(crc32Field)

	for i := range meta.ContentHash {
		if meta.ContentHash[i], err = r.ReadU64(); err != nil {
			return r.WrapError("metadata", err)
		}
	}

	tailU32 := []*uint32{
		&meta.APIVersion, &meta.ABIVersion,
		&meta.MinLoaderVersion, &meta.SecurityLevel,
	}
	for _, f := range tailU32 {
		if *f, err = r.ReadU32(); err != nil {
			return r.WrapError("metadata", err)
		}
	}

	if meta.SignatureOffset, err = r.ReadU64(); err != nil {
		return r.WrapError("metadata", err)
	}
	if meta.SignatureSize, err = r.ReadU32(); err != nil {
		return r.WrapError("metadata", err)
	}
	if _, err = r.ReadBytes(32); err != nil { // reserved
		return r.WrapError("metadata", err)
	}

	m.Metadata = meta

	if meta.DependencyCount > 0 && meta.DependenciesOffset > 0 {
		if err := readDependencies(r, m); err != nil {
			return err
		}
	}

	if meta.SignatureSize > 0 && meta.SignatureOffset > 0 {
		if err := r.Seek(int(meta.SignatureOffset)); err != nil {
			return err
		}
		if int64(meta.SignatureSize) > int64(r.Remaining()) {
			return errors.New(errors.PhaseDecode, errors.KindInvalid).
				Detail("signature exceeds file size").
				Build()
		}
		m.Signature, err = r.ReadBytes(int(meta.SignatureSize))
		if err != nil {
			return r.WrapError("signature", err)
		}
	}

	return nil
}

func readDependencies(r *binary.Reader, m *Module) error {
	if err := r.Seek(int(m.Metadata.DependenciesOffset)); err != nil {
		return err
	}

	count := m.Metadata.DependencyCount
	if uint64(count)*dependencyEntrySize > uint64(r.Remaining()) {
		return errors.New(errors.PhaseDecode, errors.KindInvalid).
			Detail("dependency table exceeds file size").
			Build()
	}
	m.Dependencies = make([]Dependency, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.ReadFixedString(depNameWidth)
		if err != nil {
			return r.WrapError("dependency entry", err)
		}
		var triple [4]uint32
		for j := range triple {
			if triple[j], err = r.ReadU32(); err != nil {
				return r.WrapError("dependency entry", err)
			}
		}

		m.Dependencies = append(m.Dependencies, Dependency{
			Name:  name,
			Major: triple[0],
			Minor: triple[1],
			Patch: triple[2],
			Flags: triple[3],
		})
	}
	return nil
}
