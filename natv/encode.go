package natv

import (
	"os"

	"github.com/astcvm/natv-runtime/checksum"
	"github.com/astcvm/natv-runtime/errors"
	"github.com/astcvm/natv-runtime/natv/internal/binary"
)

// Encode serializes the module to the NATV byte layout. Section offsets
// and the header checksum are computed here and written back into
// m.Header, so the in-memory header matches the emitted bytes.
//
// The header checksum XOR-combines three independent CRC64 values (code,
// data, export entries). A simultaneous corruption of those regions can
// cancel out, so the check detects accidents, not tampering.
func (m *Module) Encode() []byte {
	exportBytes := encodeExportEntries(m.Exports)

	// Lay out sections: code right after the fixed header, data after
	// code, export table after data, then relocations, metadata,
	// dependencies and signature.
	offset := uint64(HeaderSize)

	m.Header.CodeOffset = offset
	m.Header.CodeSize = uint64(len(m.Code))
	offset += m.Header.CodeSize

	m.Header.DataOffset = offset
	m.Header.DataSize = uint64(len(m.Data))
	offset += m.Header.DataSize

	m.Header.ExportTableOffset = offset
	m.Header.ExportCount = uint32(len(m.Exports))
	if len(m.Exports) > 0 {
		offset += exportTablePrefixSize + uint64(len(exportBytes))
	}

	if len(m.Relocations) > 0 {
		m.Header.RelocationOffset = offset
		m.Header.RelocationCount = uint32(len(m.Relocations))
		offset += uint64(len(m.Relocations)) * relocationEntrySize
	} else {
		m.Header.RelocationOffset = 0
		m.Header.RelocationCount = 0
	}

	if m.Metadata != nil {
		m.Header.MetadataOffset = offset
		offset += metadataSize

		m.Metadata.DependencyCount = uint32(len(m.Dependencies))
		if len(m.Dependencies) > 0 {
			m.Metadata.DependenciesOffset = offset
			offset += uint64(len(m.Dependencies)) * dependencyEntrySize
		} else {
			m.Metadata.DependenciesOffset = 0
		}

		if len(m.Signature) > 0 {
			m.Metadata.SignatureOffset = offset
			m.Metadata.SignatureSize = uint32(len(m.Signature))
			offset += uint64(len(m.Signature))
		} else {
			m.Metadata.SignatureOffset = 0
			m.Metadata.SignatureSize = 0
		}

		m.Metadata.FileSize = offset
	} else {
		m.Header.MetadataOffset = 0
	}

	m.Header.Checksum = headerChecksum(m.Code, m.Data, exportBytes)

	w := binary.NewWriter()
	writeHeader(w, &m.Header)
	w.WriteBytes(m.Code)
	w.WriteBytes(m.Data)

	if len(m.Exports) > 0 {
		w.WriteU32(uint32(len(m.Exports)))
		w.WriteU32(0) // reserved padding
		w.WriteBytes(exportBytes)
	}

	for i := range m.Relocations {
		writeRelocation(w, &m.Relocations[i])
	}

	if m.Metadata != nil {
		writeMetadata(w, m.Metadata)
		for i := range m.Dependencies {
			writeDependency(w, &m.Dependencies[i])
		}
		w.WriteBytes(m.Signature)
	}

	return w.Bytes()
}

// WriteFile encodes the module and writes it to path.
func (m *Module) WriteFile(path string) error {
	data := m.Encode()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.IO(errors.PhaseEncode, path, err)
	}
	return nil
}

// headerChecksum computes the whole-module header checksum: the XOR of
// the CRC64 over the code bytes, the data bytes, and the raw export
// entry bytes. Empty regions contribute zero.
func headerChecksum(code, data, exportBytes []byte) uint64 {
	var sum uint64
	if len(code) > 0 {
		sum ^= checksum.CRC64(code)
	}
	if len(data) > 0 {
		sum ^= checksum.CRC64(data)
	}
	if len(exportBytes) > 0 {
		sum ^= checksum.CRC64(exportBytes)
	}
	return sum
}

func writeHeader(w *binary.Writer, h *Header) {
	w.WriteU32(h.Magic)
	w.WriteU32(h.Version)
	w.WriteU32(uint32(h.Architecture))
	w.WriteU32(uint32(h.ModuleType))
	w.WriteU64(h.CodeOffset)
	w.WriteU64(h.CodeSize)
	w.WriteU64(h.DataOffset)
	w.WriteU64(h.DataSize)
	w.WriteU64(h.ExportTableOffset)
	w.WriteU32(h.ExportCount)
	w.WriteU32(h.EntryPointOffset)
	w.WriteU64(h.MetadataOffset)
	w.WriteU64(h.RelocationOffset)
	w.WriteU32(h.RelocationCount)
	w.WriteU64(h.Checksum)
	w.Zeros(16) // reserved
}

// encodeExportEntries serializes the export entries without the
// count/reserved prefix. The same bytes feed the header checksum.
func encodeExportEntries(exports []Export) []byte {
	if len(exports) == 0 {
		return nil
	}
	w := binary.NewWriter()
	for i := range exports {
		exp := &exports[i]
		w.WriteFixedString(exp.Name, exportNameWidth)
		w.WriteU32(uint32(exp.Type))
		w.WriteU32(exp.Flags)
		w.WriteU64(exp.Offset)
		w.WriteU64(exp.Size)
	}
	return w.Bytes()
}

func writeRelocation(w *binary.Writer, rel *Relocation) {
	w.WriteU64(rel.Offset)
	w.WriteU32(uint32(rel.Type))
	w.WriteU32(rel.SymbolIndex)
	w.WriteS64(rel.Addend)
}

func writeMetadata(w *binary.Writer, meta *Metadata) {
	w.WriteFixedString(meta.Name, metaNameWidth)
	w.WriteFixedString(meta.VersionString, metaVersionWidth)
	w.WriteFixedString(meta.Author, metaAuthorWidth)
	w.WriteFixedString(meta.Description, metaDescriptionWidth)
	w.WriteFixedString(meta.License, metaLicenseWidth)
	w.WriteFixedString(meta.Homepage, metaHomepageWidth)
	w.WriteFixedString(meta.Repository, metaRepositoryWidth)

	w.WriteU32(meta.VersionMajor)
	w.WriteU32(meta.VersionMinor)
	w.WriteU32(meta.VersionPatch)
	w.WriteU32(meta.BuildTimestamp)
	w.WriteU32(meta.Flags)

	w.WriteU32(meta.DependencyCount)
	w.WriteU64(meta.DependenciesOffset)

	w.WriteU64(meta.FileSize)
	w.WriteU64(uint64(meta.ChecksumCRC32)) // 8-byte field on disk
	for _, lane := range meta.ContentHash {
		w.WriteU64(lane)
	}

	w.WriteU32(meta.APIVersion)
	w.WriteU32(meta.ABIVersion)
	w.WriteU32(meta.MinLoaderVersion)
	w.WriteU32(meta.SecurityLevel)

	w.WriteU64(meta.SignatureOffset)
	w.WriteU32(meta.SignatureSize)
	w.Zeros(32) // reserved
}

func writeDependency(w *binary.Writer, dep *Dependency) {
	w.WriteFixedString(dep.Name, depNameWidth)
	w.WriteU32(dep.Major)
	w.WriteU32(dep.Minor)
	w.WriteU32(dep.Patch)
	w.WriteU32(dep.Flags)
}
