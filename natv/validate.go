package natv

import (
	"github.com/astcvm/natv-runtime/errors"
)

// Validate checks the module for structural validity: recognized magic,
// version, architecture and type, and a header checksum that matches the
// module's current contents.
func (m *Module) Validate() error {
	if m.Header.Magic != Magic {
		return errors.Invalid(errors.PhaseValidate, "unrecognized magic number")
	}
	if m.Header.Version != Version {
		return errors.Invalid(errors.PhaseValidate, "unsupported format version")
	}
	switch m.Header.Architecture {
	case ArchX8664, ArchARM64, ArchX8632:
	default:
		return errors.Invalid(errors.PhaseValidate, "unrecognized architecture")
	}
	switch m.Header.ModuleType {
	case TypeVM, TypeLibc, TypeUser:
	default:
		return errors.Invalid(errors.PhaseValidate, "unrecognized module type")
	}

	computed := headerChecksum(m.Code, m.Data, encodeExportEntries(m.Exports))
	if computed != m.Header.Checksum {
		return errors.ChecksumMismatch(errors.PhaseValidate, "header", m.Header.Checksum, computed)
	}

	return nil
}
