package natv

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/astcvm/natv-runtime/errors"
)

func TestExportCapacityBoundary(t *testing.T) {
	mod := New(ArchX8664, TypeUser)
	for i := 0; i < DefaultMaxExports; i++ {
		if err := mod.AddExport(fmt.Sprintf("sym_%04d", i), ExportFunction, uint64(i), 1); err != nil {
			t.Fatalf("AddExport %d: %v", i, err)
		}
	}

	before := encodeExportEntries(mod.Exports)

	err := mod.AddExport("one_too_many", ExportFunction, 0, 1)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseBuild, Kind: errors.KindTooMany}) {
		t.Fatalf("1025th export: got %v, want too_many", err)
	}

	if len(mod.Exports) != DefaultMaxExports {
		t.Errorf("table grew to %d entries", len(mod.Exports))
	}
	after := encodeExportEntries(mod.Exports)
	if !bytes.Equal(before, after) {
		t.Error("failed append mutated the export table bytes")
	}
	if mod.Header.ExportCount != DefaultMaxExports {
		t.Errorf("header count = %d, want %d", mod.Header.ExportCount, DefaultMaxExports)
	}
}

func TestExportNameBound(t *testing.T) {
	m := New(ArchX8664, TypeUser)

	ok := strings.Repeat("a", DefaultMaxNameLength)
	if err := m.AddExport(ok, ExportFunction, 0, 1); err != nil {
		t.Errorf("255-char name rejected: %v", err)
	}

	long := strings.Repeat("a", DefaultMaxNameLength+1)
	err := m.AddExport(long, ExportFunction, 0, 1)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseBuild, Kind: errors.KindInvalid}) {
		t.Errorf("256-char name: got %v, want invalid", err)
	}
	if len(m.Exports) != 1 {
		t.Errorf("table has %d entries, want 1", len(m.Exports))
	}
}

func TestLimitsOverridable(t *testing.T) {
	m := New(ArchX8664, TypeUser)
	m.Limits.MaxExports = 2

	_ = m.AddExport("a", ExportFunction, 0, 1)
	_ = m.AddExport("b", ExportFunction, 1, 1)
	err := m.AddExport("c", ExportFunction, 2, 1)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseBuild, Kind: errors.KindTooMany}) {
		t.Errorf("got %v, want too_many at the overridden ceiling", err)
	}
}

func TestSetCodeEmptyRejected(t *testing.T) {
	m := New(ArchX8664, TypeUser)
	err := m.SetCode(nil, 0)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseBuild, Kind: errors.KindInvalid}) {
		t.Errorf("got %v, want invalid", err)
	}
}

func TestSetDataEmptyPermitted(t *testing.T) {
	m := New(ArchX8664, TypeUser)
	if err := m.SetData(nil); err != nil {
		t.Errorf("empty data rejected: %v", err)
	}
	if m.Header.DataSize != 0 {
		t.Errorf("data size = %d, want 0", m.Header.DataSize)
	}
}

func TestNewHeaderZeroedExceptIdentity(t *testing.T) {
	m := New(ArchARM64, TypeVM)
	h := m.Header

	if h.Magic != Magic || h.Version != Version {
		t.Error("magic/version not initialized")
	}
	if h.Architecture != ArchARM64 || h.ModuleType != TypeVM {
		t.Error("architecture/type not recorded")
	}

	h.Magic, h.Version = 0, 0
	h.Architecture, h.ModuleType = 0, 0
	if h != (Header{}) {
		t.Errorf("header carries non-identity state: %+v", h)
	}
}

func TestHeaderChecksumXORProperty(t *testing.T) {
	// The header checksum is the XOR of three independent CRC64s. Two
	// identical sections cancel: this is the documented weakness of the
	// combine step, kept as-is for format compatibility.
	same := []byte{1, 2, 3, 4}
	if headerChecksum(same, same, nil) != 0 {
		t.Error("identical code and data no longer cancel; combine formula changed")
	}
}

func TestValidateRejectsBadArchAndType(t *testing.T) {
	m := New(ArchX8664, TypeUser)
	if err := m.SetCode([]byte{0xC3}, 0); err != nil {
		t.Fatalf("SetCode: %v", err)
	}
	m.Header.Checksum = headerChecksum(m.Code, m.Data, nil)

	m.Header.Architecture = 9
	if err := m.Validate(); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseValidate, Kind: errors.KindInvalid}) {
		t.Errorf("bad arch: got %v, want invalid", err)
	}

	m.Header.Architecture = ArchX8664
	m.Header.ModuleType = 0
	if err := m.Validate(); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseValidate, Kind: errors.KindInvalid}) {
		t.Errorf("bad type: got %v, want invalid", err)
	}
}

func TestResolveRelocations(t *testing.T) {
	m := New(ArchX8664, TypeUser)
	code := make([]byte, 32)
	if err := m.SetCode(code, 0); err != nil {
		t.Fatalf("SetCode: %v", err)
	}
	if err := m.AddExport("target", ExportFunction, 16, 8); err != nil {
		t.Fatalf("AddExport: %v", err)
	}

	if err := m.AddRelocation(0, RelocAbsolute, 0, 0x100); err != nil {
		t.Fatalf("AddRelocation: %v", err)
	}
	if err := m.AddRelocation(8, RelocSymbol, 0, 0); err != nil {
		t.Fatalf("AddRelocation: %v", err)
	}
	if err := m.AddRelocation(20, RelocImport, 0, 0); err != nil {
		t.Fatalf("AddRelocation: %v", err)
	}

	const base = uintptr(0x400000)
	resolved, err := m.ResolveRelocations(base)
	if err != nil {
		t.Fatalf("ResolveRelocations: %v", err)
	}
	// Imports need a cross-module link step and stay unresolved.
	if resolved != 2 {
		t.Errorf("resolved = %d, want 2", resolved)
	}

	abs := le64(m.Code[0:])
	if abs != uint64(base)+0x100 {
		t.Errorf("absolute patch = %#x, want %#x", abs, uint64(base)+0x100)
	}
	sym := le64(m.Code[8:])
	if sym != uint64(base)+16 {
		t.Errorf("symbol patch = %#x, want %#x", sym, uint64(base)+16)
	}
}

func TestResolveRelocationsOutOfRange(t *testing.T) {
	m := New(ArchX8664, TypeUser)
	if err := m.SetCode(make([]byte, 8), 0); err != nil {
		t.Fatalf("SetCode: %v", err)
	}
	if err := m.AddRelocation(4, RelocAbsolute, 0, 0); err != nil {
		t.Fatalf("AddRelocation: %v", err)
	}

	_, err := m.ResolveRelocations(0x1000)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalid}) {
		t.Errorf("got %v, want invalid", err)
	}
}

func TestResolveRelocationsOffsetNearMax(t *testing.T) {
	// Offsets arrive from decoded files and can sit near 2^64, where a
	// naive offset+width comparison wraps and passes the bound check.
	m := New(ArchX8664, TypeUser)
	if err := m.SetCode(make([]byte, 16), 0); err != nil {
		t.Fatalf("SetCode: %v", err)
	}
	if err := m.AddRelocation(^uint64(0), RelocAbsolute, 0, 0); err != nil {
		t.Fatalf("AddRelocation: %v", err)
	}

	_, err := m.ResolveRelocations(0x1000)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalid}) {
		t.Errorf("got %v, want invalid", err)
	}
}

func le64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
