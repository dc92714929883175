// Package natv implements the NATV native module binary format.
//
// A NATV file packages machine code, data, exported symbols, dependency
// and relocation tables, and integrity metadata into one self-describing
// binary. The format is fixed-width little-endian with no implicit
// padding, so the same bytes parse identically on every platform.
//
// # Building
//
// Assemble a module and write it out:
//
//	m := natv.New(natv.ArchX8664, natv.TypeUser)
//	m.SetCode([]byte{0x48, 0x31, 0xC0, 0xC3}, 0)
//	m.AddExport("main", natv.ExportFunction, 0, 4)
//	if err := m.WriteFile("layer0_x64_64.native"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Parsing
//
// Load and validate a module file:
//
//	m, err := natv.LoadFile("layer0_x64_64.native")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	addr, ok := m.SymbolAddress("main")
//
// ParseModule parses bytes without checksum validation; Validate runs the
// structural and checksum checks separately.
//
// # Integrity
//
// The header checksum XOR-combines CRC64 values over the code, data and
// export table regions, and the optional metadata block carries a CRC32
// plus a 4-lane content identity hash. All of these are accident
// detectors, not tamper proofs: the content hash is a simple
// multiplicative hash despite the "SHA-256" label legacy files use for
// the field, and signature verification is a placeholder that performs no
// cryptography.
package natv
