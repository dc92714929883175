// Package natvruntime provides a Go implementation of the NATV native
// module system: a self-describing binary container for compiled code
// plus the loader that brings such modules into a process.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	natv-runtime/        Root package (documentation only)
//	├── natv/            NATV container codec: build, encode, decode, validate
//	├── loader/          Module loading, LRU caching, health and stats tracking
//	├── checksum/        CRC-32/CRC-64 helpers and the content hash
//	├── errors/          Structured error types shared by all packages
//	└── cmd/inspect/     CLI for dumping and verifying module files
//
// # Quick Start
//
// Build a module and write it to disk:
//
//	m := natv.New(natv.ArchX8664, natv.TypeUser)
//	if err := m.SetCode(code, 0); err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.AddExport("add", natv.ExportFunction, 0, 16); err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.SetMetadata(&natv.Metadata{Name: "math"}); err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.CalculateChecksums(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.WriteFile("bin/math_x64_64.native"); err != nil {
//	    log.Fatal(err)
//	}
//
// Load it back and resolve a symbol:
//
//	sys, err := loader.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sys.Cleanup()
//
//	if err := sys.Load("math"); err != nil {
//	    log.Fatal(err)
//	}
//	addr, err := sys.Resolve("math", "add")
//
// # Integrity Model
//
// Modules carry three integrity artifacts: a CRC-32 over the code
// section, a fast non-cryptographic content hash over a window of the
// code, and a header checksum that XOR-combines CRC-64 digests of the
// code, data, and export table. None of these are tamper-proof in a
// cryptographic sense; signature support in the V1 format is a
// placeholder. See the natv and checksum package docs for details.
//
// # Thread Safety
//
// loader.System is safe for concurrent use. natv.Module is a plain
// value builder and is NOT thread-safe; confine a module under
// construction to a single goroutine.
package natvruntime
