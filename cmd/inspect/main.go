package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/astcvm/natv-runtime/natv"
)

func main() {
	var (
		file    = flag.String("file", "", "Path to a .native module file")
		verify  = flag.Bool("verify", true, "Verify section checksums")
		symbol  = flag.String("symbol", "", "Look up an export by name and exit")
		exports = flag.Bool("exports", true, "List the export table")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -file <module.native> [-verify=false] [-symbol name]")
		os.Exit(1)
	}

	if err := inspect(*file, *verify, *symbol, *exports); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func inspect(path string, verify bool, symbol string, listExports bool) error {
	m, err := natv.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	if symbol != "" {
		e := m.FindExport(symbol)
		if e == nil {
			return fmt.Errorf("export %q not found", symbol)
		}
		fmt.Printf("%s: type=%s flags=%#x offset=%#x size=%d\n",
			e.Name, e.Type, e.Flags, e.Offset, e.Size)
		return nil
	}

	h := m.Header
	fmt.Printf("Module: %s\n", path)
	fmt.Printf("Format: magic=%#08x version=%d\n", h.Magic, h.Version)
	fmt.Printf("Target: arch=%s type=%s\n", h.Architecture, h.ModuleType)
	fmt.Printf("Sections: code=%d data=%d exports=%d relocations=%d dependencies=%d\n",
		h.CodeSize, h.DataSize, h.ExportCount, len(m.Relocations), len(m.Dependencies))

	if m.Metadata != nil {
		md := m.Metadata
		fmt.Printf("\nMetadata:\n")
		fmt.Printf("  name=%s version=%d.%d.%d author=%s\n",
			md.Name, md.VersionMajor, md.VersionMinor, md.VersionPatch, md.Author)
		if md.License != "" {
			fmt.Printf("  license=%s\n", md.License)
		}
		if md.Homepage != "" {
			fmt.Printf("  homepage=%s\n", md.Homepage)
		}
		fmt.Printf("  api=%d abi=%d min_loader=%d security_level=%d\n",
			md.APIVersion, md.ABIVersion, md.MinLoaderVersion, md.SecurityLevel)
	}

	if listExports && len(m.Exports) > 0 {
		fmt.Printf("\nExports:\n")
		for _, e := range m.Exports {
			fmt.Printf("  %-32s %-10s offset=%#08x size=%d\n", e.Name, e.Type, e.Offset, e.Size)
		}
	}

	if len(m.Dependencies) > 0 {
		fmt.Printf("\nDependencies:\n")
		for _, d := range m.Dependencies {
			opt := ""
			if d.Flags&natv.DepOptional != 0 {
				opt = " (optional)"
			}
			fmt.Printf("  %s >= %d.%d.%d%s\n", d.Name, d.Major, d.Minor, d.Patch, opt)
		}
	}

	signed := m.Metadata != nil && m.Metadata.Flags&natv.FlagSigned != 0
	fmt.Printf("\nSigned: %v\n", signed)

	if verify {
		if err := m.VerifyChecksums(); err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		fmt.Println("Checksums: OK")
	}
	return nil
}
