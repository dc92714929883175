package loader

import (
	"os"
	"path/filepath"

	"github.com/astcvm/natv-runtime/errors"
	"github.com/astcvm/natv-runtime/natv"
)

// Handle is an opaque loaded-module handle. The cache owns it until the
// module is unloaded, evicted, or the system is cleaned up.
type Handle interface {
	// Lookup resolves a symbol name to an in-process address.
	Lookup(symbol string) (uintptr, error)
	// Close releases the loaded module.
	Close() error
}

// Backend turns a module file path into a loaded Handle.
type Backend interface {
	Open(path string) (Handle, error)
}

// memoryReporter is implemented by handles that can estimate how much
// memory the loaded module occupies.
type memoryReporter interface {
	MemoryUsage() uint64
}

// NativeBackend loads ".native" files by parsing the NATV layout
// in-process: sections are owned by the parsed module and symbols
// resolve through its export table. This is the canonical path; genuine
// platform shared libraries go through DylibBackend instead.
type NativeBackend struct{}

func (NativeBackend) Open(path string) (Handle, error) {
	m, err := natv.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &nativeHandle{module: m}, nil
}

type nativeHandle struct {
	module *natv.Module
}

func (h *nativeHandle) Lookup(symbol string) (uintptr, error) {
	if h.module == nil {
		return 0, errors.NotInitialized(errors.PhaseResolve)
	}
	addr, ok := h.module.SymbolAddress(symbol)
	if !ok {
		name := ""
		if h.module.Metadata != nil {
			name = h.module.Metadata.Name
		}
		return 0, errors.SymbolNotFound(name, symbol)
	}
	return addr, nil
}

func (h *nativeHandle) Close() error {
	h.module = nil
	return nil
}

// MemoryUsage estimates the bytes held by the parsed module: code, data,
// and the export table at its on-disk entry size.
func (h *nativeHandle) MemoryUsage() uint64 {
	if h.module == nil {
		return 0
	}
	const entrySize = 280
	return uint64(len(h.module.Code)) + uint64(len(h.module.Data)) +
		uint64(len(h.module.Exports))*entrySize
}

// DylibBackend loads platform shared libraries through the OS
// dynamic-loading primitive (dlopen on POSIX, LoadLibrary on Windows).
type DylibBackend struct{}

func (DylibBackend) Open(path string) (Handle, error) {
	return openDylib(path)
}

// resolvePath derives a module's file path from its name. Each search
// path is tried for the native naming convention first, then for a
// shared-library fallback; if nothing exists on disk the first native
// candidate is returned so the load attempt (and its retries) still run
// against the conventional location.
func resolvePath(searchPaths []string, name string) string {
	nativeName := name + "_x64_64.native"
	dylibName := name + "_module" + dylibSuffix

	var first string
	for _, dir := range searchPaths {
		p := filepath.Join(dir, nativeName)
		if first == "" {
			first = p
		}
		if fileExists(p) {
			return p
		}
		if p := filepath.Join(dir, dylibName); fileExists(p) {
			return p
		}
	}
	return first
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
