//go:build windows

package loader

import (
	"golang.org/x/sys/windows"

	"github.com/astcvm/natv-runtime/errors"
)

const dylibSuffix = ".dll"

type dylibHandle struct {
	ref windows.Handle
}

func openDylib(path string) (Handle, error) {
	ref, err := windows.LoadLibrary(path)
	if err != nil {
		return nil, errors.System(errors.PhaseLoad, "LoadLibrary "+path, err)
	}
	return &dylibHandle{ref: ref}, nil
}

func (h *dylibHandle) Lookup(symbol string) (uintptr, error) {
	addr, err := windows.GetProcAddress(h.ref, symbol)
	if err != nil {
		return 0, errors.System(errors.PhaseResolve, "GetProcAddress "+symbol, err)
	}
	return addr, nil
}

func (h *dylibHandle) Close() error {
	if err := windows.FreeLibrary(h.ref); err != nil {
		return errors.System(errors.PhaseLoad, "FreeLibrary", err)
	}
	return nil
}
