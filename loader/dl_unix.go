//go:build linux || darwin || freebsd

package loader

import (
	"github.com/ebitengine/purego"

	"github.com/astcvm/natv-runtime/errors"
)

const dylibSuffix = ".so"

type dylibHandle struct {
	ref uintptr
}

func openDylib(path string) (Handle, error) {
	ref, err := purego.Dlopen(path, purego.RTLD_LAZY|purego.RTLD_LOCAL)
	if err != nil {
		return nil, errors.System(errors.PhaseLoad, "dlopen "+path, err)
	}
	return &dylibHandle{ref: ref}, nil
}

func (h *dylibHandle) Lookup(symbol string) (uintptr, error) {
	addr, err := purego.Dlsym(h.ref, symbol)
	if err != nil {
		return 0, errors.System(errors.PhaseResolve, "dlsym "+symbol, err)
	}
	return addr, nil
}

func (h *dylibHandle) Close() error {
	if err := purego.Dlclose(h.ref); err != nil {
		return errors.System(errors.PhaseLoad, "dlclose", err)
	}
	return nil
}
