//go:build !linux && !darwin && !freebsd && !windows

package loader

import (
	"github.com/astcvm/natv-runtime/errors"
)

const dylibSuffix = ".so"

func openDylib(path string) (Handle, error) {
	return nil, errors.System(errors.PhaseLoad,
		"platform dynamic loading is not supported on this OS", nil)
}
