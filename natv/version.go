package natv

import (
	"github.com/coreos/go-semver/semver"

	"github.com/astcvm/natv-runtime/errors"
)

// CompareVersions orders two version triples lexicographically by major,
// minor, patch. Returns -1, 0 or 1.
func CompareVersions(aMajor, aMinor, aPatch, bMajor, bMinor, bPatch uint32) int {
	switch {
	case aMajor != bMajor:
		if aMajor > bMajor {
			return 1
		}
		return -1
	case aMinor != bMinor:
		if aMinor > bMinor {
			return 1
		}
		return -1
	case aPatch != bPatch:
		if aPatch > bPatch {
			return 1
		}
		return -1
	default:
		return 0
	}
}

// VersionSatisfies reports whether the actual version is equal to or
// greater than the required one.
func VersionSatisfies(major, minor, patch, reqMajor, reqMinor, reqPatch uint32) bool {
	return CompareVersions(major, minor, patch, reqMajor, reqMinor, reqPatch) >= 0
}

// ParseVersion parses a semantic version string into a numeric triple.
func ParseVersion(s string) (major, minor, patch uint32, err error) {
	v, perr := semver.NewVersion(s)
	if perr != nil {
		return 0, 0, 0, errors.Wrap(errors.PhaseBuild, errors.KindInvalid, perr, "version string")
	}
	return uint32(v.Major), uint32(v.Minor), uint32(v.Patch), nil
}

// SetVersion parses version and records both the string and the numeric
// triple in the module's metadata.
func (m *Module) SetVersion(version string) error {
	if m.Metadata == nil {
		return errors.Invalid(errors.PhaseBuild, "module has no metadata")
	}

	major, minor, patch, err := ParseVersion(version)
	if err != nil {
		return err
	}
	m.Metadata.VersionString = version
	m.Metadata.VersionMajor = major
	m.Metadata.VersionMinor = minor
	m.Metadata.VersionPatch = patch
	return nil
}
