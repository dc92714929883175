package natv_test

import (
	"testing"

	"github.com/astcvm/natv-runtime/natv"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b [3]uint32
		want int
	}{
		{[3]uint32{1, 0, 0}, [3]uint32{1, 0, 0}, 0},
		{[3]uint32{2, 0, 0}, [3]uint32{1, 9, 9}, 1},
		{[3]uint32{1, 2, 0}, [3]uint32{1, 3, 0}, -1},
		{[3]uint32{1, 2, 4}, [3]uint32{1, 2, 3}, 1},
		{[3]uint32{0, 0, 1}, [3]uint32{0, 0, 2}, -1},
	}
	for _, tt := range tests {
		got := natv.CompareVersions(tt.a[0], tt.a[1], tt.a[2], tt.b[0], tt.b[1], tt.b[2])
		if got != tt.want {
			t.Errorf("CompareVersions(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestVersionSatisfies(t *testing.T) {
	if !natv.VersionSatisfies(1, 2, 3, 1, 2, 3) {
		t.Error("equal version should satisfy")
	}
	if !natv.VersionSatisfies(1, 3, 0, 1, 2, 9) {
		t.Error("greater version should satisfy")
	}
	if natv.VersionSatisfies(1, 2, 2, 1, 2, 3) {
		t.Error("lesser version should not satisfy")
	}
}

func TestParseVersion(t *testing.T) {
	major, minor, patch, err := natv.ParseVersion("2.31.4")
	if err != nil {
		t.Fatalf("ParseVersion: %v", err)
	}
	if major != 2 || minor != 31 || patch != 4 {
		t.Errorf("got %d.%d.%d, want 2.31.4", major, minor, patch)
	}

	if _, _, _, err := natv.ParseVersion("not-a-version"); err == nil {
		t.Error("expected error for malformed version")
	}
}

func TestSetVersionRequiresMetadata(t *testing.T) {
	m := natv.New(natv.ArchX8664, natv.TypeUser)
	if err := m.SetVersion("1.0.0"); err == nil {
		t.Error("expected error without metadata")
	}

	if err := m.SetMetadata(&natv.Metadata{Name: "v"}); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := m.SetVersion("1.4.2"); err != nil {
		t.Fatalf("SetVersion: %v", err)
	}
	if m.Metadata.VersionMajor != 1 || m.Metadata.VersionMinor != 4 || m.Metadata.VersionPatch != 2 {
		t.Errorf("triple = %d.%d.%d, want 1.4.2",
			m.Metadata.VersionMajor, m.Metadata.VersionMinor, m.Metadata.VersionPatch)
	}
	if m.Metadata.VersionString != "1.4.2" {
		t.Errorf("version string = %q", m.Metadata.VersionString)
	}
}
