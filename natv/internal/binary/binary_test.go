package binary

import (
	"io"
	"testing"
)

func TestU32RoundTrip(t *testing.T) {
	w := NewWriter()
	values := []uint32{0, 1, 0x5654414E, 0xFFFFFFFF}
	for _, v := range values {
		w.WriteU32(v)
	}

	r := NewReader(w.Bytes())
	for _, want := range values {
		got, err := r.ReadU32()
		if err != nil {
			t.Fatalf("ReadU32: %v", err)
		}
		if got != want {
			t.Errorf("got %#x, want %#x", got, want)
		}
	}
}

func TestU64RoundTrip(t *testing.T) {
	w := NewWriter()
	values := []uint64{0, 108, 0xC96C5795D7870F42, 0xFFFFFFFFFFFFFFFF}
	for _, v := range values {
		w.WriteU64(v)
	}

	r := NewReader(w.Bytes())
	for _, want := range values {
		got, err := r.ReadU64()
		if err != nil {
			t.Fatalf("ReadU64: %v", err)
		}
		if got != want {
			t.Errorf("got %#x, want %#x", got, want)
		}
	}
}

func TestS64RoundTrip(t *testing.T) {
	w := NewWriter()
	values := []int64{0, -1, 42, -0x7FFFFFFFFFFFFFFF}
	for _, v := range values {
		w.WriteS64(v)
	}

	r := NewReader(w.Bytes())
	for _, want := range values {
		got, err := r.ReadS64()
		if err != nil {
			t.Fatalf("ReadS64: %v", err)
		}
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
}

func TestFixedStringRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteFixedString("main", 256)
	if w.Len() != 256 {
		t.Fatalf("width = %d, want 256", w.Len())
	}

	r := NewReader(w.Bytes())
	s, err := r.ReadFixedString(256)
	if err != nil {
		t.Fatalf("ReadFixedString: %v", err)
	}
	if s != "main" {
		t.Errorf("got %q, want %q", s, "main")
	}
	if r.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", r.Remaining())
	}
}

func TestFixedStringTruncation(t *testing.T) {
	long := make([]byte, 20)
	for i := range long {
		long[i] = 'a'
	}

	w := NewWriter()
	w.WriteFixedString(string(long), 8)
	if w.Len() != 8 {
		t.Fatalf("width = %d, want 8", w.Len())
	}
	// Terminator always fits.
	if w.Bytes()[7] != 0 {
		t.Error("missing null terminator")
	}

	r := NewReader(w.Bytes())
	s, err := r.ReadFixedString(8)
	if err != nil {
		t.Fatalf("ReadFixedString: %v", err)
	}
	if s != "aaaaaaa" {
		t.Errorf("got %q, want 7 a's", s)
	}
}

func TestReadBytesShort(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.ReadBytes(4); err == nil {
		t.Error("expected error for short read")
	}
}

func TestSeekAndPosition(t *testing.T) {
	r := NewReader([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	if err := r.Seek(4); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if r.Position() != 4 {
		t.Errorf("position = %d, want 4", r.Position())
	}
	b, err := r.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if b != 4 {
		t.Errorf("got %d, want 4", b)
	}
	if r.Position() != 5 {
		t.Errorf("position = %d, want 5", r.Position())
	}
}

func TestParseErrorPosition(t *testing.T) {
	r := NewReader([]byte{1, 2})
	_, _ = r.ReadBytes(2)
	err := r.WrapError("header", io.ErrUnexpectedEOF)
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Position != 2 {
		t.Errorf("position = %d, want 2", pe.Position)
	}
	if pe.Unwrap() != io.ErrUnexpectedEOF {
		t.Error("Unwrap mismatch")
	}
}
