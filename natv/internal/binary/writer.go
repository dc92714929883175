package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer provides buffered writing utilities for NATV binary encoding.
// All multi-byte integers are fixed-width little-endian.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU32 writes a fixed 4-byte little-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU64 writes a fixed 8-byte little-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteS64 writes a fixed 8-byte little-endian int64.
func (w *Writer) WriteS64(v int64) {
	w.WriteU64(uint64(v))
}

// WriteFixedString writes s into a fixed-width field, null-terminated and
// zero-padded. Strings longer than width-1 are truncated so the terminator
// always fits.
func (w *Writer) WriteFixedString(s string, width int) {
	if len(s) > width-1 {
		s = s[:width-1]
	}
	w.buf.WriteString(s)
	w.Zeros(width - len(s))
}

// Zeros writes n zero bytes.
func (w *Writer) Zeros(n int) {
	for i := 0; i < n; i++ {
		w.buf.WriteByte(0)
	}
}
