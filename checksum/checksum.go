package checksum

import (
	"hash/crc32"
	"hash/crc64"
	"sync"
)

// Polynomials used by the module format. Both are the reflected forms and
// are processed with an all-ones seed and a terminal all-ones XOR.
const (
	// PolyCRC32 is the IEEE 802.3 polynomial, reflected.
	PolyCRC32 = 0xEDB88320
	// PolyCRC64 is the ECMA-182 polynomial, reflected.
	PolyCRC64 = 0xC96C5795D7870F42
)

var (
	crc32Once  sync.Once
	crc32Table *crc32.Table

	crc64Once  sync.Once
	crc64Table *crc64.Table
)

func tableCRC32() *crc32.Table {
	crc32Once.Do(func() {
		crc32Table = crc32.MakeTable(PolyCRC32)
	})
	return crc32Table
}

func tableCRC64() *crc64.Table {
	crc64Once.Do(func() {
		crc64Table = crc64.MakeTable(PolyCRC64)
	})
	return crc64Table
}

// CRC32 computes the table-driven CRC32 of data.
func CRC32(data []byte) uint32 {
	return crc32.Checksum(data, tableCRC32())
}

// CRC64 computes the table-driven CRC64 of data.
func CRC64(data []byte) uint64 {
	return crc64.Checksum(data, tableCRC64())
}

// contentHashWindow bounds how much of the code section feeds the content
// hash. Bytes past the window do not affect the result.
const contentHashWindow = 1024

// Content computes the 256-bit content identity value stored in module
// metadata, as four 64-bit lanes.
//
// This is NOT a cryptographic hash. It is a multiplicative rolling hash
// over at most the first 1024 bytes of code, with the remaining lanes
// derived by XOR masking. Legacy metadata labels this field "SHA-256";
// treat that as aspirational only and never base a security decision on it.
func Content(code []byte) [4]uint64 {
	var h uint64
	n := len(code)
	if n > contentHashWindow {
		n = contentHashWindow
	}
	for i := 0; i < n; i++ {
		h = h*31 + uint64(code[i])
	}
	return [4]uint64{
		h,
		h ^ 0xAAAAAAAAAAAAAAAA,
		h ^ 0x5555555555555555,
		h ^ 0xCCCCCCCCCCCCCCCC,
	}
}
