// Package checksum provides the integrity checksums used by the NATV
// module format: table-driven CRC32 and CRC64 over byte ranges, and the
// non-cryptographic 4-lane content identity hash stored in module metadata.
//
// Lookup tables are built once, lazily, and shared process-wide.
package checksum
