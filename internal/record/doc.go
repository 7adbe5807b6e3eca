// Package record reads the archive header and the record stream that
// follows it.
//
// Layout, with every integer in the byte order selected by the magic:
//
//	offset 0   4 bytes  magic "ARCH" (big-endian) or "HCRA" (little-endian)
//	offset 4   1 byte   version, 1 or 2
//	offset 5.. records:
//	    u32    name_length
//	    bytes  name (UTF-8)
//	    u64    original_size
//	    u64    processed_size
//	    u8     method
//	    bytes  payload (processed_size bytes)
//
// Record boundaries are only known from the preceding record's lengths, so
// the parser never tries to resynchronize after a damaged record.
package record
