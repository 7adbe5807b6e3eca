package testutil

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AnnotatedDump renders data the way xxd does: an offset label, sixteen
// bytes in two-byte groups, two spaces, then an ASCII column.
func AnnotatedDump(data []byte) []string {
	var lines []string
	for off := 0; off < len(data); off += 16 {
		end := min(off+16, len(data))
		chunk := data[off:end]

		var groups strings.Builder
		for i := 0; i < 16; i += 2 {
			if i > 0 {
				groups.WriteByte(' ')
			}
			for j := i; j < i+2; j++ {
				if j < len(chunk) {
					fmt.Fprintf(&groups, "%02x", chunk[j])
				} else {
					groups.WriteString("  ")
				}
			}
		}

		ascii := make([]byte, len(chunk))
		for i, b := range chunk {
			if b >= 0x20 && b < 0x7f {
				ascii[i] = b
			} else {
				ascii[i] = '.'
			}
		}
		lines = append(lines, fmt.Sprintf("%08x: %s  %s", off, groups.String(), ascii))
	}
	return lines
}

// PlainDump renders data as bare hex digits, width bytes per line.
// A width of 0 puts everything on one line.
func PlainDump(data []byte, width int) []string {
	if width <= 0 {
		return []string{hex.EncodeToString(data)}
	}
	var lines []string
	for off := 0; off < len(data); off += width {
		end := min(off+width, len(data))
		lines = append(lines, hex.EncodeToString(data[off:end]))
	}
	return lines
}
