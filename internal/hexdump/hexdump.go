// Package hexdump turns textual hex dumps into raw bytes.
//
// Two layouts are accepted. The annotated layout is the one produced by xxd
// and similar tools:
//
//	00000000: 4152 4348 0100 0000 05  ARCH.....
//
// where only the byte group between the first ':' and the first run of two
// spaces is decoded. The plain layout is a bare run of hex digit pairs,
// possibly split across lines.
//
// The layout is chosen once for the whole input: if any line contains ':'
// the input is treated as annotated. Inputs that mix both layouts are not
// supported and decode to whatever the annotated rules make of them.
package hexdump

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/meigma/hexarchive/internal/archtype"
)

// Format identifies a hex dump layout.
type Format uint8

const (
	FormatPlain Format = iota
	FormatAnnotated
)

// String returns the name of the layout.
func (f Format) String() string {
	switch f {
	case FormatPlain:
		return "plain"
	case FormatAnnotated:
		return "annotated"
	default:
		return "unknown"
	}
}

// maxLineSize bounds a single input line. Plain dumps are often one line.
const maxLineSize = 256 << 20

// Detect reports the layout of lines.
func Detect(lines []string) Format {
	for _, line := range lines {
		if strings.Contains(line, ":") {
			return FormatAnnotated
		}
	}
	return FormatPlain
}

// Decode detects the layout of lines and decodes them.
// Any malformed input fails the whole decode with archtype.ErrMalformedHex.
func Decode(lines []string) ([]byte, error) {
	if Detect(lines) == FormatAnnotated {
		return decodeAnnotated(lines)
	}
	return decodePlain(lines)
}

func decodeAnnotated(lines []string) ([]byte, error) {
	var out []byte
	for i, line := range lines {
		line = strings.TrimSpace(line)
		_, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		group, _, _ := strings.Cut(rest, "  ")
		group = strings.ReplaceAll(group, " ", "")
		decoded, err := hex.DecodeString(group)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", archtype.ErrMalformedHex, i+1, err)
		}
		out = append(out, decoded...)
	}
	return out, nil
}

func decodePlain(lines []string) ([]byte, error) {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(strings.TrimSpace(line))
	}
	out, err := hex.DecodeString(sb.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", archtype.ErrMalformedHex, err)
	}
	return out, nil
}

// ReadLines splits r into lines with trailing newlines removed.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read hex dump: %w", err)
	}
	return lines, nil
}
