package hexarchive

import (
	"strconv"
	"strings"
)

// ManifestRow records one extracted entry.
type ManifestRow struct {
	Name          string
	OriginalSize  uint64
	ProcessedSize uint64
	Method        Method
}

// String returns the row as tab-separated name, original size, processed
// size and method label.
func (r ManifestRow) String() string {
	var sb strings.Builder
	r.appendTo(&sb)
	return sb.String()
}

func (r ManifestRow) appendTo(sb *strings.Builder) {
	sb.WriteString(r.Name)
	sb.WriteByte('\t')
	sb.WriteString(strconv.FormatUint(r.OriginalSize, 10))
	sb.WriteByte('\t')
	sb.WriteString(strconv.FormatUint(r.ProcessedSize, 10))
	sb.WriteByte('\t')
	sb.WriteString(r.Method.String())
}

// Manifest lists the entries written by a run, in archive order.
type Manifest struct {
	Rows []ManifestRow

	// Skipped counts entries that were logged and not written.
	Skipped int

	// Aborted is set when a damaged record or a write failure stopped the
	// run before the end of the archive.
	Aborted bool
}

// String serializes the manifest: one row per line, no trailing newline.
func (m *Manifest) String() string {
	var sb strings.Builder
	for i, r := range m.Rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		r.appendTo(&sb)
	}
	return sb.String()
}

// Bytes returns String as a byte slice.
func (m *Manifest) Bytes() []byte {
	return []byte(m.String())
}
