// Package testutil builds archives and hex dumps for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/meigma/hexarchive/internal/archtype"
)

// Magic signatures in both byte orders.
const (
	MagicBig    = "ARCH"
	MagicLittle = "HCRA"
)

// TestEntry holds data for one archive record.
//
// ProcessedSize is written as len(Payload) unless OverrideProcessedSize is
// set, which lets tests declare a size that disagrees with the payload.
type TestEntry struct {
	Name         string
	RawName      []byte
	OriginalSize uint64
	Method       archtype.Method
	Payload      []byte

	OverrideProcessedSize bool
	ProcessedSize         uint64
}

// Archive accumulates records for a test archive.
type Archive struct {
	order   binary.AppendByteOrder
	version byte
	buf     bytes.Buffer
}

// NewArchive starts an archive with the signature matching order.
func NewArchive(order binary.AppendByteOrder, version byte) *Archive {
	a := &Archive{order: order, version: version}
	if order == binary.LittleEndian {
		a.buf.WriteString(MagicLittle)
	} else {
		a.buf.WriteString(MagicBig)
	}
	a.buf.WriteByte(version)
	return a
}

// Add appends a well-formed record.
func (a *Archive) Add(e TestEntry) *Archive {
	name := e.RawName
	if name == nil {
		name = []byte(e.Name)
	}
	size := uint64(len(e.Payload))
	if e.OverrideProcessedSize {
		size = e.ProcessedSize
	}

	a.buf.Write(a.order.AppendUint32(nil, uint32(len(name)))) //nolint:gosec // test names are short
	a.buf.Write(name)
	a.buf.Write(a.order.AppendUint64(nil, e.OriginalSize))
	a.buf.Write(a.order.AppendUint64(nil, size))
	a.buf.WriteByte(byte(e.Method))
	a.buf.Write(e.Payload)
	return a
}

// AddRaw appends arbitrary bytes, typically a damaged record.
func (a *Archive) AddRaw(b []byte) *Archive {
	a.buf.Write(b)
	return a
}

// Uint32 encodes v in the archive's byte order.
func (a *Archive) Uint32(v uint32) []byte {
	return a.order.AppendUint32(nil, v)
}

// Bytes returns a copy of the archive built so far.
func (a *Archive) Bytes() []byte {
	return bytes.Clone(a.buf.Bytes())
}

// Build is a convenience for a single-shot archive.
func Build(tb testing.TB, order binary.AppendByteOrder, entries ...TestEntry) []byte {
	tb.Helper()
	a := NewArchive(order, 1)
	for _, e := range entries {
		a.Add(e)
	}
	return a.Bytes()
}
