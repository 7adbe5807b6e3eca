package hexarchive

import (
	"errors"
	"io"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/hexarchive/internal/record"
)

// EntryInfo describes one record without extracting it.
type EntryInfo struct {
	Name          string
	OriginalSize  uint64
	ProcessedSize uint64
	Method        Method
	Offset        int

	// Digest is the sha256 digest of the recovered content. It is empty
	// when Err is set.
	Digest digest.Digest

	// Size is the length of the recovered content.
	Size int

	// Err is the reason the entry would be skipped by Run, if any.
	Err error
}

// Inspect walks the records of buf and calls fn for each, in order.
//
// Payloads are transformed so that Digest and Err reflect what Run would
// do, but nothing is written. Inspect returns header errors, the first
// structural record error, or the first error returned by fn.
func (x *Extractor) Inspect(buf []byte, fn func(EntryInfo) error) error {
	h, err := record.ReadHeader(buf)
	if err != nil {
		return err
	}
	p := record.NewParser(buf, h)
	for {
		e, err := p.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		info := EntryInfo{
			Name:          e.Name,
			OriginalSize:  e.OriginalSize,
			ProcessedSize: e.ProcessedSize,
			Method:        e.Method,
			Offset:        e.Offset,
		}
		data, err := x.dispatcher.Transform(e.Method, e.Payload, e.Name)
		if err != nil {
			info.Err = err
		} else {
			info.Digest = digest.FromBytes(data)
			info.Size = len(data)
		}
		if err := fn(info); err != nil {
			return err
		}
	}
}
