package transform

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// zlibReader is what zlib.NewReader returns.
type zlibReader interface {
	io.ReadCloser
	zlib.Resetter
}

// zlibPool manages reusable zlib readers to reduce allocation overhead.
type zlibPool struct {
	pool sync.Pool
}

// Get returns a reader positioned at the start of src.
// The caller must call the returned release function when done.
// If an error is returned, no release function needs to be called.
func (p *zlibPool) Get(src []byte) (io.Reader, func(), error) {
	r := bytes.NewReader(src)

	if zr, ok := p.pool.Get().(zlibReader); ok {
		// Reset reads the stream header, so a corrupt header fails here.
		if err := zr.Reset(r, nil); err != nil {
			p.pool.Put(zr)
			return nil, nil, err
		}
		return zr, func() { p.pool.Put(zr) }, nil
	}

	rc, err := zlib.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	zr, ok := rc.(zlibReader)
	if !ok {
		return rc, func() { _ = rc.Close() }, nil //nolint:errcheck // reader holds no resources
	}
	return zr, func() { p.pool.Put(zr) }, nil
}
