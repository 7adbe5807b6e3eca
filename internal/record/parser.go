package record

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/meigma/hexarchive/internal/archtype"
	"github.com/meigma/hexarchive/internal/sizing"
)

// Entry is an alias for archtype.Entry.
type Entry = archtype.Entry

// Parser iterates the records that follow the header.
type Parser struct {
	cur *sizing.Cursor
	err error
}

// NewParser returns a parser positioned at the first record.
// buf must begin with the header h was read from.
func NewParser(buf []byte, h Header) *Parser {
	return &Parser{
		cur: sizing.NewCursor(buf, HeaderSize, h.ByteOrder, archtype.ErrTruncatedRecord),
	}
}

// Offset returns the current position in the buffer.
func (p *Parser) Offset() int {
	return p.cur.Offset()
}

// Next returns the next record.
//
// It returns io.EOF when the buffer ends exactly on a record boundary.
// Any other error is structural: it wraps archtype.ErrTruncatedRecord or
// archtype.ErrInvalidName, and every later call returns it again.
func (p *Parser) Next() (Entry, error) {
	if p.err != nil {
		return Entry{}, p.err
	}
	if p.cur.Done() {
		return Entry{}, io.EOF
	}
	e, err := p.next()
	if err != nil {
		p.err = err
		return Entry{}, err
	}
	return e, nil
}

func (p *Parser) next() (Entry, error) {
	e := Entry{Offset: p.cur.Offset()}

	nameLen, err := p.cur.Uint32("name_length")
	if err != nil {
		return Entry{}, err
	}
	name, err := p.cur.Bytes("name", uint64(nameLen))
	if err != nil {
		return Entry{}, err
	}
	if !utf8.Valid(name) {
		return Entry{}, fmt.Errorf("%w: not UTF-8 at offset %d", archtype.ErrInvalidName, e.Offset)
	}
	e.Name = string(name)

	if e.OriginalSize, err = p.cur.Uint64("original_size"); err != nil {
		return Entry{}, err
	}
	if e.ProcessedSize, err = p.cur.Uint64("processed_size"); err != nil {
		return Entry{}, err
	}
	method, err := p.cur.Uint8("method")
	if err != nil {
		return Entry{}, err
	}
	e.Method = archtype.Method(method)

	if e.Payload, err = p.cur.Bytes("payload", e.ProcessedSize); err != nil {
		return Entry{}, err
	}
	return e, nil
}
