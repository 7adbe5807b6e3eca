package sizing

import (
	"encoding/binary"
	"fmt"
)

// Cursor reads fixed- and variable-width fields from a byte slice.
//
// The offset only advances after a read has been bounds-checked in full,
// so a failed read leaves the cursor at the start of the failing field.
// Slices returned by Bytes alias the underlying buffer.
type Cursor struct {
	buf   []byte
	off   int
	order binary.ByteOrder
	short error
}

// NewCursor returns a cursor positioned at off. Reads past the end of buf
// return an error wrapping short.
func NewCursor(buf []byte, off int, order binary.ByteOrder, short error) *Cursor {
	return &Cursor{buf: buf, off: off, order: order, short: short}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int {
	return c.off
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

// Done reports whether the cursor sits exactly at the end of the buffer.
func (c *Cursor) Done() bool {
	return c.off == len(c.buf)
}

// Uint8 reads one byte.
func (c *Cursor) Uint8(field string) (uint8, error) {
	b, err := c.take(field, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint32 reads a 4-byte integer in the cursor's byte order.
func (c *Cursor) Uint32(field string) (uint32, error) {
	b, err := c.take(field, 4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

// Uint64 reads an 8-byte integer in the cursor's byte order.
func (c *Cursor) Uint64(field string) (uint64, error) {
	b, err := c.take(field, 8)
	if err != nil {
		return 0, err
	}
	return c.order.Uint64(b), nil
}

// Bytes returns the next n bytes without copying.
func (c *Cursor) Bytes(field string, n uint64) ([]byte, error) {
	if n > uint64(c.Remaining()) { //nolint:gosec // Remaining is never negative
		return nil, c.shortErr(field, n)
	}
	return c.take(field, int(n))
}

func (c *Cursor) take(field string, n int) ([]byte, error) {
	if n > c.Remaining() {
		return nil, c.shortErr(field, uint64(n)) //nolint:gosec // n is never negative
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

func (c *Cursor) shortErr(field string, n uint64) error {
	return fmt.Errorf("%w: %s needs %d bytes at offset %d, %d remain",
		c.short, field, n, c.off, c.Remaining())
}
