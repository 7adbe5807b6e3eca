package record

import (
	"encoding/binary"
	"fmt"

	"github.com/meigma/hexarchive/internal/archtype"
)

// HeaderSize is the number of bytes occupied by the magic and version.
const HeaderSize = 5

const (
	magicBig    = "ARCH"
	magicLittle = "HCRA"
)

// Header is the decoded archive header.
type Header struct {
	ByteOrder binary.ByteOrder
	Version   uint8
}

// ReadHeader validates the magic and version at the start of buf.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < len(magicBig) {
		return Header{}, fmt.Errorf("%w: archive is %d bytes", archtype.ErrInvalidMagic, len(buf))
	}

	var h Header
	switch magic := string(buf[:4]); magic {
	case magicBig:
		h.ByteOrder = binary.BigEndian
	case magicLittle:
		h.ByteOrder = binary.LittleEndian
	default:
		return Header{}, fmt.Errorf("%w: %q", archtype.ErrInvalidMagic, magic)
	}

	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: missing version byte", archtype.ErrUnsupportedVersion)
	}
	h.Version = buf[4]
	if h.Version != 1 && h.Version != 2 {
		return Header{}, fmt.Errorf("%w: %d", archtype.ErrUnsupportedVersion, h.Version)
	}
	return h, nil
}
