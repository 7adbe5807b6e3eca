// Package transform recovers an entry's original bytes from its payload.
//
// Every error returned by a Dispatcher concerns a single entry. Callers skip
// the entry and carry on with the next record; nothing here can invalidate
// the record stream.
package transform

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fernet/fernet-go"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"

	"github.com/meigma/hexarchive/internal/archtype"
	"github.com/meigma/hexarchive/internal/sizing"
)

// DefaultMaxOutputSize is the default limit on decompressed output (256MB).
const DefaultMaxOutputSize = 256 << 20

const (
	// keyEncodedSize is the length of the base64 key that prefixes an
	// encrypted payload.
	keyEncodedSize = 44

	// keySize is the decoded key length: 16 bytes of signing key followed
	// by 16 bytes of encryption key.
	keySize = 32

	// lzmaHeaderLen covers the properties byte, dictionary size and
	// uncompressed size of a .lzma header.
	lzmaHeaderLen = 13

	// lzmaUnknownSize marks a .lzma stream terminated by an end marker.
	lzmaUnknownSize = ^uint64(0)

	// lzmaMaxDictSize bounds the dictionary a .lzma header may request.
	// xz -9 uses 64MB.
	lzmaMaxDictSize = 256 << 20

	// xzFooterLen is the size of the footer closing every .xz stream.
	xzFooterLen = 12
)

var (
	// xzMagic starts every .xz stream. Anything else is read as .lzma.
	xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

	// xzFooterMagic ends every .xz stream footer.
	xzFooterMagic = []byte{'Y', 'Z'}

	xzPadding = []byte{0, 0, 0, 0}
)

var urlSafeToStd = strings.NewReplacer("-", "+", "_", "/")

// Dispatcher applies the transform selected by an entry's method.
type Dispatcher struct {
	maxOutputSize uint64
	zlib          zlibPool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxOutputSize limits the size of decompressed output.
// Set limit to 0 to disable the limit.
func WithMaxOutputSize(limit uint64) Option {
	return func(d *Dispatcher) {
		d.maxOutputSize = limit
	}
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{maxOutputSize: DefaultMaxOutputSize}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Transform returns the original bytes of the entry called name.
//
// For MethodNone the payload itself is returned. All errors wrap one of the
// entry-recoverable sentinels in archtype.
func (d *Dispatcher) Transform(method archtype.Method, payload []byte, name string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch method {
	case archtype.MethodNone:
		return payload, nil
	case archtype.MethodDeflate:
		data, err = d.inflate(payload)
	case archtype.MethodLZMA:
		data, err = d.unlzma(payload)
	case archtype.MethodAuthEnc:
		data, err = decrypt(payload)
	default:
		err = fmt.Errorf("%w: %d", archtype.ErrUnknownMethod, uint8(method))
	}
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", name, err)
	}
	return data, nil
}

func (d *Dispatcher) inflate(payload []byte) ([]byte, error) {
	r, release, err := d.zlib.Get(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %v", archtype.ErrDecompression, err)
	}
	defer release()
	return d.readAll("zlib", r)
}

func (d *Dispatcher) unlzma(payload []byte) ([]byte, error) {
	var (
		r   io.Reader
		err error
	)
	if bytes.HasPrefix(payload, xzMagic) {
		if !xzComplete(payload) {
			return nil, fmt.Errorf("%w: xz: truncated stream", archtype.ErrDecompression)
		}
		r, err = xz.NewReader(bytes.NewReader(payload))
	} else {
		if err := d.checkLZMAHeader(payload); err != nil {
			return nil, err
		}
		r, err = lzma.NewReader(bytes.NewReader(payload))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lzma: %v", archtype.ErrDecompression, err)
	}
	return d.readAll("lzma", r)
}

// xzComplete reports whether payload ends with a stream footer, ignoring
// trailing stream padding. The xz reader reports input that stops inside a
// block header as a clean end of stream.
func xzComplete(payload []byte) bool {
	end := len(payload)
	for end >= len(xzPadding) && bytes.Equal(payload[end-len(xzPadding):end], xzPadding) {
		end -= len(xzPadding)
	}
	return end >= xz.HeaderLen+xzFooterLen && bytes.HasSuffix(payload[:end], xzFooterMagic)
}

// checkLZMAHeader rejects .lzma headers that declare more output than the
// limit, or a dictionary above lzmaMaxDictSize. The decoder allocates the
// whole dictionary up front.
func (d *Dispatcher) checkLZMAHeader(payload []byte) error {
	if d.maxOutputSize == 0 || len(payload) < lzmaHeaderLen {
		return nil
	}
	size := binary.LittleEndian.Uint64(payload[5:13])
	if size != lzmaUnknownSize && size > d.maxOutputSize {
		return fmt.Errorf("%w: lzma header declares %d bytes, limit is %d", archtype.ErrSizeOverflow, size, d.maxOutputSize)
	}
	dictSize := binary.LittleEndian.Uint32(payload[1:5])
	if dictSize > lzmaMaxDictSize {
		return fmt.Errorf("%w: lzma dictionary of %d bytes exceeds %d", archtype.ErrSizeOverflow, dictSize, lzmaMaxDictSize)
	}
	return nil
}

func (d *Dispatcher) readAll(codec string, r io.Reader) ([]byte, error) {
	data, err := sizing.ReadAllWithLimit(r, d.maxOutputSize, archtype.ErrSizeOverflow)
	if errors.Is(err, archtype.ErrSizeOverflow) {
		return nil, fmt.Errorf("%w: %s output exceeds %d bytes", err, codec, d.maxOutputSize)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", archtype.ErrDecompression, codec, err)
	}
	return data, nil
}

// decrypt opens a payload made of a URL-safe base64 key followed by a
// Fernet token sealed with that key. Token age is not checked.
func decrypt(payload []byte) ([]byte, error) {
	if len(payload) < keyEncodedSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, key needs %d",
			archtype.ErrInsufficientKeyMaterial, len(payload), keyEncodedSize)
	}

	encoded := urlSafeToStd.Replace(string(payload[:keyEncodedSize]))
	if n := len(encoded); n < keyEncodedSize {
		encoded += strings.Repeat("=", keyEncodedSize-n)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", archtype.ErrInvalidKey, err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("%w: decoded to %d bytes, want %d", archtype.ErrInvalidKey, len(raw), keySize)
	}

	var key fernet.Key
	copy(key[:], raw)
	msg := fernet.VerifyAndDecrypt(payload[keyEncodedSize:], -1, []*fernet.Key{&key})
	if msg == nil {
		return nil, fmt.Errorf("%w: token rejected", archtype.ErrDecryption)
	}
	return msg, nil
}
