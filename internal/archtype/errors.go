package archtype

import "errors"

// Fatal errors. The run stops before any entry is processed.
var (
	// ErrMalformedHex is returned when the hex dump has an odd number of
	// digits or a non-hex character.
	ErrMalformedHex = errors.New("hexarchive: malformed hex input")

	// ErrInvalidMagic is returned when the buffer does not start with a
	// recognised signature.
	ErrInvalidMagic = errors.New("hexarchive: invalid magic")

	// ErrUnsupportedVersion is returned when the format version is not 1 or 2.
	ErrUnsupportedVersion = errors.New("hexarchive: unsupported version")
)

// Stream-terminating errors. Records after the failing one are not read.
var (
	// ErrTruncatedRecord is returned when a record field runs past the end
	// of the buffer.
	ErrTruncatedRecord = errors.New("hexarchive: truncated record")

	// ErrInvalidName is returned when an entry name is not valid UTF-8.
	ErrInvalidName = errors.New("hexarchive: invalid entry name")
)

// Entry-recoverable errors. The entry is skipped and the stream continues.
var (
	// ErrUnknownMethod is returned for a method tag outside 0-3.
	ErrUnknownMethod = errors.New("hexarchive: unknown method")

	// ErrDecompression is returned when a zlib or LZMA payload is corrupt.
	ErrDecompression = errors.New("hexarchive: decompression failed")

	// ErrInsufficientKeyMaterial is returned when an encrypted payload is
	// shorter than its embedded key.
	ErrInsufficientKeyMaterial = errors.New("hexarchive: insufficient key material")

	// ErrInvalidKey is returned when the embedded key is not valid base64
	// or does not decode to 32 bytes.
	ErrInvalidKey = errors.New("hexarchive: invalid key")

	// ErrDecryption is returned when a token fails authentication or
	// decryption.
	ErrDecryption = errors.New("hexarchive: decryption failed")

	// ErrSizeOverflow is returned when transformed output exceeds the
	// configured limit or a size does not fit in memory.
	ErrSizeOverflow = errors.New("hexarchive: size overflow")

	// ErrInvalidPath is returned when an entry name cannot be used as a
	// relative output path.
	ErrInvalidPath = errors.New("hexarchive: invalid entry path")

	// ErrExists is returned when an output file already exists and
	// overwriting is disabled.
	ErrExists = errors.New("hexarchive: output exists")
)
