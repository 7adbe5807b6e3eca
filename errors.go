package hexarchive

import "github.com/meigma/hexarchive/internal/archtype"

// Fatal errors, returned before any entry is processed.
var (
	// ErrMalformedHex is returned when the hex dump cannot be decoded.
	ErrMalformedHex = archtype.ErrMalformedHex

	// ErrInvalidMagic is returned when the archive signature is not recognised.
	ErrInvalidMagic = archtype.ErrInvalidMagic

	// ErrUnsupportedVersion is returned when the format version is not 1 or 2.
	ErrUnsupportedVersion = archtype.ErrUnsupportedVersion
)

// Stream-terminating errors. They are logged, never returned by Run.
var (
	// ErrTruncatedRecord is reported when a record runs past the end of the archive.
	ErrTruncatedRecord = archtype.ErrTruncatedRecord

	// ErrInvalidName is reported when an entry name is not valid UTF-8.
	ErrInvalidName = archtype.ErrInvalidName
)

// Entry-recoverable errors. They are logged and the entry is skipped.
var (
	ErrUnknownMethod           = archtype.ErrUnknownMethod
	ErrDecompression           = archtype.ErrDecompression
	ErrInsufficientKeyMaterial = archtype.ErrInsufficientKeyMaterial
	ErrInvalidKey              = archtype.ErrInvalidKey
	ErrDecryption              = archtype.ErrDecryption
	ErrSizeOverflow            = archtype.ErrSizeOverflow
	ErrInvalidPath             = archtype.ErrInvalidPath
	ErrExists                  = archtype.ErrExists
)
