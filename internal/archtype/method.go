// Package archtype defines the types shared by the archive decoder packages.
// It exists so that record, transform and the root package agree on the
// entry layout without importing each other.
package archtype

import "strconv"

// Method identifies the transform applied to an entry's payload.
type Method uint8

const (
	MethodNone Method = iota
	MethodDeflate
	MethodLZMA
	MethodAuthEnc
)

// String returns the label written to the manifest for the method.
func (m Method) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodDeflate:
		return "zlib"
	case MethodLZMA:
		return "LZMA"
	case MethodAuthEnc:
		return "Fernet"
	default:
		return "unknown(" + strconv.Itoa(int(m)) + ")"
	}
}

// Valid reports whether m is one of the four defined methods.
func (m Method) Valid() bool {
	return m <= MethodAuthEnc
}
