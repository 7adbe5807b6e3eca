package hexarchive

import (
	"github.com/meigma/hexarchive/internal/archtype"
	"github.com/meigma/hexarchive/internal/sink"
)

// Method identifies the transform applied to an entry's payload.
type Method = archtype.Method

// Method values.
const (
	MethodNone    = archtype.MethodNone
	MethodDeflate = archtype.MethodDeflate
	MethodLZMA    = archtype.MethodLZMA
	MethodAuthEnc = archtype.MethodAuthEnc
)

// ManifestName is the file name the manifest is written to.
const ManifestName = sink.ManifestName

// Sink receives extracted entries and the final manifest.
//
// WriteEntry failures wrapping ErrInvalidPath or ErrExists skip the entry.
// Any other WriteEntry failure stops extraction.
type Sink interface {
	WriteEntry(name string, data []byte) error
	WriteManifest(data []byte) error
}

// FileSink writes entries below a directory on disk.
type FileSink = sink.FileSink

// FileSinkOption configures a FileSink.
type FileSinkOption = sink.FileSinkOption

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string, opts ...FileSinkOption) *FileSink {
	return sink.NewFileSink(dir, opts...)
}

// WithOverwrite allows a FileSink to replace existing files.
func WithOverwrite(overwrite bool) FileSinkOption {
	return sink.WithOverwrite(overwrite)
}

// WithDirectWrites makes a FileSink write in place instead of renaming a
// temporary file.
func WithDirectWrites(enabled bool) FileSinkOption {
	return sink.WithDirectWrites(enabled)
}
