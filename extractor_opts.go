package hexarchive

import "log/slog"

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger for per-entry diagnostics.
//
// Skipped entries and stream failures are logged at error level, size
// mismatches at warn level, extracted entries at info level.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Extractor) {
		x.logger = logger
	}
}

// WithMaxEntrySize limits the decompressed size of a single entry.
// Entries that would exceed it are skipped with ErrSizeOverflow.
// Set limit to 0 to disable the limit. Default: 256MB.
func WithMaxEntrySize(limit uint64) Option {
	return func(x *Extractor) {
		x.maxEntrySize = limit
	}
}
