package hexarchive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/meigma/hexarchive/internal/hexdump"
	"github.com/meigma/hexarchive/internal/record"
	"github.com/meigma/hexarchive/internal/transform"
)

// DefaultMaxEntrySize is the default limit on a single decoded entry (256MB).
const DefaultMaxEntrySize = transform.DefaultMaxOutputSize

// Extractor decodes archives and hands their entries to a Sink.
type Extractor struct {
	sink         Sink
	logger       *slog.Logger
	maxEntrySize uint64
	dispatcher   *transform.Dispatcher
}

// New creates an Extractor that writes to sink.
func New(sink Sink, opts ...Option) *Extractor {
	x := &Extractor{
		sink:         sink,
		maxEntrySize: DefaultMaxEntrySize,
	}
	for _, opt := range opts {
		opt(x)
	}
	x.dispatcher = transform.New(transform.WithMaxOutputSize(x.maxEntrySize))
	return x
}

func (x *Extractor) log() *slog.Logger {
	if x.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return x.logger
}

// action is the outcome of handling one record.
type action uint8

const (
	// actionContinue: the entry was written and recorded.
	actionContinue action = iota
	// actionSkip: the entry was dropped, later records are still read.
	actionSkip
	// actionAbort: no further records are read.
	actionAbort
)

// ReadArchive reads a hex dump from r and returns the decoded bytes.
func ReadArchive(r io.Reader) ([]byte, error) {
	lines, err := hexdump.ReadLines(r)
	if err != nil {
		return nil, err
	}
	return hexdump.Decode(lines)
}

// ExtractFile reads the hex dump at path and extracts it.
func (x *Extractor) ExtractFile(path string) (*Manifest, error) {
	f, err := os.Open(path) //nolint:gosec // path is chosen by the caller
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file
	return x.ExtractReader(f)
}

// ExtractReader reads a hex dump from r and extracts it.
func (x *Extractor) ExtractReader(r io.Reader) (*Manifest, error) {
	buf, err := ReadArchive(r)
	if err != nil {
		return nil, err
	}
	return x.Run(buf)
}

// Run extracts every entry of the decoded archive buf.
//
// Header errors are returned before anything is written. Otherwise the
// manifest of extracted entries is always written to the sink, including
// when a damaged record stops the run early; in that case Manifest.Aborted
// is set and the returned error is nil. The only error returned after the
// header is a failure to write the manifest itself.
func (x *Extractor) Run(buf []byte) (*Manifest, error) {
	h, err := record.ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	log := x.log()
	log.Debug("archive header",
		slog.String("byte_order", h.ByteOrder.String()),
		slog.Int("version", int(h.Version)),
		slog.Int("size", len(buf)))

	m := &Manifest{}
	p := record.NewParser(buf, h)
loop:
	for {
		e, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error("record stream aborted",
				slog.Int("offset", p.Offset()),
				slog.Any("error", err))
			m.Aborted = true
			break
		}

		switch x.handle(e, m) {
		case actionContinue:
		case actionSkip:
			m.Skipped++
		case actionAbort:
			m.Aborted = true
			break loop
		}
	}

	if err := x.sink.WriteManifest(m.Bytes()); err != nil {
		return m, fmt.Errorf("write manifest: %w", err)
	}
	log.Info("extraction finished",
		slog.Int("extracted", len(m.Rows)),
		slog.Int("skipped", m.Skipped),
		slog.Bool("aborted", m.Aborted))
	return m, nil
}

// handle transforms and writes one entry, recording it in m on success.
func (x *Extractor) handle(e record.Entry, m *Manifest) action {
	log := x.log().With(
		slog.String("entry", e.Name),
		slog.Int("offset", e.Offset),
		slog.String("method", e.Method.String()))

	data, err := x.dispatcher.Transform(e.Method, e.Payload, e.Name)
	if err != nil {
		log.Error("skipping entry", slog.Any("error", err))
		return actionSkip
	}

	if uint64(len(data)) != e.OriginalSize {
		log.Warn("size mismatch",
			slog.Uint64("expected", e.OriginalSize),
			slog.Int("got", len(data)))
	}

	if err := x.sink.WriteEntry(e.Name, data); err != nil {
		if errors.Is(err, ErrInvalidPath) || errors.Is(err, ErrExists) {
			log.Error("skipping entry", slog.Any("error", err))
			return actionSkip
		}
		log.Error("write failed, stopping", slog.Any("error", err))
		return actionAbort
	}

	m.Rows = append(m.Rows, ManifestRow{
		Name:          e.Name,
		OriginalSize:  e.OriginalSize,
		ProcessedSize: e.ProcessedSize,
		Method:        e.Method,
	})
	log.Info("extracted entry", slog.Int("size", len(data)))
	return actionContinue
}
