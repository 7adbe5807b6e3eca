// Package sink writes extracted entries and the manifest to their final
// locations.
package sink

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/meigma/hexarchive/internal/archtype"
)

// ManifestName is the file the manifest is written to, relative to the
// output root.
const ManifestName = "metadata.txt"

const (
	dirMode  = 0o750
	fileMode = 0o644
)

// FileSink writes entries to the filesystem.
//
// All paths are resolved through an os.Root, so entry names cannot escape
// the destination directory. By default, files are written to a temporary
// file in the same directory and renamed into place, so partially written
// files are never visible at the final path.
type FileSink struct {
	destDir     string
	overwrite   bool
	directWrite bool
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithOverwrite allows overwriting existing files.
// By default, an existing file makes WriteEntry fail with archtype.ErrExists.
func WithOverwrite(overwrite bool) FileSinkOption {
	return func(s *FileSink) {
		s.overwrite = overwrite
	}
}

// WithDirectWrites disables temp files and writes directly to the final path.
func WithDirectWrites(enabled bool) FileSinkOption {
	return func(s *FileSink) {
		s.directWrite = enabled
	}
}

// NewFileSink creates a FileSink that writes to destDir.
//
// destDir is created on first write if it does not exist.
func NewFileSink(destDir string, opts ...FileSinkOption) *FileSink {
	s := &FileSink{
		destDir: destDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the destination directory.
func (s *FileSink) Dir() string {
	return s.destDir
}

// WriteEntry writes data to the slash-separated path name below the
// destination, creating parent directories as needed.
//
// Names are cleaned first, so "./a.txt" and "a//b" are accepted. Names that
// are absolute or still climb out with ".." fail with archtype.ErrInvalidPath.
func (s *FileSink) WriteEntry(name string, data []byte) error {
	rel, err := CleanName(name)
	if err != nil {
		return err
	}
	return s.write(filepath.FromSlash(rel), data, s.overwrite)
}

// CleanName returns the slash-separated path an entry name is stored under.
func CleanName(name string) (string, error) {
	clean := path.Clean(name)
	if clean == "." || !fs.ValidPath(clean) {
		return "", fmt.Errorf("%w: %q", archtype.ErrInvalidPath, name)
	}
	return clean, nil
}

// WriteManifest writes the serialized manifest to ManifestName, replacing
// any previous manifest.
func (s *FileSink) WriteManifest(data []byte) error {
	return s.write(ManifestName, data, true)
}

func (s *FileSink) write(rel string, data []byte, overwrite bool) error {
	if err := os.MkdirAll(s.destDir, dirMode); err != nil {
		return fmt.Errorf("create directory %s: %w", s.destDir, err)
	}
	root, err := os.OpenRoot(s.destDir)
	if err != nil {
		return fmt.Errorf("open destination root %s: %w", s.destDir, err)
	}
	defer root.Close() //nolint:errcheck // nothing to flush on a root handle

	destPath := filepath.Join(s.destDir, rel)
	if !overwrite {
		if _, err := root.Lstat(rel); err == nil {
			return fmt.Errorf("%w: %s", archtype.ErrExists, destPath)
		}
	}

	dir := filepath.Dir(rel)
	if err := root.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create directory %s: %w", filepath.Join(s.destDir, dir), err)
	}

	if s.directWrite {
		return writeDirect(root, rel, destPath, data)
	}
	return writeAtomic(root, rel, destPath, data)
}

func writeDirect(root *os.Root, rel, destPath string, data []byte) error {
	f, err := root.OpenFile(rel, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileMode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", destPath, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()        //nolint:errcheck // best-effort cleanup
		_ = root.Remove(rel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := f.Close(); err != nil {
		_ = root.Remove(rel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close file %s: %w", destPath, err)
	}
	return nil
}

func writeAtomic(root *os.Root, rel, destPath string, data []byte) error {
	tempFile, tempRel, err := createTempFile(root, filepath.Dir(rel), ".hexarchive-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()     //nolint:errcheck // we're cleaning up
		_ = root.Remove(tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = root.Remove(tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := root.Rename(tempRel, rel); err != nil {
		_ = root.Remove(tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename to %s: %w", destPath, err)
	}
	return nil
}

func createTempFile(root *os.Root, dir, prefix string) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		name, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		relPath := filepath.Join(dir, prefix+name)
		f, err := root.OpenFile(relPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, fileMode)
		if err == nil {
			return f, relPath, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("create temp file: exhausted retries")
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
