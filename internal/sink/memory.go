package sink

import (
	"bytes"
	"sync"
)

// MemorySink keeps written entries in memory. It applies the same name
// rules as FileSink and always overwrites.
type MemorySink struct {
	mu       sync.Mutex
	files    map[string][]byte
	order    []string
	manifest []byte
	wrote    bool
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteEntry stores a copy of data under the cleaned name.
func (m *MemorySink) WriteEntry(name string, data []byte) error {
	name, err := CleanName(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; !ok {
		m.order = append(m.order, name)
	}
	m.files[name] = bytes.Clone(data)
	return nil
}

// WriteManifest stores a copy of the manifest.
func (m *MemorySink) WriteManifest(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manifest = bytes.Clone(data)
	m.wrote = true
	return nil
}

// File returns the content written for name.
func (m *MemorySink) File(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	return data, ok
}

// Names returns entry names in first-write order.
func (m *MemorySink) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// Manifest returns the manifest and whether one was written.
func (m *MemorySink) Manifest() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.manifest, m.wrote
}
