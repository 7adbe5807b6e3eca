package hexarchive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/hexarchive/internal/sink"
	"github.com/meigma/hexarchive/internal/testutil"
)

// failingSink fails writes for selected names.
type failingSink struct {
	*sink.MemorySink
	fail map[string]error
}

func (s *failingSink) WriteEntry(name string, data []byte) error {
	if err, ok := s.fail[name]; ok {
		return err
	}
	return s.MemorySink.WriteEntry(name, data)
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func manifestOf(t *testing.T, m *sink.MemorySink) string {
	t.Helper()
	data, ok := m.Manifest()
	require.True(t, ok, "manifest not written")
	return string(data)
}

func TestRun_TwoEntriesEndToEnd(t *testing.T) {
	t.Parallel()

	tenBytes := []byte("0123456789")
	compressed := testutil.Zlib(t, tenBytes)
	buf := testutil.Build(t, binary.BigEndian,
		testutil.TestEntry{Name: "a.txt", OriginalSize: 5, Payload: []byte("hello")},
		testutil.TestEntry{Name: "b.txt", OriginalSize: 10, Method: MethodDeflate, Payload: compressed},
	)

	dir := filepath.Join(t.TempDir(), "extracted")
	m, err := New(NewFileSink(dir)).Run(buf)
	require.NoError(t, err)
	assert.False(t, m.Aborted)
	assert.Zero(t, m.Skipped)

	got, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got, err = os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, tenBytes, got)

	manifest, err := os.ReadFile(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	want := "a.txt\t5\t5\tnone\n" +
		"b.txt\t10\t" + strconv.Itoa(len(compressed)) + "\tzlib"
	assert.Equal(t, want, string(manifest))
}

func TestRun_AllMethodsLittleEndian(t *testing.T) {
	t.Parallel()

	content := []byte("payload recovered through every transform")
	buf := testutil.NewArchive(binary.LittleEndian, 2).
		Add(testutil.TestEntry{Name: "plain.txt", OriginalSize: uint64(len(content)), Payload: content}).
		Add(testutil.TestEntry{Name: "z/deflate.txt", OriginalSize: uint64(len(content)), Method: MethodDeflate, Payload: testutil.Zlib(t, content)}).
		Add(testutil.TestEntry{Name: "l/lzma.txt", OriginalSize: uint64(len(content)), Method: MethodLZMA, Payload: testutil.LZMA(t, content)}).
		Add(testutil.TestEntry{Name: "f/fernet.txt", OriginalSize: uint64(len(content)), Method: MethodAuthEnc, Payload: testutil.Fernet(t, content)}).
		Bytes()

	mem := sink.NewMemorySink()
	m, err := New(mem).Run(buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"plain.txt", "z/deflate.txt", "l/lzma.txt", "f/fernet.txt"}, mem.Names())
	for _, name := range mem.Names() {
		got, _ := mem.File(name)
		assert.Equal(t, content, got, name)
	}

	labels := make([]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		labels = append(labels, r.Method.String())
	}
	assert.Equal(t, []string{"none", "zlib", "LZMA", "Fernet"}, labels)
	assert.Equal(t, m.String(), manifestOf(t, mem))
}

func TestRun_FatalHeaderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{"bad magic", []byte("ZIPS\x01rest"), ErrInvalidMagic},
		{"bad version", []byte("ARCH\x07"), ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := filepath.Join(t.TempDir(), "out")
			m, err := New(NewFileSink(dir)).Run(tt.buf)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, m)

			_, statErr := os.Stat(dir)
			assert.True(t, os.IsNotExist(statErr), "output directory should not be created")
		})
	}
}

func TestRun_TruncatedRecordKeepsEarlierEntries(t *testing.T) {
	t.Parallel()

	a := testutil.NewArchive(binary.BigEndian, 1).
		Add(testutil.TestEntry{Name: "one", OriginalSize: 1, Payload: []byte("1")}).
		Add(testutil.TestEntry{Name: "two", OriginalSize: 1, Payload: []byte("2")})
	a.AddRaw(a.Uint32(500)).AddRaw([]byte("short name"))

	logger, logs := newTestLogger()
	mem := sink.NewMemorySink()
	m, err := New(mem, WithLogger(logger)).Run(a.Bytes())
	require.NoError(t, err)

	assert.True(t, m.Aborted)
	assert.Equal(t, "one\t1\t1\tnone\ntwo\t1\t1\tnone", manifestOf(t, mem))
	assert.Equal(t, []string{"one", "two"}, mem.Names())
	assert.Contains(t, logs.String(), "record stream aborted")
	assert.Contains(t, logs.String(), "truncated record")
}

func TestRun_InvalidNameStopsStream(t *testing.T) {
	t.Parallel()

	buf := testutil.Build(t, binary.BigEndian,
		testutil.TestEntry{Name: "ok", Payload: []byte("x"), OriginalSize: 1},
		testutil.TestEntry{RawName: []byte{0xc3, 0x28}, Payload: []byte("y")},
		testutil.TestEntry{Name: "unreached", Payload: []byte("z"), OriginalSize: 1},
	)

	mem := sink.NewMemorySink()
	m, err := New(mem).Run(buf)
	require.NoError(t, err)
	assert.True(t, m.Aborted)
	assert.Equal(t, []string{"ok"}, mem.Names())
}

func TestRun_RecoverableEntriesAreSkipped(t *testing.T) {
	t.Parallel()

	buf := testutil.Build(t, binary.BigEndian,
		testutil.TestEntry{Name: "short-key", OriginalSize: 3, Method: MethodAuthEnc, Payload: []byte("too short for a key")},
		testutil.TestEntry{Name: "bad-zlib", OriginalSize: 3, Method: MethodDeflate, Payload: []byte("nope")},
		testutil.TestEntry{Name: "bad-lzma", OriginalSize: 3, Method: MethodLZMA, Payload: []byte{0xe1, 1, 2}},
		testutil.TestEntry{Name: "mystery", OriginalSize: 3, Method: Method(7), Payload: []byte("abc")},
		testutil.TestEntry{Name: "../escape", OriginalSize: 3, Payload: []byte("abc")},
		testutil.TestEntry{Name: "survivor", OriginalSize: 3, Payload: []byte("abc")},
	)

	logger, logs := newTestLogger()
	mem := sink.NewMemorySink()
	m, err := New(mem, WithLogger(logger)).Run(buf)
	require.NoError(t, err)

	assert.False(t, m.Aborted)
	assert.Equal(t, 5, m.Skipped)
	assert.Equal(t, "survivor\t3\t3\tnone", manifestOf(t, mem))
	assert.Equal(t, []string{"survivor"}, mem.Names())

	out := logs.String()
	for _, name := range []string{"short-key", "bad-zlib", "bad-lzma", "mystery", "../escape"} {
		assert.Contains(t, out, "entry="+name)
	}
	assert.Contains(t, out, "insufficient key material")
	assert.Contains(t, out, "unknown method")
	assert.Contains(t, out, "invalid entry path")
}

func TestRun_SizeMismatchIsOnlyAWarning(t *testing.T) {
	t.Parallel()

	buf := testutil.Build(t, binary.BigEndian,
		testutil.TestEntry{Name: "liar.txt", OriginalSize: 100, Method: MethodDeflate, Payload: testutil.Zlib(t, []byte("tiny"))},
	)

	logger, logs := newTestLogger()
	mem := sink.NewMemorySink()
	m, err := New(mem, WithLogger(logger)).Run(buf)
	require.NoError(t, err)

	require.Len(t, m.Rows, 1)
	assert.Equal(t, uint64(100), m.Rows[0].OriginalSize)
	got, _ := mem.File("liar.txt")
	assert.Equal(t, []byte("tiny"), got)
	assert.Contains(t, logs.String(), "level=WARN msg=\"size mismatch\"")
	assert.Contains(t, logs.String(), "expected=100 got=4")
}

func TestRun_WriteFailureStops(t *testing.T) {
	t.Parallel()

	buf := testutil.Build(t, binary.BigEndian,
		testutil.TestEntry{Name: "first", OriginalSize: 1, Payload: []byte("1")},
		testutil.TestEntry{Name: "exists", OriginalSize: 1, Payload: []byte("2")},
		testutil.TestEntry{Name: "disk-full", OriginalSize: 1, Payload: []byte("3")},
		testutil.TestEntry{Name: "after", OriginalSize: 1, Payload: []byte("4")},
	)

	s := &failingSink{
		MemorySink: sink.NewMemorySink(),
		fail: map[string]error{
			"exists":    ErrExists,
			"disk-full": errors.New("no space left on device"),
		},
	}
	m, err := New(s).Run(buf)
	require.NoError(t, err)

	assert.True(t, m.Aborted)
	assert.Equal(t, 1, m.Skipped)
	assert.Equal(t, "first\t1\t1\tnone", manifestOf(t, s.MemorySink))
}

type brokenManifestSink struct{ *sink.MemorySink }

func (brokenManifestSink) WriteManifest([]byte) error { return errors.New("read-only") }

func TestRun_ManifestWriteFailure(t *testing.T) {
	t.Parallel()

	buf := testutil.Build(t, binary.BigEndian, testutil.TestEntry{Name: "a", OriginalSize: 1, Payload: []byte("a")})
	m, err := New(brokenManifestSink{sink.NewMemorySink()}).Run(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write manifest")
	require.NotNil(t, m)
	assert.Len(t, m.Rows, 1)
}

func TestRun_EmptyArchiveWritesEmptyManifest(t *testing.T) {
	t.Parallel()

	mem := sink.NewMemorySink()
	m, err := New(mem).Run([]byte("HCRA\x01"))
	require.NoError(t, err)
	assert.Empty(t, m.Rows)
	assert.Empty(t, manifestOf(t, mem))
}

func TestRun_MaxEntrySize(t *testing.T) {
	t.Parallel()

	big := bytes.Repeat([]byte("a"), 10_000)
	buf := testutil.Build(t, binary.BigEndian,
		testutil.TestEntry{Name: "big", OriginalSize: uint64(len(big)), Method: MethodDeflate, Payload: testutil.Zlib(t, big)},
	)

	mem := sink.NewMemorySink()
	m, err := New(mem, WithMaxEntrySize(1000)).Run(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Skipped)
	assert.Empty(t, mem.Names())
}

func TestExtractFile(t *testing.T) {
	t.Parallel()

	data := testutil.Build(t, binary.LittleEndian,
		testutil.TestEntry{Name: "docs/readme.md", OriginalSize: 6, Method: MethodLZMA, Payload: testutil.XZ(t, []byte("# hi\n\n"))},
	)

	for name, lines := range map[string][]string{
		"annotated": testutil.AnnotatedDump(data),
		"plain":     testutil.PlainDump(data, 30),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tmp := t.TempDir()
			input := filepath.Join(tmp, "archive.hex")
			require.NoError(t, os.WriteFile(input, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

			out := filepath.Join(tmp, "out")
			m, err := New(NewFileSink(out)).ExtractFile(input)
			require.NoError(t, err)
			require.Len(t, m.Rows, 1)

			got, err := os.ReadFile(filepath.Join(out, "docs", "readme.md"))
			require.NoError(t, err)
			assert.Equal(t, "# hi\n\n", string(got))
		})
	}
}

func TestExtractFile_Errors(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	out := filepath.Join(tmp, "out")
	x := New(NewFileSink(out))

	_, err := x.ExtractFile(filepath.Join(tmp, "missing.hex"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(tmp, "bad.hex")
	require.NoError(t, os.WriteFile(bad, []byte("4152434\n"), 0o600))
	_, err = x.ExtractFile(bad)
	require.ErrorIs(t, err, ErrMalformedHex)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_TruncatedXZIsSkipped(t *testing.T) {
	t.Parallel()

	stream := testutil.XZ(t, []byte("complete"))
	buf := testutil.Build(t, binary.BigEndian,
		testutil.TestEntry{Name: "cut.xz", OriginalSize: 8, Method: MethodLZMA, Payload: stream[:12]},
		testutil.TestEntry{Name: "whole.xz", OriginalSize: 8, Method: MethodLZMA, Payload: stream},
	)

	mem := sink.NewMemorySink()
	m, err := New(mem).Run(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Skipped)
	assert.Equal(t, []string{"whole.xz"}, mem.Names())
}

func TestRun_SmallEntryLimitKeepsSmallLZMA(t *testing.T) {
	t.Parallel()

	buf := testutil.Build(t, binary.LittleEndian,
		testutil.TestEntry{Name: "hello.txt", OriginalSize: 5, Method: MethodLZMA, Payload: testutil.LZMA(t, []byte("hello"))},
	)

	mem := sink.NewMemorySink()
	m, err := New(mem, WithMaxEntrySize(1<<20)).Run(buf)
	require.NoError(t, err)
	assert.Zero(t, m.Skipped)
	got, ok := mem.File("hello.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got)
}

func TestRun_NonCanonicalNameIsExtracted(t *testing.T) {
	t.Parallel()

	buf := testutil.Build(t, binary.BigEndian,
		testutil.TestEntry{Name: "./dot.txt", OriginalSize: 3, Payload: []byte("dot")},
	)

	dir := t.TempDir()
	m, err := New(NewFileSink(dir)).Run(buf)
	require.NoError(t, err)
	assert.Zero(t, m.Skipped)
	assert.Equal(t, "./dot.txt\t3\t3\tnone", m.String())

	got, err := os.ReadFile(filepath.Join(dir, "dot.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("dot"), got)
}
