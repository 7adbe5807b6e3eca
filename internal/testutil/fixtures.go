package testutil

import (
	"bytes"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Zlib compresses data as a zlib stream.
func Zlib(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(tb, err)
	require.NoError(tb, w.Close())
	return buf.Bytes()
}

// LZMA compresses data in the legacy .lzma (LZMA-alone) container.
func LZMA(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	require.NoError(tb, err)
	_, err = w.Write(data)
	require.NoError(tb, err)
	require.NoError(tb, w.Close())
	return buf.Bytes()
}

// XZ compresses data in the .xz container.
func XZ(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(tb, err)
	_, err = w.Write(data)
	require.NoError(tb, err)
	require.NoError(tb, w.Close())
	return buf.Bytes()
}

// NewFernetKey returns a freshly generated key.
func NewFernetKey(tb testing.TB) *fernet.Key {
	tb.Helper()
	var k fernet.Key
	require.NoError(tb, k.Generate())
	return &k
}

// Fernet builds an encrypted payload: the 44-character URL-safe key
// followed by a token for data sealed with that key.
func Fernet(tb testing.TB, data []byte) []byte {
	tb.Helper()
	return FernetWithKey(tb, NewFernetKey(tb), data)
}

// FernetWithKey is like Fernet with a caller-supplied key.
func FernetWithKey(tb testing.TB, k *fernet.Key, data []byte) []byte {
	tb.Helper()
	tok, err := fernet.EncryptAndSign(data, k)
	require.NoError(tb, err)
	encoded := k.Encode()
	require.Len(tb, encoded, 44)
	return append([]byte(encoded), tok...)
}
