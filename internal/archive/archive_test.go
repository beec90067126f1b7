package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestOpen_NotAZip(t *testing.T) {
	_, err := Open([]byte("definitely not a zip"))
	require.Error(t, err)
}

func TestOpen_SkipsSystemMetadataEntries(t *testing.T) {
	a, err := Open(zipBytes(t, map[string]string{
		"report.json":            "{}",
		"__MACOSX/report.json":   "resource fork",
		"__MACOSX/._report.json": "resource fork",
	}))
	require.NoError(t, err)

	require.Equal(t, []string{"report.json"}, a.Names())
	require.True(t, a.Has("report.json"))
	require.False(t, a.Has("__MACOSX/report.json"))
}

func TestRead(t *testing.T) {
	a, err := Open(zipBytes(t, map[string]string{"data/blob.txt": "payload"}))
	require.NoError(t, err)

	data, err := a.Read("data/blob.txt")
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))

	_, err = a.Read("missing")
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestStream(t *testing.T) {
	a, err := Open(zipBytes(t, map[string]string{"a.txt": "streamed"}))
	require.NoError(t, err)

	rc, err := a.Stream("a.txt")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "streamed", string(data))

	_, err = a.Stream("missing")
	require.ErrorIs(t, err, ErrEntryNotFound)
}
