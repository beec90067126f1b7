package storage

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/runlens/runlens/internal/archive"
	"github.com/runlens/runlens/internal/report"
	"github.com/stretchr/testify/require"
)

func assetArchive(t *testing.T, entries map[string]string) *archive.Archive {
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

	a, err := archive.Open(buf.Bytes())
	require.NoError(t, err)
	return a
}

func TestResolveScreenshots_RewritesToSignedURLs(t *testing.T) {
	assets := assetArchive(t, map[string]string{"data/shot.png": "pixels"})
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	signer := NewURLSigner("test-secret", "https://runlens.example.com", time.Minute)

	records := []report.TestRecord{
		{
			Screenshots: []string{"data/shot.png"},
			Attempts: []report.TestAttempt{
				{Screenshots: []string{"data/shot.png"}},
			},
		},
	}

	ResolveScreenshots(context.Background(), records, assets, store, signer)

	require.True(t, strings.HasPrefix(records[0].Screenshots[0], "https://runlens.example.com/screenshots/"))
	// The attempt-level copy resolves to the same URL via the memo table.
	require.Equal(t, records[0].Screenshots[0], records[0].Attempts[0].Screenshots[0])
}

func TestResolveScreenshots_MissingBlobKeepsRawReference(t *testing.T) {
	assets := assetArchive(t, map[string]string{"data/other.png": "pixels"})
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	signer := NewURLSigner("test-secret", "https://runlens.example.com", time.Minute)

	records := []report.TestRecord{{Screenshots: []string{"data/missing.png"}}}

	ResolveScreenshots(context.Background(), records, assets, store, signer)
	require.Equal(t, "data/missing.png", records[0].Screenshots[0])
}

func TestResolveScreenshots_ExternalReferencesUntouched(t *testing.T) {
	assets := assetArchive(t, map[string]string{})
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	signer := NewURLSigner("test-secret", "https://runlens.example.com", time.Minute)

	records := []report.TestRecord{{Screenshots: []string{"https://cdn.example.com/shot.png"}}}

	ResolveScreenshots(context.Background(), records, assets, store, signer)
	require.Equal(t, "https://cdn.example.com/shot.png", records[0].Screenshots[0])
}
