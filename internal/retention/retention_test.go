package retention

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPruneScreenshots_DeletesOnlyExpiredBlobs(t *testing.T) {
	dir := t.TempDir()

	oldBlob := filepath.Join(dir, "old.png")
	require.NoError(t, os.WriteFile(oldBlob, []byte("x"), 0o644))
	oldTime := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(oldBlob, oldTime, oldTime))

	freshBlob := filepath.Join(dir, "fresh.png")
	require.NoError(t, os.WriteFile(freshBlob, []byte("x"), 0o644))

	deleted, err := PruneScreenshots(dir, 7)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	_, err = os.Stat(oldBlob)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshBlob)
	require.NoError(t, err)
}

func TestPruneScreenshots_MissingDirIsNotAnError(t *testing.T) {
	deleted, err := PruneScreenshots(filepath.Join(t.TempDir(), "nope"), 7)
	require.NoError(t, err)
	require.Zero(t, deleted)
}
