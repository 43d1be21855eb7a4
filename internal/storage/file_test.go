package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_WriteAndRead(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = fs.Read(ctx, RecordEntries)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, fs.Write(ctx, RecordEntries, []byte(`[1]`)))
	require.NoError(t, fs.Write(ctx, RecordEntries, []byte(`[1,2]`)))

	got, err := fs.Read(ctx, RecordEntries)
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))

	// the temp file is renamed away
	_, err = os.Stat(filepath.Join(dir, "entries.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_RejectsPathNames(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../x", `a\b`, ".."} {
		assert.Error(t, fs.Write(context.Background(), name, []byte("x")), name)
	}
}
