package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.GetItem(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetItem(ctx, "k", []byte("v1")))
	got, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.SetItem(ctx, "k", []byte("v2")))
	got, err = s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, s.DeleteItem(ctx, "k"))
	_, err = s.GetItem(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error.
	assert.NoError(t, s.DeleteItem(ctx, "k"))
}

func TestMemoryStorage(t *testing.T) {
	testStorage(t, NewMemoryStorage())
}

func TestFileStorage(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	testStorage(t, fs)
}

func TestFileStorageAwkwardKeys(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := "a/b/../c history?*"
	require.NoError(t, fs.SetItem(ctx, key, []byte("data")))
	got, err := fs.GetItem(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestMemoryStorageCopies(t *testing.T) {
	ms := NewMemoryStorage()
	ctx := context.Background()

	val := []byte("original")
	require.NoError(t, ms.SetItem(ctx, "k", val))
	val[0] = 'X'

	got, err := ms.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got, "stored value is insulated from caller mutation")

	got[0] = 'Y'
	again, err := ms.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}
