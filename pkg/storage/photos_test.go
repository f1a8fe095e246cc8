package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *PhotoStore {
	t.Helper()
	store, err := NewPhotoStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestPhotoStoreSaveAndOpen(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Save("lunch.JPG", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".jpg"))

	file, err := store.Open(ref)
	require.NoError(t, err)
	defer file.Close()

	raw, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(raw))
}

func TestPhotoStoreUnknownExtension(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Save("weird.exe", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".bin"))
}

func TestPhotoStoreRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open("../../etc/passwd")
	require.Error(t, err)

	err = store.Delete("../secret")
	require.Error(t, err)
}

func TestPhotoStoreDelete(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Save("a.png", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ref))

	_, err = store.Open(ref)
	require.Error(t, err)

	// Deleting a missing photo is not an error.
	require.NoError(t, store.Delete(ref))
}

func TestPhotoStoreRemoveAll(t *testing.T) {
	store := newTestStore(t)

	refA, err := store.Save("a.png", strings.NewReader("x"))
	require.NoError(t, err)
	refB, err := store.Save("b.png", strings.NewReader("y"))
	require.NoError(t, err)

	require.NoError(t, store.RemoveAll())

	_, err = store.Open(refA)
	require.Error(t, err)
	_, err = store.Open(refB)
	require.Error(t, err)
}
