package cas_test

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/adapters/cas"
	"go.trai.ch/stale/internal/core/domain"
)

func TestStore_PutAndGet(t *testing.T) {
	root := t.TempDir()
	store := cas.NewStore()

	stamp := domain.BuildStamp{
		Object:    "out/Kernel.Out/thread.o",
		Source:    "Kernel/thread.cpp",
		InputHash: "abc123",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Put(root, stamp))

	got, err := store.Get(root, stamp.Object)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stamp, *got)
}

func TestStore_GetMissing(t *testing.T) {
	got, err := cas.NewStore().Get(t.TempDir(), "out/none.o")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_Overwrite(t *testing.T) {
	root := t.TempDir()
	store := cas.NewStore()

	require.NoError(t, store.Put(root, domain.BuildStamp{Object: "a.o", InputHash: "1"}))
	require.NoError(t, store.Put(root, domain.BuildStamp{Object: "a.o", InputHash: "2"}))

	got, err := store.Get(root, "a.o")
	require.NoError(t, err)
	assert.Equal(t, "2", got.InputHash)
}

func TestStore_FileLayout(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, cas.NewStore().Put(root, domain.BuildStamp{Object: "out/a.o"}))

	hash := sha256.Sum256([]byte("out/a.o"))
	assert.FileExists(t, filepath.Join(root, ".stale", "stamps", hex.EncodeToString(hash[:])+".json"))
}

func TestStore_CorruptStamp(t *testing.T) {
	root := t.TempDir()
	store := cas.NewStore()
	require.NoError(t, store.Put(root, domain.BuildStamp{Object: "a.o"}))

	hash := sha256.Sum256([]byte("a.o"))
	path := filepath.Join(root, ".stale", "stamps", hex.EncodeToString(hash[:])+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), domain.FilePerm))

	_, err := store.Get(root, "a.o")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStampStore))
}
