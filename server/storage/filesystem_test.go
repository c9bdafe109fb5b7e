package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) *StorageFS {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.jpg"), []byte("0123456789"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.mp4"), []byte("hello"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "subdir"), 0755))
	s, err := NewStorageFS(logs.NewTestingLog(t), root)
	require.NoError(t, err)
	return s
}

func readAll(t *testing.T, r io.ReadCloser) string {
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestFSStat(t *testing.T) {
	s := newTestFS(t)
	ctx := context.Background()
	info, err := s.Stat(ctx, "a.jpg")
	require.NoError(t, err)
	require.Equal(t, int64(10), info.Size)
	require.Equal(t, "a.jpg", info.Name)

	_, err = s.Stat(ctx, "missing.jpg")
	require.ErrorIs(t, err, ErrNotFound)

	// Directories are not objects
	_, err = s.Stat(ctx, "subdir")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFSRejectsBadNames(t *testing.T) {
	s := newTestFS(t)
	ctx := context.Background()
	for _, name := range []string{"", ".", "..", "../a.jpg", "subdir/x", "a\\b", "x\x00y"} {
		_, err := s.Stat(ctx, name)
		require.Error(t, err, name)
		require.NotErrorIs(t, err, ErrNotFound, name)
		_, err = s.ReadRange(ctx, name, 0, -1)
		require.Error(t, err, name)
	}
}

func TestFSReadRange(t *testing.T) {
	s := newTestFS(t)
	ctx := context.Background()

	r, err := s.ReadRange(ctx, "a.jpg", 0, -1)
	require.NoError(t, err)
	require.Equal(t, "0123456789", readAll(t, r))

	r, err = s.ReadRange(ctx, "a.jpg", 3, 4)
	require.NoError(t, err)
	require.Equal(t, "3456", readAll(t, r))

	r, err = s.ReadRange(ctx, "a.jpg", 7, -1)
	require.NoError(t, err)
	require.Equal(t, "789", readAll(t, r))

	_, err = s.ReadRange(ctx, "nope.jpg", 0, 1)
	require.ErrorIs(t, err, ErrNotFound)

	b, err := ReadFile(ctx, s, "b.mp4")
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))
}

func TestFSList(t *testing.T) {
	s := newTestFS(t)
	names, err := s.List(context.Background())
	require.NoError(t, err)
	sort.Strings(names)
	require.Equal(t, []string{"a.jpg", "b.mp4"}, names)
}

func TestFSRootMustExist(t *testing.T) {
	_, err := NewStorageFS(logs.NewTestingLog(t), filepath.Join(t.TempDir(), "nothing-here"))
	require.Error(t, err)
}
