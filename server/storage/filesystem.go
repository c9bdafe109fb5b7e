package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cyclopcam/logs"
)

// StorageFS is a filesystem-based blob store
type StorageFS struct {
	Root string
	log  logs.Log
}

func NewStorageFS(log logs.Log, root string) (*StorageFS, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("Media directory %v (relative path %v) is not accessible: %w", absRoot, root, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("Media path %v is not a directory", absRoot)
	}
	return &StorageFS{
		Root: absRoot,
		log:  log,
	}, nil
}

func (s *StorageFS) fullPath(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.Root, filepath.Base(name)), nil
}

func (s *StorageFS) Stat(ctx context.Context, name string) (*FileInfo, error) {
	full, err := s.fullPath(name)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return nil, ErrNotFound
	}
	return &FileInfo{
		Name:       name,
		ModifiedAt: st.ModTime(),
		Size:       st.Size(),
	}, nil
}

type limitedFile struct {
	io.Reader
	f *os.File
}

func (l *limitedFile) Close() error {
	return l.f.Close()
}

func (s *StorageFS) ReadRange(ctx context.Context, name string, offset, length int64) (io.ReadCloser, error) {
	full, err := s.fullPath(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if offset != 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			file.Close()
			return nil, err
		}
	}
	if length < 0 {
		return file, nil
	}
	return &limitedFile{
		Reader: io.LimitReader(file, length),
		f:      file,
	}, nil
}

func (s *StorageFS) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
