package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var ErrNotFound = errors.New("Not found")

// Storage is a read-only view of the media blob store (a directory, or a bucket).
// Names are flat: a single path element, without any directory component.
type Storage interface {
	Stat(ctx context.Context, name string) (*FileInfo, error)

	// Read length bytes starting at offset. If length is negative, read to the end.
	// When finished, you must close the reader.
	ReadRange(ctx context.Context, name string, offset, length int64) (io.ReadCloser, error)

	// List returns the names of all objects in the store
	List(ctx context.Context) ([]string, error)
}

// FileInfo describes an element in blob storage.
type FileInfo struct {
	Name       string
	ModifiedAt time.Time
	Size       int64
}

func validateName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("Invalid file name %q", name)
	}
	return nil
}

// ReadFile reads an entire object
func ReadFile(ctx context.Context, s Storage, name string) ([]byte, error) {
	r, err := s.ReadRange(ctx, name, 0, -1)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
