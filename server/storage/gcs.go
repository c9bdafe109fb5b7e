package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/cyclopcam/logs"
	"google.golang.org/api/iterator"
)

// StorageGCS is a Google Cloud Storage-based blob store.
// Objects live at <prefix><name> inside the bucket.
type StorageGCS struct {
	bucketName string
	prefix     string
	bucket     *gcs.BucketHandle
	log        logs.Log
}

func NewStorageGCS(ctx context.Context, log logs.Log, bucketName, prefix string) (*StorageGCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &StorageGCS{
		bucketName: bucketName,
		prefix:     prefix,
		bucket:     client.Bucket(bucketName),
		log:        log,
	}, nil
}

func (s *StorageGCS) object(name string) (*gcs.ObjectHandle, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return s.bucket.Object(s.prefix + name), nil
}

func translateGCSError(err error) error {
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrNotFound
	}
	return err
}

func (s *StorageGCS) Stat(ctx context.Context, name string) (*FileInfo, error) {
	obj, err := s.object(name)
	if err != nil {
		return nil, err
	}
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, translateGCSError(err)
	}
	return &FileInfo{
		Name:       name,
		ModifiedAt: attrs.Updated,
		Size:       attrs.Size,
	}, nil
}

func (s *StorageGCS) ReadRange(ctx context.Context, name string, offset, length int64) (io.ReadCloser, error) {
	obj, err := s.object(name)
	if err != nil {
		return nil, err
	}
	// NewRangeReader treats a negative length as "until the end"
	r, err := obj.NewRangeReader(ctx, offset, length)
	if err != nil {
		return nil, translateGCSError(err)
	}
	return r, nil
}

func (s *StorageGCS) List(ctx context.Context) ([]string, error) {
	names := []string{}
	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: s.prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		name := strings.TrimPrefix(attrs.Name, s.prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
