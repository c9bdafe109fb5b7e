package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cyclopcam/logs"
)

// S3Config describes an S3-compatible bucket (AWS, MinIO, R2, ...)
type S3Config struct {
	Bucket       string `json:"bucket"`
	Prefix       string `json:"prefix"`
	Region       string `json:"region"`
	BaseEndpoint string `json:"baseEndpoint"` // eg http://127.0.0.1:9000/ for MinIO. Empty for AWS.
	AccessKey    string `json:"accessKey"`    // Empty to use the default AWS credential chain
	SecretKey    string `json:"secretKey"`
}

// StorageS3 is an S3-based blob store
type StorageS3 struct {
	client *s3.Client
	bucket string
	prefix string
	log    logs.Log
}

func NewStorageS3(ctx context.Context, log logs.Log, cfg S3Config) (*StorageS3, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("Failed to load S3 configuration: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			// MinIO and friends don't do virtual-hosted buckets
			o.UsePathStyle = true
		}
	})
	return &StorageS3{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		log:    log,
	}, nil
}

func (s *StorageS3) key(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return s.prefix + name, nil
}

func translateS3Error(err error) error {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return ErrNotFound
	}
	return err
}

func (s *StorageS3) Stat(ctx context.Context, name string) (*FileInfo, error) {
	key, err := s.key(name)
	if err != nil {
		return nil, err
	}
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translateS3Error(err)
	}
	info := &FileInfo{
		Name: name,
		Size: aws.ToInt64(head.ContentLength),
	}
	if head.LastModified != nil {
		info.ModifiedAt = *head.LastModified
	}
	return info, nil
}

func (s *StorageS3) ReadRange(ctx context.Context, name string, offset, length int64) (io.ReadCloser, error) {
	key, err := s.key(name)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return io.NopCloser(strings.NewReader("")), nil
	}
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if length > 0 {
		input.Range = aws.String(fmt.Sprintf("bytes=%v-%v", offset, offset+length-1))
	} else if offset > 0 {
		input.Range = aws.String(fmt.Sprintf("bytes=%v-", offset))
	}
	out, err := s.client.GetObject(ctx, input)
	if err != nil {
		return nil, translateS3Error(err)
	}
	return out.Body, nil
}

func (s *StorageS3) List(ctx context.Context) ([]string, error) {
	names := []string{}
	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			names = append(names, name)
		}
	}
	return names, nil
}
