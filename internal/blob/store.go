package blob

import (
	"context"
	"io"
	"strings"

	"backend-driftline/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is the object-storage surface the feed and session stores depend on.
type Store interface {
	EnsureBucket(ctx context.Context) error
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string, overwrite bool) error
	Remove(ctx context.Context, path string) error
	PublicURL(path string) string
	// PathFromURL inverts PublicURL; empty when the URL is not ours.
	PathFromURL(url string) string
}

type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioStore(cfg config.Config) (*MinioStore, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.MinioEndpoint, "https://"), "http://")
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	public := cfg.PublicMediaURL
	if public == "" {
		scheme := "http://"
		if cfg.MinioUseSSL {
			scheme = "https://"
		}
		public = scheme + endpoint
	}

	return &MinioStore{
		client:    cl,
		bucket:    cfg.MediaBucket,
		publicURL: strings.TrimSuffix(public, "/"),
	}, nil
}

func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string, overwrite bool) error {
	if !overwrite {
		// Objects are never mutated after creation, so an existing object
		// under the same path means a caller bug.
		if _, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{}); err == nil {
			return ErrObjectExists
		}
	}
	_, err := s.client.PutObject(ctx, s.bucket, path, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s *MinioStore) Remove(ctx context.Context, path string) error {
	return s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{})
}

func (s *MinioStore) PublicURL(path string) string {
	return s.publicURL + "/" + s.bucket + "/" + strings.TrimPrefix(path, "/")
}

func (s *MinioStore) PathFromURL(url string) string {
	return ObjectPath(url, s.bucket)
}
