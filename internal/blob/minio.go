package blob

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/user/tootube/internal/config"
)

// MinioBackend stores media in a MinIO (or any S3-compatible) bucket. The
// reference is a publicly fetchable object URL and the handle is the object
// key inside the bucket.
type MinioBackend struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioBackend creates the client from configuration. The bucket is
// created lazily on first store.
func NewMinioBackend(cfg *config.BlobConfig) (*MinioBackend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &MinioBackend{client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

// Store uploads data under key, ensuring the bucket exists first.
func (b *MinioBackend) Store(ctx context.Context, data []byte, key string) (string, string, error) {
	if err := b.ensureBucket(ctx); err != nil {
		return "", "", err
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload object: %w", err)
	}

	ref := fmt.Sprintf("%s/%s/%s", b.publicURL, b.bucket, key)
	return ref, key, nil
}

// Delete removes the object. MinIO reports success for objects that are
// already gone, which matches the backend contract.
func (b *MinioBackend) Delete(ctx context.Context, handle string) error {
	err := b.client.RemoveObject(ctx, b.bucket, handle, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (b *MinioBackend) ensureBucket(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}
