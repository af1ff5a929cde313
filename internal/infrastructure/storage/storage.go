package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// MaxImageBytes is the upload cap for user and game images.
const MaxImageBytes = 2 << 20 // 2 MB

// BlobStore is the blob storage boundary: upload bytes, hand back URLs.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	DownloadURL(ctx context.Context, path string) (string, error)
}

type bucketStore struct {
	bucket *gcs.BucketHandle
}

// NewBucketStore resolves the default bucket from the firebase app.
func NewBucketStore(ctx context.Context, app *firebase.App) (BlobStore, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default bucket: %w", err)
	}
	return &bucketStore{bucket: bucket}, nil
}

func (s *bucketStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload %s: %w", path, err)
	}
	return path, nil
}

func (s *bucketStore) DownloadURL(ctx context.Context, path string) (string, error) {
	url, err := s.bucket.SignedURL(path, &gcs.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign url for %s: %w", path, err)
	}
	return url, nil
}
