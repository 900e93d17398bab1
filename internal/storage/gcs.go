package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
)

// GCSStore keeps files in the project's Firebase Storage bucket.
type GCSStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
	prefix     string
	logger     *zap.Logger
}

// NewGCSStore resolves the bucket through the Firebase app.
func NewGCSStore(ctx context.Context, app *firebase.App, bucketName string, logger *zap.Logger) (*GCSStore, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Storage client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("error getting bucket %s: %w", bucketName, err)
	}
	return &GCSStore{bucket: bucket, bucketName: bucketName, prefix: "documents/", logger: logger}, nil
}

func (s *GCSStore) Save(ctx context.Context, originalName, contentType string, r io.Reader) (*StoredFile, error) {
	key := NewKey(originalName)
	w := s.bucket.Object(s.prefix + key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"originalName": originalName}

	size, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize object: %w", err)
	}

	s.logger.Debug("Stored file in bucket", zap.String("bucket", s.bucketName), zap.String("key", key))
	return &StoredFile{Key: key, Path: fmt.Sprintf("gs://%s/%s%s", s.bucketName, s.prefix, key), Size: size}, nil
}

func (s *GCSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.bucket.Object(s.prefix + key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return rc, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(s.prefix + key).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return ErrFileNotFound
		}
		return err
	}
	return nil
}
