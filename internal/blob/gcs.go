package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

// GCSStore stores blobs in a Google Cloud Storage bucket.
type GCSStore struct {
	bucket  string
	service *storage.Service
}

var _ Store = (*GCSStore)(nil)

// NewGCSStore creates a store for bucket. Options carry credentials or, in
// tests, an endpoint and HTTP client.
func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{bucket: bucket, service: svc}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	obj := &storage.Object{Name: key, ContentType: contentType}
	_, err := s.service.Objects.Insert(s.bucket, obj).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to upload gs://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.service.Objects.Delete(s.bucket, key).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return fmt.Errorf("%w: gs://%s/%s", ErrNotFound, s.bucket, key)
		}
		return fmt.Errorf("failed to delete gs://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *GCSStore) URI(key string) string {
	return "gs://" + s.bucket + "/" + key
}

// Bucket returns the configured bucket name.
func (s *GCSStore) Bucket() string {
	return s.bucket
}
