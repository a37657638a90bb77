package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/caseworks/submissionflow/internal/models"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ObjectStore persists raw file bytes in a GCS bucket under the hierarchical
// keys produced by the storage-key builder.
type ObjectStore struct {
	bucket *storage.BucketHandle
}

// NewObjectStore wraps a bucket handle for the given bucket name.
func NewObjectStore(client *storage.Client, bucketName string) *ObjectStore {
	return &ObjectStore{bucket: client.Bucket(bucketName)}
}

// Put writes the object only if the key is not already taken. Keys embed a
// random file id, so a precondition failure means a key was reused and is
// reported as an error rather than silently overwriting.
func (s *ObjectStore) Put(ctx context.Context, key string, r io.Reader) error {
	writer := s.bucket.Object(key).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 412 {
			return fmt.Errorf("object %s already exists: %w", key, err)
		}
		return fmt.Errorf("failed to finalize object %s: %w", key, err)
	}
	return nil
}

// Get opens the object for reading. The caller owns the returned reader.
func (s *ObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, models.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	return reader, nil
}

// List returns the keys of every object under the given prefix.
func (s *ObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var keys []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}
