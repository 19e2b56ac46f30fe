package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore keeps blobs as objects of one Cloud Storage bucket under a prefix.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	owned  bool
}

// NewGCSStore opens a Cloud Storage client. An empty credentialsFile uses
// application default credentials.
func NewGCSStore(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	s := NewGCSStoreFromClient(client, bucket, prefix)
	s.owned = true
	return s, nil
}

// NewGCSStoreFromClient wraps an existing client; Close leaves it open.
func NewGCSStoreFromClient(client *storage.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{
		client: client,
		bucket: client.Bucket(bucket),
		prefix: prefix,
	}
}

// Put uploads data. The object only becomes visible once the writer closes
// successfully, so a failed upload keeps the previous generation.
func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	name := objectName(s.prefix, key)

	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("commit gs object %s: %w", name, err)
	}
	return nil
}

func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	name := objectName(s.prefix, key)

	r, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("open gs object %s: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gs object %s: %w", name, err)
	}
	return data, nil
}

func (s *GCSStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
