package objectstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig configures a Google Cloud Storage-backed object store.
type GCSConfig struct {
	Bucket          string
	Prefix          string
	CredentialsJSON string
	CredentialsFile string
}

// GCSBackend implements Backend over a GCS bucket.
type GCSBackend struct {
	bucket *storage.BucketHandle
	prefix string
}

func NewGCSBackend(ctx context.Context, cfg *GCSConfig) (*GCSBackend, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	} else if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	return &GCSBackend{bucket: client.Bucket(cfg.Bucket), prefix: cfg.Prefix}, nil
}

func (b *GCSBackend) Type() string { return "gcs" }

func (b *GCSBackend) objectKey(key string) string {
	if b.prefix == "" {
		return key
	}
	return b.prefix + "/" + key
}

func (b *GCSBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.bucket.Object(b.objectKey(key)).Attrs(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat object %s: %w", key, err)
	}
	return true, nil
}

func (b *GCSBackend) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := b.bucket.Object(b.objectKey(key)).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return nil, &ErrBackendNotFound{Key: key}
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (b *GCSBackend) Put(ctx context.Context, key string, data []byte) error {
	writer := b.bucket.Object(b.objectKey(key)).NewWriter(ctx)
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	return writer.Close()
}
