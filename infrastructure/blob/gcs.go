package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig configures a Google Cloud Storage store.
type GCSConfig struct {
	Bucket          string
	CredentialsJSON string
	BaseURL         string
}

// GCSStore keeps objects in a GCS bucket.
type GCSStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
	logger  *slog.Logger
}

// NewGCSStore creates a GCS client. Without explicit credentials the
// application default credentials are used.
func NewGCSStore(ctx context.Context, cfg GCSConfig, logger *slog.Logger) (*GCSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs store requires BLOB_BUCKET")
	}

	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + cfg.Bucket
	}

	return &GCSStore{client: client, bucket: cfg.Bucket, baseURL: baseURL, logger: logger}, nil
}

// Upload writes the object, replacing any previous version.
func (s *GCSStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	writer := s.client.Bucket(s.bucket).Object(cleaned).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("write gcs object %s: %w", cleaned, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize gcs object %s: %w", cleaned, err)
	}

	s.logger.DebugContext(ctx, "blob uploaded",
		slog.String("bucket", s.bucket),
		slog.String("key", cleaned),
		slog.Int("bytes", len(data)),
	)
	return joinURL(s.baseURL, cleaned), nil
}

// Close releases the client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

var _ Store = (*GCSStore)(nil)
