package blob

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig configures an S3-compatible store.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	BaseURL   string
}

// MinIOStore keeps objects in an S3-compatible bucket.
type MinIOStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *slog.Logger
}

// NewMinIOStore connects and creates the bucket when it does not exist.
func NewMinIOStore(ctx context.Context, cfg MinIOConfig, logger *slog.Logger) (*MinIOStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio store requires BLOB_ENDPOINT and BLOB_BUCKET")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("created blob bucket", slog.String("bucket", cfg.Bucket))
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = client.EndpointURL().String() + "/" + cfg.Bucket
	}

	return &MinIOStore{client: client, bucket: cfg.Bucket, baseURL: baseURL, logger: logger}, nil
}

// Upload puts the object, replacing any previous version.
func (s *MinIOStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.bucket, cleaned, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", cleaned, err)
	}

	s.logger.DebugContext(ctx, "blob uploaded",
		slog.String("bucket", s.bucket),
		slog.String("key", cleaned),
		slog.Int("bytes", len(data)),
	)
	return joinURL(s.baseURL, cleaned), nil
}

var _ Store = (*MinIOStore)(nil)
