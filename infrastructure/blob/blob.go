// Package blob stores attachment bytes and returns durable URLs.
package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/claimsdesk/fnol/internal/config"
)

// ErrInvalidKey indicates an empty or escaping object key.
var ErrInvalidKey = errors.New("invalid object key")

// Store uploads bytes under a key, overwriting any existing object, and
// returns the object's URL.
type Store interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Key returns the object key for an attachment of a work item.
func Key(workItemID int64, filename string) string {
	return fmt.Sprintf("workitems/%d/%s", workItemID, SanitizeFilename(filename))
}

// SanitizeFilename reduces a filename to a single safe path segment.
func SanitizeFilename(filename string) string {
	name := strings.ReplaceAll(filename, "\\", "/")
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	switch name {
	case "", ".", "..", "/":
		return "unnamed"
	}
	return name
}

// cleanKey validates that key stays inside the store root.
func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}

// joinURL appends escaped key segments to base.
func joinURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// New builds the store selected by cfg.
func New(ctx context.Context, cfg config.BlobConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Provider() {
	case config.BlobProviderFilesystem, "":
		return NewFilesystemStore(cfg.Dir(), cfg.BaseURL())
	case config.BlobProviderMinIO:
		return NewMinIOStore(ctx, MinIOConfig{
			Endpoint:  cfg.Endpoint(),
			AccessKey: cfg.AccessKey(),
			SecretKey: cfg.SecretKey(),
			Bucket:    cfg.Bucket(),
			Region:    cfg.Region(),
			UseSSL:    cfg.UseSSL(),
			BaseURL:   cfg.BaseURL(),
		}, logger)
	case config.BlobProviderGCS:
		return NewGCSStore(ctx, GCSConfig{
			Bucket:          cfg.Bucket(),
			CredentialsJSON: cfg.CredentialsJSON(),
			BaseURL:         cfg.BaseURL(),
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported blob provider: %s", cfg.Provider())
	}
}
