package blob

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultBaseURL is the URL prefix under which the API serves filesystem blobs.
const DefaultBaseURL = "/blobs"

// FilesystemStore keeps objects as files below a root directory.
type FilesystemStore struct {
	root    string
	baseURL string
}

// NewFilesystemStore creates the root directory if needed.
func NewFilesystemStore(root, baseURL string) (*FilesystemStore, error) {
	if root == "" {
		return nil, fmt.Errorf("blob directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FilesystemStore{root: root, baseURL: baseURL}, nil
}

// Root returns the directory objects are written to.
func (s *FilesystemStore) Root() string { return s.root }

// Upload writes data atomically, replacing any previous object.
func (s *FilesystemStore) Upload(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp object: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("commit object: %w", err)
	}

	return joinURL(s.baseURL, cleaned), nil
}

// Handler serves stored objects. Mount it with the base URL prefix stripped.
func (s *FilesystemStore) Handler() http.Handler {
	return http.FileServer(http.Dir(s.root))
}

var _ Store = (*FilesystemStore)(nil)
