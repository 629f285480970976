package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/claimsdesk/fnol/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "workitems/7/report.pdf", Key(7, "report.pdf"))
	assert.Equal(t, "workitems/7/passwd", Key(7, "../../etc/passwd"))
	assert.Equal(t, "workitems/7/scan.png", Key(7, `C:\Users\me\scan.png`))
	assert.Equal(t, "workitems/7/unnamed", Key(7, ".."))
}

func TestCleanKey_RejectsEscapes(t *testing.T) {
	for _, key := range []string{"", "../x", "a/../../b", "a//b"} {
		_, err := cleanKey(key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
	got, err := cleanKey("workitems/1/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "workitems/1/a.pdf", got)
}

func TestFilesystemStore_UploadOverwrites(t *testing.T) {
	root := t.TempDir()
	s, err := NewFilesystemStore(root, "")
	require.NoError(t, err)

	url, err := s.Upload(context.Background(), "workitems/3/police report.pdf", []byte("v1"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/blobs/workitems/3/police%20report.pdf", url)

	_, err = s.Upload(context.Background(), "workitems/3/police report.pdf", []byte("v2"), "application/pdf")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "workitems", "3", "police report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "workitems", "3"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFilesystemStore_Handler(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir(), "https://files.example.com/")
	require.NoError(t, err)

	url, err := s.Upload(context.Background(), "workitems/1/a.txt", []byte("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/workitems/1/a.txt", url)

	srv := httptest.NewServer(http.StripPrefix("/blobs", s.Handler()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/blobs/workitems/1/a.txt")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", string(body))
}

func TestNew_Filesystem(t *testing.T) {
	cfg := config.NewBlobConfig(filepath.Join(t.TempDir(), "blobs"))
	s, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &FilesystemStore{}, s)
}
