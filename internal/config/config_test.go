package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins())
	assert.Equal(t, "sqlite:///"+filepath.Join(".fnol", "fnol.db"), cfg.DBURL())
	assert.Equal(t, LogFormatPretty, cfg.LogFormat())
	assert.Nil(t, cfg.LLMEndpoint())
	assert.False(t, cfg.OCR().IsEnabled())
	assert.Equal(t, BlobProviderFilesystem, cfg.Blob().Provider())
	assert.Equal(t, filepath.Join(".fnol", "blobs"), cfg.Blob().Dir())
	assert.Equal(t, DefaultIntakeParallelism, cfg.Intake().Parallelism())
	assert.Equal(t, 5*time.Minute, cfg.Intake().LockTTL())
	assert.Equal(t, 10, cfg.DBPool().MaxOpen())
	assert.Equal(t, 5, cfg.DBPool().MaxIdle())
	assert.Equal(t, 30*time.Minute, cfg.DBPool().MaxLifetime())
}

func TestWithDBPool_KeepsDefaultsForUnsetValues(t *testing.T) {
	cfg := NewAppConfig().Apply(WithDBPool(25, 0, 0))

	assert.Equal(t, 25, cfg.DBPool().MaxOpen())
	assert.Equal(t, DefaultDBMaxIdleConns, cfg.DBPool().MaxIdle())
	assert.Equal(t, DefaultDBConnMaxLifetime, cfg.DBPool().MaxLifetime())
}

func TestWithDataDir_MovesDerivedPaths(t *testing.T) {
	cfg := NewAppConfig().Apply(WithDataDir("/var/lib/fnol"))

	assert.Equal(t, "sqlite:///"+filepath.Join("/var/lib/fnol", "fnol.db"), cfg.DBURL())
	assert.Equal(t, filepath.Join("/var/lib/fnol", "blobs"), cfg.Blob().Dir())

	custom := NewAppConfig().Apply(
		WithDBURL("postgres://u:p@db/fnol"),
		WithDataDir("/srv"),
	)
	assert.Equal(t, "postgres://u:p@db/fnol", custom.DBURL())
}

func TestAppConfig_LogAttrsMaskSecrets(t *testing.T) {
	cfg := NewAppConfig().Apply(
		WithDBURL("postgres://user:secret@db:5432/fnol"),
		WithLLMEndpoint(NewEndpointWithOptions(WithModel("gpt-4o-mini"), WithAPIKey("sk-secret"))),
	)

	for _, attr := range cfg.LogAttrs() {
		assert.NotContains(t, attr.Value.String(), "secret", attr.Key)
	}
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{}, ParseList(""))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, ParseList(" https://a.example, ,https://b.example "))
}
