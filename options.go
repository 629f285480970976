package fnol

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	domainservice "github.com/claimsdesk/fnol/domain/service"
	"github.com/claimsdesk/fnol/infrastructure/blob"
	"github.com/claimsdesk/fnol/infrastructure/ocr"
	"github.com/claimsdesk/fnol/infrastructure/provider"
	"github.com/claimsdesk/fnol/internal/config"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	dbURL        string
	dataDir      string
	textProvider provider.TextGenerator
	ocrEngine    ocr.Engine
	ocrTimeout   time.Duration
	llmTimeout   time.Duration
	maxTokens    int
	objectStore  blob.Store
	locker       domainservice.Locker
	parallelism  int
	logger       *slog.Logger
	closers      []io.Closer
	pool         poolConfig
}

type poolConfig struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:     config.DefaultDataDir,
		ocrTimeout:  config.DefaultOCRTimeout,
		llmTimeout:  config.DefaultEndpointTimeout,
		maxTokens:   config.DefaultEndpointMaxTokens,
		parallelism: config.DefaultIntakeParallelism,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite stores work items in a SQLite file.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + filepath.ToSlash(path)
	}
}

// WithPostgres stores work items in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL sets the database by URL (sqlite:///path or postgres://...).
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithConnectionPool sizes the PostgreSQL connection pool. SQLite always
// uses a single connection and ignores it.
func WithConnectionPool(maxOpen, maxIdle int, maxLifetime time.Duration) Option {
	return func(c *clientConfig) {
		c.pool = poolConfig{maxOpen: maxOpen, maxIdle: maxIdle, maxLifetime: maxLifetime}
	}
}

// WithDataDir sets the directory for local state such as filesystem blobs.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithTextProvider sets the language model used for field extraction and
// document classification. Without one, extraction degrades and
// classification falls back to keywords.
func WithTextProvider(p provider.TextGenerator) Option {
	return func(c *clientConfig) {
		c.textProvider = p
	}
}

// WithOpenAIConfig sets an OpenAI-compatible text provider.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewOpenAIProviderFromConfig(cfg)
	}
}

// WithLLMTimeout bounds each language model call.
func WithLLMTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.llmTimeout = d
		}
	}
}

// WithMaxTokens caps the field extraction response length.
func WithMaxTokens(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithOCREngine sets the OCR engine. Without one, attachments contribute no text.
func WithOCREngine(e ocr.Engine) Option {
	return func(c *clientConfig) {
		c.ocrEngine = e
	}
}

// WithOCRTimeout bounds each OCR call.
func WithOCRTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.ocrTimeout = d
		}
	}
}

// WithObjectStore sets where attachment bytes are stored.
// Defaults to a filesystem store under {dataDir}/blobs.
func WithObjectStore(s blob.Store) Option {
	return func(c *clientConfig) {
		c.objectStore = s
	}
}

// WithLocker sets the message id locker. Defaults to an in-process locker.
func WithLocker(l domainservice.Locker) Option {
	return func(c *clientConfig) {
		c.locker = l
	}
}

// WithIntakeParallelism bounds concurrent attachment work per submission.
// Values <= 0 are ignored.
func WithIntakeParallelism(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(c io.Closer) Option {
	return func(cfg *clientConfig) {
		cfg.closers = append(cfg.closers, c)
	}
}
