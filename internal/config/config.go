// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost                  = "0.0.0.0"
	DefaultPort                  = 8080
	DefaultDataDir               = ".fnol"
	DefaultLogLevel              = "INFO"
	DefaultBlobSubdir            = "blobs"
	DefaultEndpointTimeout       = 60 * time.Second
	DefaultEndpointMaxRetries    = 0
	DefaultEndpointInitialDelay  = 2 * time.Second
	DefaultEndpointBackoffFactor = 2.0
	DefaultEndpointMaxTokens     = 4000
	DefaultOCRTimeout            = 60 * time.Second
	DefaultOCRLanguage           = "eng"
	DefaultOCRDPI                = 300
	DefaultIntakeParallelism     = 4
	DefaultIntakeLockTTL         = 300 * time.Second
	DefaultDBMaxOpenConns        = 10
	DefaultDBMaxIdleConns        = 5
	DefaultDBConnMaxLifetime     = 30 * time.Minute
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// LLMProvider names the backend behind the LLM endpoint.
type LLMProvider string

// LLMProvider values.
const (
	LLMProviderOpenAI LLMProvider = "openai"
	LLMProviderGemini LLMProvider = "gemini"
)

// OCRProvider names the OCR engine.
type OCRProvider string

// OCRProvider values.
const (
	OCRProviderNone      OCRProvider = "none"
	OCRProviderGemini    OCRProvider = "gemini"
	OCRProviderTesseract OCRProvider = "tesseract"
	OCRProviderAzure     OCRProvider = "azure"
)

// BlobProvider names the object store backend.
type BlobProvider string

// BlobProvider values.
const (
	BlobProviderFilesystem BlobProvider = "filesystem"
	BlobProviderMinIO      BlobProvider = "minio"
	BlobProviderGCS        BlobProvider = "gcs"
)

// Endpoint configures the LLM service.
type Endpoint struct {
	provider      LLMProvider
	baseURL       string
	model         string
	apiKey        string
	timeout       time.Duration
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	maxTokens     int
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		provider:      LLMProviderOpenAI,
		timeout:       DefaultEndpointTimeout,
		maxRetries:    DefaultEndpointMaxRetries,
		initialDelay:  DefaultEndpointInitialDelay,
		backoffFactor: DefaultEndpointBackoffFactor,
		maxTokens:     DefaultEndpointMaxTokens,
	}
}

// Provider returns the backend kind.
func (e Endpoint) Provider() LLMProvider { return e.provider }

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count. Zero disables retries.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// MaxTokens returns the maximum token limit.
func (e Endpoint) MaxTokens() int { return e.maxTokens }

// IsConfigured returns true if the endpoint has a model.
func (e Endpoint) IsConfigured() bool {
	return e.model != ""
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithProvider sets the backend kind.
func WithProvider(p LLMProvider) EndpointOption {
	return func(e *Endpoint) { e.provider = p }
}

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the model.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.initialDelay = d }
}

// WithBackoffFactor sets the retry backoff multiplier.
func WithBackoffFactor(f float64) EndpointOption {
	return func(e *Endpoint) { e.backoffFactor = f }
}

// WithMaxTokens sets the maximum token limit.
func WithMaxTokens(n int) EndpointOption {
	return func(e *Endpoint) { e.maxTokens = n }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// OCRConfig configures the text extraction engine.
type OCRConfig struct {
	provider        OCRProvider
	timeout         time.Duration
	model           string
	apiKey          string
	endpoint        string
	language        string
	dpi             int
	tesseractBinary string
	pdftotextBinary string
	pdftoppmBinary  string
}

// NewOCRConfig creates an OCRConfig with OCR disabled.
func NewOCRConfig() OCRConfig {
	return OCRConfig{
		provider:        OCRProviderNone,
		timeout:         DefaultOCRTimeout,
		language:        DefaultOCRLanguage,
		dpi:             DefaultOCRDPI,
		tesseractBinary: "tesseract",
		pdftotextBinary: "pdftotext",
		pdftoppmBinary:  "pdftoppm",
	}
}

// Provider returns the engine kind.
func (o OCRConfig) Provider() OCRProvider { return o.provider }

// Timeout returns the per-document timeout.
func (o OCRConfig) Timeout() time.Duration { return o.timeout }

// Model returns the vision model used by the Gemini engine.
func (o OCRConfig) Model() string { return o.model }

// APIKey returns the engine API key.
func (o OCRConfig) APIKey() string { return o.apiKey }

// Endpoint returns the service endpoint used by the Azure engine.
func (o OCRConfig) Endpoint() string { return o.endpoint }

// Language returns the tesseract language code.
func (o OCRConfig) Language() string { return o.language }

// DPI returns the rasterisation resolution for scanned PDFs.
func (o OCRConfig) DPI() int { return o.dpi }

// TesseractBinary returns the tesseract executable.
func (o OCRConfig) TesseractBinary() string { return o.tesseractBinary }

// PdftotextBinary returns the pdftotext executable.
func (o OCRConfig) PdftotextBinary() string { return o.pdftotextBinary }

// PdftoppmBinary returns the pdftoppm executable.
func (o OCRConfig) PdftoppmBinary() string { return o.pdftoppmBinary }

// IsEnabled reports whether an engine is selected.
func (o OCRConfig) IsEnabled() bool {
	return o.provider != "" && o.provider != OCRProviderNone
}

// BlobConfig configures the object store.
type BlobConfig struct {
	provider        BlobProvider
	dir             string
	baseURL         string
	bucket          string
	endpoint        string
	accessKey       string
	secretKey       string
	useSSL          bool
	region          string
	credentialsJSON string
}

// NewBlobConfig creates a filesystem BlobConfig rooted in dir.
func NewBlobConfig(dir string) BlobConfig {
	return BlobConfig{
		provider: BlobProviderFilesystem,
		dir:      dir,
		useSSL:   true,
	}
}

// Provider returns the backend kind.
func (b BlobConfig) Provider() BlobProvider { return b.provider }

// Dir returns the filesystem root.
func (b BlobConfig) Dir() string { return b.dir }

// BaseURL returns the public URL prefix for stored objects.
func (b BlobConfig) BaseURL() string { return b.baseURL }

// Bucket returns the bucket name.
func (b BlobConfig) Bucket() string { return b.bucket }

// Endpoint returns the S3-compatible endpoint host.
func (b BlobConfig) Endpoint() string { return b.endpoint }

// AccessKey returns the access key id.
func (b BlobConfig) AccessKey() string { return b.accessKey }

// SecretKey returns the secret access key.
func (b BlobConfig) SecretKey() string { return b.secretKey }

// UseSSL reports whether the endpoint uses TLS.
func (b BlobConfig) UseSSL() bool { return b.useSSL }

// Region returns the bucket region.
func (b BlobConfig) Region() string { return b.region }

// CredentialsJSON returns the GCS service account key.
func (b BlobConfig) CredentialsJSON() string { return b.credentialsJSON }

// IntakeConfig tunes the intake pipeline.
type IntakeConfig struct {
	parallelism int
	redisURL    string
	lockTTL     time.Duration
}

// NewIntakeConfig creates an IntakeConfig with defaults.
func NewIntakeConfig() IntakeConfig {
	return IntakeConfig{
		parallelism: DefaultIntakeParallelism,
		lockTTL:     DefaultIntakeLockTTL,
	}
}

// Parallelism returns the per-submission attachment concurrency.
func (i IntakeConfig) Parallelism() int { return i.parallelism }

// RedisURL returns the Redis URL used for message id claims, if any.
func (i IntakeConfig) RedisURL() string { return i.redisURL }

// LockTTL returns how long a message id claim may be held.
func (i IntakeConfig) LockTTL() time.Duration { return i.lockTTL }

// PoolConfig sizes the database connection pool.
type PoolConfig struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

// NewPoolConfig creates a PoolConfig with defaults.
func NewPoolConfig() PoolConfig {
	return PoolConfig{
		maxOpen:     DefaultDBMaxOpenConns,
		maxIdle:     DefaultDBMaxIdleConns,
		maxLifetime: DefaultDBConnMaxLifetime,
	}
}

// MaxOpen returns the maximum number of open connections.
func (p PoolConfig) MaxOpen() int { return p.maxOpen }

// MaxIdle returns the maximum number of idle connections.
func (p PoolConfig) MaxIdle() int { return p.maxIdle }

// MaxLifetime returns how long a connection may be reused.
func (p PoolConfig) MaxLifetime() time.Duration { return p.maxLifetime }

// AppConfig holds the main application configuration.
type AppConfig struct {
	host               string
	port               int
	corsAllowedOrigins []string
	dataDir            string
	dbURL              string
	dbPool             PoolConfig
	logLevel           string
	logFormat          LogFormat
	llmEndpoint        *Endpoint
	ocr                OCRConfig
	blob               BlobConfig
	intake             IntakeConfig
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:               DefaultHost,
		port:               DefaultPort,
		corsAllowedOrigins: []string{"*"},
		dataDir:            DefaultDataDir,
		dbURL:              defaultDBURL(DefaultDataDir),
		dbPool:             NewPoolConfig(),
		logLevel:           DefaultLogLevel,
		logFormat:          LogFormatPretty,
		ocr:                NewOCRConfig(),
		blob:               NewBlobConfig(filepath.Join(DefaultDataDir, DefaultBlobSubdir)),
		intake:             NewIntakeConfig(),
	}
}

func defaultDBURL(dataDir string) string {
	return "sqlite:///" + filepath.Join(dataDir, "fnol.db")
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// CORSAllowedOrigins returns the origins allowed by the API.
func (c AppConfig) CORSAllowedOrigins() []string {
	result := make([]string, len(c.corsAllowedOrigins))
	copy(result, c.corsAllowedOrigins)
	return result
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// DBPool returns the connection pool settings.
func (c AppConfig) DBPool() PoolConfig { return c.dbPool }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// LLMEndpoint returns the LLM endpoint, or nil when none is configured.
func (c AppConfig) LLMEndpoint() *Endpoint { return c.llmEndpoint }

// OCR returns the OCR configuration.
func (c AppConfig) OCR() OCRConfig { return c.ocr }

// Blob returns the object store configuration.
func (c AppConfig) Blob() BlobConfig { return c.blob }

// Intake returns the intake pipeline configuration.
func (c AppConfig) Intake() IntakeConfig { return c.intake }

// EnsureDataDir creates the data directory if it does not exist.
func (c AppConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithCORSAllowedOrigins sets the allowed CORS origins.
func WithCORSAllowedOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		if len(origins) > 0 {
			c.corsAllowedOrigins = origins
		}
	}
}

// WithDataDir sets the data directory. Paths still derived from the
// previous data directory follow it.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		if c.dbURL == defaultDBURL(c.dataDir) {
			c.dbURL = defaultDBURL(dir)
		}
		if c.blob.dir == filepath.Join(c.dataDir, DefaultBlobSubdir) {
			c.blob.dir = filepath.Join(dir, DefaultBlobSubdir)
		}
		c.dataDir = dir
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithDBPool sets the connection pool size. Non-positive values keep the
// current setting.
func WithDBPool(maxOpen, maxIdle int, maxLifetime time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if maxOpen > 0 {
			c.dbPool.maxOpen = maxOpen
		}
		if maxIdle > 0 {
			c.dbPool.maxIdle = maxIdle
		}
		if maxLifetime > 0 {
			c.dbPool.maxLifetime = maxLifetime
		}
	}
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithLLMEndpoint sets the LLM endpoint.
func WithLLMEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.llmEndpoint = &e }
}

// WithOCRConfig sets the OCR configuration.
func WithOCRConfig(o OCRConfig) AppConfigOption {
	return func(c *AppConfig) { c.ocr = o }
}

// WithBlobConfig sets the object store configuration.
func WithBlobConfig(b BlobConfig) AppConfigOption {
	return func(c *AppConfig) { c.blob = b }
}

// WithIntakeConfig sets the intake configuration.
func WithIntakeConfig(i IntakeConfig) AppConfigOption {
	return func(c *AppConfig) { c.intake = i }
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Secrets are never included.
func (c AppConfig) LogAttrs() []slog.Attr {
	llmModel := "(not configured)"
	llmProvider := "(not configured)"
	if c.llmEndpoint != nil {
		llmModel = c.llmEndpoint.Model()
		llmProvider = string(c.llmEndpoint.Provider())
	}
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("log_level", c.logLevel),
		slog.String("llm_provider", llmProvider),
		slog.String("llm_model", llmModel),
		slog.String("ocr_provider", string(c.ocr.Provider())),
		slog.String("blob_provider", string(c.blob.Provider())),
		slog.Int("intake_parallelism", c.intake.Parallelism()),
		slog.Bool("redis_lock", c.intake.RedisURL() != ""),
	}
}

func (c AppConfig) maskedDBURL() string {
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

// ParseList parses a comma-separated string, dropping empty entries.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
