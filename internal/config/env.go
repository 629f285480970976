package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., LLM_ENDPOINT_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// CORSAllowedOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ALLOWED_ORIGINS (default: *)
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// DataDir is the data directory path.
	// Env: DATA_DIR (default: .fnol)
	DataDir string `envconfig:"DATA_DIR" default:".fnol"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/fnol.db
	DBURL string `envconfig:"DB_URL"`

	// DBMaxOpenConns caps open PostgreSQL connections.
	// Env: DB_MAX_OPEN_CONNS (default: 10)
	DBMaxOpenConns int `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`

	// DBMaxIdleConns caps idle PostgreSQL connections.
	// Env: DB_MAX_IDLE_CONNS (default: 5)
	DBMaxIdleConns int `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`

	// DBConnMaxLifetime is how long a connection may be reused, in seconds.
	// Env: DB_CONN_MAX_LIFETIME (default: 1800)
	DBConnMaxLifetime float64 `envconfig:"DB_CONN_MAX_LIFETIME" default:"1800"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// LLMEndpoint configures the field extraction and classification model.
	LLMEndpoint EndpointEnv `envconfig:"LLM_ENDPOINT"`

	// OCR configures attachment text extraction.
	OCR OCREnv `envconfig:"OCR"`

	// Blob configures attachment storage.
	Blob BlobEnv `envconfig:"BLOB"`

	// Intake tunes the intake pipeline.
	Intake IntakeEnv `envconfig:"INTAKE"`

	// RedisURL enables cross-process message id claims.
	// Env: REDIS_URL
	RedisURL string `envconfig:"REDIS_URL"`
}

// EndpointEnv holds environment configuration for the LLM endpoint.
type EndpointEnv struct {
	// Provider selects the backend (openai or gemini).
	// Env: LLM_ENDPOINT_PROVIDER (default: openai)
	Provider string `envconfig:"PROVIDER" default:"openai"`

	// BaseURL is the base URL for OpenAI-compatible endpoints.
	// Env: LLM_ENDPOINT_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the model identifier.
	// Env: LLM_ENDPOINT_MODEL
	Model string `envconfig:"MODEL"`

	// APIKey is the API key for authentication.
	// Env: LLM_ENDPOINT_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the request timeout in seconds.
	// Env: LLM_ENDPOINT_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: LLM_ENDPOINT_MAX_RETRIES (default: 0)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"0"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: LLM_ENDPOINT_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: LLM_ENDPOINT_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`

	// MaxTokens is the maximum token limit.
	// Env: LLM_ENDPOINT_MAX_TOKENS (default: 4000)
	MaxTokens int `envconfig:"MAX_TOKENS" default:"4000"`
}

// OCREnv holds environment configuration for OCR.
type OCREnv struct {
	// Provider selects the engine (none, gemini, tesseract or azure).
	// Env: OCR_PROVIDER (default: none)
	Provider string `envconfig:"PROVIDER" default:"none"`

	// Timeout is the per-document timeout in seconds.
	// Env: OCR_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// Model is the Gemini vision model.
	// Env: OCR_MODEL
	Model string `envconfig:"MODEL"`

	// APIKey authenticates Gemini or Azure.
	// Env: OCR_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Endpoint is the Azure Document Intelligence endpoint.
	// Env: OCR_ENDPOINT
	Endpoint string `envconfig:"ENDPOINT"`

	// Language is the tesseract language code.
	// Env: OCR_LANGUAGE (default: eng)
	Language string `envconfig:"LANGUAGE" default:"eng"`

	// DPI is the rasterisation resolution for scanned PDFs.
	// Env: OCR_DPI (default: 300)
	DPI int `envconfig:"DPI" default:"300"`

	// Env: OCR_TESSERACT_BINARY (default: tesseract)
	TesseractBinary string `envconfig:"TESSERACT_BINARY" default:"tesseract"`

	// Env: OCR_PDFTOTEXT_BINARY (default: pdftotext)
	PdftotextBinary string `envconfig:"PDFTOTEXT_BINARY" default:"pdftotext"`

	// Env: OCR_PDFTOPPM_BINARY (default: pdftoppm)
	PdftoppmBinary string `envconfig:"PDFTOPPM_BINARY" default:"pdftoppm"`
}

// BlobEnv holds environment configuration for the object store.
type BlobEnv struct {
	// Provider selects the backend (filesystem, minio or gcs).
	// Env: BLOB_PROVIDER (default: filesystem)
	Provider string `envconfig:"PROVIDER" default:"filesystem"`

	// Dir is the filesystem root.
	// Env: BLOB_DIR
	// Default: {data_dir}/blobs
	Dir string `envconfig:"DIR"`

	// BaseURL is the public URL prefix for stored objects.
	// Env: BLOB_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Env: BLOB_BUCKET
	Bucket string `envconfig:"BUCKET"`

	// Env: BLOB_ENDPOINT
	Endpoint string `envconfig:"ENDPOINT"`

	// Env: BLOB_ACCESS_KEY
	AccessKey string `envconfig:"ACCESS_KEY"`

	// Env: BLOB_SECRET_KEY
	SecretKey string `envconfig:"SECRET_KEY"`

	// Env: BLOB_USE_SSL (default: true)
	UseSSL bool `envconfig:"USE_SSL" default:"true"`

	// Env: BLOB_REGION
	Region string `envconfig:"REGION"`

	// CredentialsJSON is a GCS service account key.
	// Env: BLOB_CREDENTIALS_JSON
	CredentialsJSON string `envconfig:"CREDENTIALS_JSON"`
}

// IntakeEnv holds environment configuration for the intake pipeline.
type IntakeEnv struct {
	// Parallelism bounds concurrent attachment work per submission.
	// Env: INTAKE_PARALLELISM (default: 4)
	Parallelism int `envconfig:"PARALLELISM" default:"4"`

	// LockTTL is the message id claim lifetime in seconds.
	// Env: INTAKE_LOCK_TTL (default: 300)
	LockTTL float64 `envconfig:"LOCK_TTL" default:"300"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	cfg = applyOption(cfg, WithCORSAllowedOrigins(ParseList(e.CORSAllowedOrigins)))
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	cfg = applyOption(cfg, WithDBPool(e.DBMaxOpenConns, e.DBMaxIdleConns, seconds(e.DBConnMaxLifetime)))
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}

	if e.LLMEndpoint.IsConfigured() {
		cfg = applyOption(cfg, WithLLMEndpoint(e.LLMEndpoint.ToEndpoint()))
	}

	cfg = applyOption(cfg, WithOCRConfig(e.OCR.ToOCRConfig()))
	cfg = applyOption(cfg, WithBlobConfig(e.Blob.ToBlobConfig(cfg.DataDir())))
	cfg = applyOption(cfg, WithIntakeConfig(e.Intake.ToIntakeConfig(e.RedisURL)))

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// IsConfigured returns true if the endpoint has a model configured.
func (e EndpointEnv) IsConfigured() bool {
	return e.Model != ""
}

// ToEndpoint converts EndpointEnv to Endpoint.
func (e EndpointEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithProvider(parseLLMProvider(e.Provider)),
		WithModel(e.Model),
		WithTimeout(seconds(e.Timeout)),
		WithMaxRetries(e.MaxRetries),
		WithInitialDelay(seconds(e.InitialDelay)),
		WithBackoffFactor(e.BackoffFactor),
		WithMaxTokens(e.MaxTokens),
	}
	if e.BaseURL != "" {
		opts = append(opts, WithBaseURL(e.BaseURL))
	}
	if e.APIKey != "" {
		opts = append(opts, WithAPIKey(e.APIKey))
	}
	return NewEndpointWithOptions(opts...)
}

// ToOCRConfig converts OCREnv to OCRConfig.
func (o OCREnv) ToOCRConfig() OCRConfig {
	cfg := NewOCRConfig()
	cfg.provider = OCRProvider(strings.ToLower(strings.TrimSpace(o.Provider)))
	if o.Timeout > 0 {
		cfg.timeout = seconds(o.Timeout)
	}
	cfg.model = o.Model
	cfg.apiKey = o.APIKey
	cfg.endpoint = o.Endpoint
	if o.Language != "" {
		cfg.language = o.Language
	}
	if o.DPI > 0 {
		cfg.dpi = o.DPI
	}
	if o.TesseractBinary != "" {
		cfg.tesseractBinary = o.TesseractBinary
	}
	if o.PdftotextBinary != "" {
		cfg.pdftotextBinary = o.PdftotextBinary
	}
	if o.PdftoppmBinary != "" {
		cfg.pdftoppmBinary = o.PdftoppmBinary
	}
	return cfg
}

// ToBlobConfig converts BlobEnv to BlobConfig.
func (b BlobEnv) ToBlobConfig(dataDir string) BlobConfig {
	dir := b.Dir
	if dir == "" {
		dir = filepath.Join(dataDir, DefaultBlobSubdir)
	}
	cfg := NewBlobConfig(dir)
	if b.Provider != "" {
		cfg.provider = BlobProvider(strings.ToLower(strings.TrimSpace(b.Provider)))
	}
	cfg.baseURL = b.BaseURL
	cfg.bucket = b.Bucket
	cfg.endpoint = b.Endpoint
	cfg.accessKey = b.AccessKey
	cfg.secretKey = b.SecretKey
	cfg.useSSL = b.UseSSL
	cfg.region = b.Region
	cfg.credentialsJSON = b.CredentialsJSON
	return cfg
}

// ToIntakeConfig converts IntakeEnv to IntakeConfig.
func (i IntakeEnv) ToIntakeConfig(redisURL string) IntakeConfig {
	cfg := NewIntakeConfig()
	if i.Parallelism > 0 {
		cfg.parallelism = i.Parallelism
	}
	if i.LockTTL > 0 {
		cfg.lockTTL = seconds(i.LockTTL)
	}
	cfg.redisURL = redisURL
	return cfg
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

func parseLLMProvider(s string) LLMProvider {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gemini", "google":
		return LLMProviderGemini
	default:
		return LLMProviderOpenAI
	}
}
