// Package fnol turns first-notice-of-loss emails into tracked work items.
//
// A submission carries an email subject, body and optional base64
// attachments. Attachments are decoded, run through OCR, classified and
// stored; a language model extracts structured claim fields; the result is
// persisted as a pending work item, deduplicated by message id.
//
// Basic usage:
//
//	client, err := fnol.New(
//	    fnol.WithSQLite(".fnol/fnol.db"),
//	    fnol.WithOpenAIConfig(provider.OpenAIConfig{APIKey: os.Getenv("OPENAI_API_KEY")}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	record, err := client.Intake.Submit(ctx, service.IntakeParams{
//	    MessageID: "<abc@mail>",
//	    Subject:   "Car accident on the M4",
//	    Body:      "I was rear-ended at a junction...",
//	})
package fnol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/claimsdesk/fnol/application/service"
	"github.com/claimsdesk/fnol/infrastructure/blob"
	"github.com/claimsdesk/fnol/infrastructure/classifier"
	"github.com/claimsdesk/fnol/infrastructure/extraction"
	"github.com/claimsdesk/fnol/infrastructure/lock"
	"github.com/claimsdesk/fnol/infrastructure/ocr"
	"github.com/claimsdesk/fnol/infrastructure/persistence"
	"github.com/claimsdesk/fnol/internal/config"
	"github.com/claimsdesk/fnol/internal/database"
)

// Client is the main entry point for the fnol library.
//
// Access services via struct fields:
//
//	client.Intake.Submit(ctx, params)
//	client.WorkItems.List(ctx, workitem.WithStatus(workitem.StatusPending))
//	client.Analytics.DailyTrend(ctx, 30)
type Client struct {
	Intake      *service.Intake
	WorkItems   *service.WorkItem
	Attachments *service.Attachment
	Analytics   *service.Analytics

	// Text and Fields expose the adapters the intake pipeline uses, for
	// offline runs outside a submission.
	Text   *ocr.Extractor
	Fields *extraction.Extractor

	db      database.Database
	objects blob.Store
	closers []io.Closer
	logger  *slog.Logger
	closed  atomic.Bool
	mu      sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.dbURL == "" {
		return nil, ErrNoDatabase
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()

	db, err := database.NewDatabase(ctx, cfg.dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.pool.maxOpen > 0 {
		if db.IsPostgres() {
			if err := db.ConfigurePool(cfg.pool.maxOpen, cfg.pool.maxIdle, cfg.pool.maxLifetime); err != nil {
				errClose := db.Close()
				return nil, errors.Join(fmt.Errorf("configure pool: %w", err), errClose)
			}
		} else {
			logger.Debug("connection pool settings ignored", slog.String("dialect", db.GORM().Name()))
		}
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	objects := cfg.objectStore
	if objects == nil {
		fs, err := blob.NewFilesystemStore(filepath.Join(cfg.dataDir, config.DefaultBlobSubdir), blob.DefaultBaseURL)
		if err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("blob store: %w", err), errClose)
		}
		objects = fs
	}

	locker := cfg.locker
	if locker == nil {
		locker = lock.NewLocalLocker()
	}

	workItemStore := persistence.NewWorkItemStore(db)
	attachmentStore := persistence.NewAttachmentStore(db)
	analyticsStore := persistence.NewAnalyticsStore(db)

	text := ocr.NewExtractor(cfg.ocrEngine, cfg.ocrTimeout, logger)
	fields := extraction.NewExtractor(cfg.textProvider,
		extraction.WithTimeout(cfg.llmTimeout),
		extraction.WithMaxTokens(cfg.maxTokens),
		extraction.WithLogger(logger),
	)
	docs := classifier.NewClassifier(cfg.textProvider, cfg.llmTimeout, logger)

	client := &Client{
		Text:    text,
		Fields:  fields,
		db:      db,
		objects: objects,
		closers: cfg.closers,
		logger:  logger,
	}

	client.Intake = service.NewIntake(workItemStore, attachmentStore, text, fields, docs, objects,
		service.WithLocker(locker),
		service.WithParallelism(cfg.parallelism),
		service.WithIntakeLogger(logger),
	)
	client.WorkItems = service.NewWorkItem(workItemStore, attachmentStore, logger)
	client.Attachments = service.NewAttachment(workItemStore, attachmentStore, objects, logger)
	client.Analytics = service.NewAnalytics(analyticsStore)

	logger.Info("fnol client ready",
		slog.Bool("ocr", text.Enabled()),
		slog.Bool("llm", cfg.textProvider != nil),
		slog.Int("intake_parallelism", cfg.parallelism),
	)

	return client, nil
}

// BlobHandler returns a handler serving stored blobs when the object store
// keeps them locally.
func (c *Client) BlobHandler() (http.Handler, bool) {
	h, ok := c.objects.(interface{ Handler() http.Handler })
	if !ok {
		return nil, false
	}
	return h.Handler(), true
}

// Ping checks the database connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	sqlDB, err := c.db.GORM().DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases all resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if closer, ok := c.objects.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close object store", slog.Any("error", err))
		}
	}

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("fnol client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}
