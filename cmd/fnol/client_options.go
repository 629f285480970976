package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/claimsdesk/fnol"
	"github.com/claimsdesk/fnol/infrastructure/blob"
	"github.com/claimsdesk/fnol/infrastructure/lock"
	"github.com/claimsdesk/fnol/infrastructure/ocr"
	"github.com/claimsdesk/fnol/infrastructure/provider"
	"github.com/claimsdesk/fnol/internal/config"
)

// clientOptions returns the fnol.Option slice derived from AppConfig:
// database, language model, OCR engine, object store and intake lock.
// Resources opened here are handed to the client as closers, so a failure
// part way through closes what was already opened.
func clientOptions(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (opts []fnol.Option, err error) {
	var opened []io.Closer
	defer func() {
		if err == nil {
			return
		}
		for _, c := range opened {
			err = errors.Join(err, c.Close())
		}
	}()

	pool := cfg.DBPool()
	opts = append(opts,
		fnol.WithDatabaseURL(cfg.DBURL()),
		fnol.WithConnectionPool(pool.MaxOpen(), pool.MaxIdle(), pool.MaxLifetime()),
		fnol.WithDataDir(cfg.DataDir()),
		fnol.WithLogger(logger),
	)

	if endpoint := cfg.LLMEndpoint(); endpoint != nil && endpoint.IsConfigured() {
		p, err := provider.New(ctx, *endpoint)
		if err != nil {
			return nil, fmt.Errorf("llm provider: %w", err)
		}
		opened = append(opened, p)
		opts = append(opts,
			fnol.WithTextProvider(p),
			fnol.WithLLMTimeout(endpoint.Timeout()),
			fnol.WithMaxTokens(endpoint.MaxTokens()),
		)
	} else {
		logger.Warn("no language model configured, extraction and classification will degrade")
	}

	engine, err := ocr.NewEngine(ctx, cfg.OCR(), logger)
	if err != nil {
		return nil, fmt.Errorf("ocr engine: %w", err)
	}
	if engine != nil {
		if c, ok := engine.(io.Closer); ok {
			opened = append(opened, c)
		}
		opts = append(opts, fnol.WithOCREngine(engine), fnol.WithOCRTimeout(cfg.OCR().Timeout()))
	}

	objects, err := blob.New(ctx, cfg.Blob(), logger)
	if err != nil {
		return nil, fmt.Errorf("blob store: %w", err)
	}
	objectCloser, _ := objects.(io.Closer)
	if objectCloser != nil {
		opened = append(opened, objectCloser)
	}
	opts = append(opts, fnol.WithObjectStore(objects))

	intake := cfg.Intake()
	if url := intake.RedisURL(); url != "" {
		rdb, err := lock.NewRedisClient(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		opened = append(opened, rdb)
		opts = append(opts, fnol.WithLocker(lock.NewRedisLocker(rdb, intake.LockTTL(), logger)))
	}
	if intake.Parallelism() > 0 {
		opts = append(opts, fnol.WithIntakeParallelism(intake.Parallelism()))
	}

	// The client closes its object store itself.
	for _, c := range opened {
		if c == objectCloser {
			continue
		}
		opts = append(opts, fnol.WithCloser(c))
	}

	return opts, nil
}

// newClient loads every configured collaborator and opens the fnol client.
func newClient(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*fnol.Client, error) {
	opts, err := clientOptions(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	client, err := fnol.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create fnol client: %w", err)
	}
	return client, nil
}
