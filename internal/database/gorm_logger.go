package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQueryThreshold is the duration above which a query is logged at Warn.
const slowQueryThreshold = 500 * time.Millisecond

// maxSQLLength is the maximum length of a SQL string in logs before it is
// truncated with an ellipsis.
const maxSQLLength = 200

// slogGormLogger routes GORM output through slog. Successful queries go to
// Debug, slow queries to Warn and failures to Error. A nil logger means
// slog.Default at call time.
type slogGormLogger struct {
	logger *slog.Logger
}

func (l slogGormLogger) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return slog.Default()
}

// LogMode is a no-op; level filtering is handled by slog.
func (l slogGormLogger) LogMode(logger.LogLevel) logger.Interface { return l }

// Info logs informational messages from GORM.
func (l slogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	l.log().InfoContext(ctx, fmt.Sprintf(msg, args...))
}

// Warn logs warning messages from GORM.
func (l slogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.log().WarnContext(ctx, fmt.Sprintf(msg, args...))
}

// Error logs error messages from GORM.
func (l slogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	l.log().ErrorContext(ctx, fmt.Sprintf(msg, args...))
}

// truncateSQL shortens a SQL string for readable log output, replacing the
// middle with "..." when it exceeds maxSQLLength.
func truncateSQL(sql string) string {
	if len(sql) <= maxSQLLength {
		return sql
	}
	half := (maxSQLLength - 3) / 2
	return sql[:half] + "..." + sql[len(sql)-half:]
}

// Trace is called by GORM after every SQL operation. ErrRecordNotFound is
// the normal "no rows" result of First and is not an error. Duplicate-key
// failures are expected on the dedup path and are logged at Debug.
func (l slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	log := l.log()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !IsDuplicateKey(err) {
		sql, rows := fc()
		log.ErrorContext(ctx, "gorm query error",
			"sql", truncateSQL(sql),
			"rows", rows,
			"duration", elapsed,
			"error", err,
		)
		return
	}

	if elapsed > slowQueryThreshold {
		sql, rows := fc()
		log.WarnContext(ctx, "gorm slow query",
			"sql", truncateSQL(sql),
			"rows", rows,
			"duration", elapsed,
		)
		return
	}

	if !log.Enabled(ctx, slog.LevelDebug) {
		return
	}

	sql, rows := fc()
	log.DebugContext(ctx, "gorm query",
		"sql", truncateSQL(sql),
		"rows", rows,
		"duration", elapsed,
	)
}
