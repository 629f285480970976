package workitem

import (
	"context"
	"time"
)

// StatusCount is the number of work items in one status.
type StatusCount struct {
	Status Status
	Count  int64
}

// DocTypeCount is the number of attachments with one label. Unclassified
// attachments are reported under DocTypeUnclassified.
type DocTypeCount struct {
	DocType string
	Count   int64
}

// ProcessingTime summarises how long finished work items took.
type ProcessingTime struct {
	Average   time.Duration
	Completed int64
}

// DailyCount is the number of work items created on one UTC day.
type DailyCount struct {
	Day   time.Time
	Count int64
}

// AnalyticsStore runs the aggregation queries behind the reporting views.
type AnalyticsStore interface {
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	DocTypeCounts(ctx context.Context) ([]DocTypeCount, error)
	ProcessingTime(ctx context.Context) (ProcessingTime, error)
	// CreatedSince returns creation times of work items created at or after since.
	CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}
