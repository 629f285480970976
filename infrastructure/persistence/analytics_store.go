package persistence

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/claimsdesk/fnol/domain/query"
	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/internal/database"
)

// AnalyticsStore implements workitem.AnalyticsStore with portable SQL.
type AnalyticsStore struct {
	db database.Database
}

// NewAnalyticsStore creates a new AnalyticsStore.
func NewAnalyticsStore(db database.Database) AnalyticsStore {
	return AnalyticsStore{db: db}
}

// StatusCounts returns the number of work items per status, largest first.
func (s AnalyticsStore) StatusCounts(ctx context.Context) ([]workitem.StatusCount, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := s.db.Session(ctx).
		Model(&WorkItemModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("count DESC, status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	result := make([]workitem.StatusCount, len(rows))
	for i, r := range rows {
		result[i] = workitem.StatusCount{Status: workitem.Status(r.Status), Count: r.Count}
	}
	return result, nil
}

// DocTypeCounts returns the number of attachments per label, largest first.
func (s AnalyticsStore) DocTypeCounts(ctx context.Context) ([]workitem.DocTypeCount, error) {
	var rows []struct {
		DocType string
		Count   int64
	}
	label := "COALESCE(NULLIF(doc_type, ''), '" + workitem.DocTypeUnclassified + "')"
	err := s.db.Session(ctx).
		Model(&AttachmentModel{}).
		Select(label + " AS doc_type, COUNT(*) AS count").
		Group(label).
		Order("count DESC, doc_type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count by doc type: %w", err)
	}

	result := make([]workitem.DocTypeCount, len(rows))
	for i, r := range rows {
		result[i] = workitem.DocTypeCount{DocType: r.DocType, Count: r.Count}
	}
	return result, nil
}

// ProcessingTime averages completed_at - created_at over finished work items.
// The average is computed by the database; only one row comes back.
func (s AnalyticsStore) ProcessingTime(ctx context.Context) (workitem.ProcessingTime, error) {
	var elapsed string
	switch {
	case s.db.IsPostgres():
		elapsed = "EXTRACT(EPOCH FROM (completed_at - created_at))"
	case s.db.IsSQLite():
		elapsed = "(julianday(completed_at) - julianday(created_at)) * 86400.0"
	default:
		return workitem.ProcessingTime{}, fmt.Errorf("processing time: unsupported dialect %s", s.db.GORM().Name())
	}

	var row struct {
		AverageSeconds *float64
		Completed      int64
	}
	err := database.ApplyConditions(s.db.Session(ctx).Model(&WorkItemModel{}), query.WithNotNull("completed_at")).
		Select("AVG(" + elapsed + ") AS average_seconds, COUNT(*) AS completed").
		Scan(&row).Error
	if err != nil {
		return workitem.ProcessingTime{}, fmt.Errorf("average completion time: %w", err)
	}
	if row.Completed == 0 || row.AverageSeconds == nil {
		return workitem.ProcessingTime{}, nil
	}

	// julianday arithmetic carries sub-millisecond float noise.
	millis := math.Round(*row.AverageSeconds * 1000)
	return workitem.ProcessingTime{
		Average:   time.Duration(millis) * time.Millisecond,
		Completed: row.Completed,
	}, nil
}

// CreatedSince returns creation times of work items created at or after since.
func (s AnalyticsStore) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := database.ApplyOptions(s.db.Session(ctx).Model(&WorkItemModel{}),
		query.WithSince("created_at", since),
		query.WithOrderAsc("created_at"),
	).Pluck("created_at", &times).Error
	if err != nil {
		return nil, fmt.Errorf("load creation times: %w", err)
	}
	return times, nil
}
