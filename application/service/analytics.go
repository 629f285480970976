package service

import (
	"context"
	"fmt"
	"time"

	"github.com/claimsdesk/fnol/domain/workitem"
)

// Trend window bounds in days.
const (
	DefaultTrendDays = 30
	MaxTrendDays     = 365
)

// Summary bundles every analytics view.
type Summary struct {
	Statuses       []workitem.StatusCount
	DocTypes       []workitem.DocTypeCount
	ProcessingTime workitem.ProcessingTime
	Total          int64
}

// Analytics serves the reporting views.
type Analytics struct {
	store workitem.AnalyticsStore
	now   func() time.Time
}

// NewAnalytics creates a new Analytics service.
func NewAnalytics(store workitem.AnalyticsStore) *Analytics {
	return &Analytics{
		store: store,
		now:   time.Now,
	}
}

// StatusCounts returns the number of work items per status.
func (s *Analytics) StatusCounts(ctx context.Context) ([]workitem.StatusCount, error) {
	counts, err := s.store.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	return counts, nil
}

// DocTypeCounts returns the number of attachments per document type.
func (s *Analytics) DocTypeCounts(ctx context.Context) ([]workitem.DocTypeCount, error) {
	counts, err := s.store.DocTypeCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("doc type counts: %w", err)
	}
	return counts, nil
}

// ProcessingTime returns the mean time from creation to completion.
func (s *Analytics) ProcessingTime(ctx context.Context) (workitem.ProcessingTime, error) {
	pt, err := s.store.ProcessingTime(ctx)
	if err != nil {
		return workitem.ProcessingTime{}, fmt.Errorf("processing time: %w", err)
	}
	return pt, nil
}

// DailyTrend returns one count per UTC day for the last days days,
// oldest first and including today. Days without work items count zero.
// Zero days selects DefaultTrendDays.
func (s *Analytics) DailyTrend(ctx context.Context, days int) ([]workitem.DailyCount, error) {
	if days == 0 {
		days = DefaultTrendDays
	}
	if days < 1 || days > MaxTrendDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrValidation, MaxTrendDays)
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	created, err := s.store.CreatedSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}

	trend := make([]workitem.DailyCount, days)
	for i := range trend {
		trend[i].Day = start.AddDate(0, 0, i)
	}
	for _, t := range created {
		idx := int(t.UTC().Truncate(24*time.Hour).Sub(start) / (24 * time.Hour))
		if idx < 0 || idx >= days {
			continue
		}
		trend[idx].Count++
	}
	return trend, nil
}

// Summary returns every view at once.
func (s *Analytics) Summary(ctx context.Context) (Summary, error) {
	statuses, err := s.StatusCounts(ctx)
	if err != nil {
		return Summary{}, err
	}
	docTypes, err := s.DocTypeCounts(ctx)
	if err != nil {
		return Summary{}, err
	}
	pt, err := s.ProcessingTime(ctx)
	if err != nil {
		return Summary{}, err
	}

	var total int64
	for _, c := range statuses {
		total += c.Count
	}
	return Summary{
		Statuses:       statuses,
		DocTypes:       docTypes,
		ProcessingTime: pt,
		Total:          total,
	}, nil
}
