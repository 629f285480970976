package dto

import (
	"time"

	"github.com/claimsdesk/fnol/application/service"
	"github.com/claimsdesk/fnol/domain/workitem"
)

// StatusCountResponse is one row of GET /analytics/status.
type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DocTypeCountResponse is one row of GET /analytics/doc-types.
type DocTypeCountResponse struct {
	DocType string `json:"doc_type"`
	Count   int64  `json:"count"`
}

// ProcessingTimeResponse is the body of GET /analytics/processing-time.
// Averages are null when no work item has finished.
type ProcessingTimeResponse struct {
	AverageSeconds *float64 `json:"average_seconds"`
	AverageHours   *float64 `json:"average_hours"`
	Completed      int64    `json:"completed"`
}

// DailyCountResponse is one day of GET /analytics/trend.
type DailyCountResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// SummaryResponse bundles every analytics view.
type SummaryResponse struct {
	Total          int64                  `json:"total"`
	Statuses       []StatusCountResponse  `json:"statuses"`
	DocTypes       []DocTypeCountResponse `json:"doc_types"`
	ProcessingTime ProcessingTimeResponse `json:"processing_time"`
}

// NewStatusCountsResponse converts status counts.
func NewStatusCountsResponse(counts []workitem.StatusCount) []StatusCountResponse {
	result := make([]StatusCountResponse, len(counts))
	for i, c := range counts {
		result[i] = StatusCountResponse{Status: c.Status.String(), Count: c.Count}
	}
	return result
}

// NewDocTypeCountsResponse converts document type counts.
func NewDocTypeCountsResponse(counts []workitem.DocTypeCount) []DocTypeCountResponse {
	result := make([]DocTypeCountResponse, len(counts))
	for i, c := range counts {
		result[i] = DocTypeCountResponse{DocType: c.DocType, Count: c.Count}
	}
	return result
}

// NewProcessingTimeResponse converts a processing time summary.
func NewProcessingTimeResponse(pt workitem.ProcessingTime) ProcessingTimeResponse {
	resp := ProcessingTimeResponse{Completed: pt.Completed}
	if pt.Completed > 0 {
		seconds := pt.Average.Seconds()
		hours := pt.Average.Hours()
		resp.AverageSeconds = &seconds
		resp.AverageHours = &hours
	}
	return resp
}

// NewTrendResponse converts a daily trend.
func NewTrendResponse(trend []workitem.DailyCount) []DailyCountResponse {
	result := make([]DailyCountResponse, len(trend))
	for i, d := range trend {
		result[i] = DailyCountResponse{Date: d.Day.Format(time.DateOnly), Count: d.Count}
	}
	return result
}

// NewSummaryResponse converts an analytics summary.
func NewSummaryResponse(s service.Summary) SummaryResponse {
	return SummaryResponse{
		Total:          s.Total,
		Statuses:       NewStatusCountsResponse(s.Statuses),
		DocTypes:       NewDocTypeCountsResponse(s.DocTypes),
		ProcessingTime: NewProcessingTimeResponse(s.ProcessingTime),
	}
}
