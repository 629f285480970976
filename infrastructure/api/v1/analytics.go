package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claimsdesk/fnol"
	"github.com/claimsdesk/fnol/infrastructure/api/middleware"
	"github.com/claimsdesk/fnol/infrastructure/api/v1/dto"
)

// AnalyticsRouter handles reporting endpoints.
type AnalyticsRouter struct {
	client *fnol.Client
	logger *slog.Logger
}

// NewAnalyticsRouter creates a new AnalyticsRouter.
func NewAnalyticsRouter(client *fnol.Client) *AnalyticsRouter {
	return &AnalyticsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for analytics endpoints.
func (r *AnalyticsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/status", r.Status)
	router.Get("/doc-types", r.DocTypes)
	router.Get("/processing-time", r.ProcessingTime)
	router.Get("/trend", r.Trend)
	router.Get("/summary", r.Summary)

	return router
}

// Status handles GET /api/v1/analytics/status.
func (r *AnalyticsRouter) Status(w http.ResponseWriter, req *http.Request) {
	counts, err := r.client.Analytics.StatusCounts(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewStatusCountsResponse(counts))
}

// DocTypes handles GET /api/v1/analytics/doc-types.
func (r *AnalyticsRouter) DocTypes(w http.ResponseWriter, req *http.Request) {
	counts, err := r.client.Analytics.DocTypeCounts(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewDocTypeCountsResponse(counts))
}

// ProcessingTime handles GET /api/v1/analytics/processing-time.
func (r *AnalyticsRouter) ProcessingTime(w http.ResponseWriter, req *http.Request) {
	pt, err := r.client.Analytics.ProcessingTime(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewProcessingTimeResponse(pt))
}

// Trend handles GET /api/v1/analytics/trend?days=N.
func (r *AnalyticsRouter) Trend(w http.ResponseWriter, req *http.Request) {
	days, err := optionalInt(req.URL.Query().Get("days"), "days")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	trend, err := r.client.Analytics.DailyTrend(req.Context(), days)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewTrendResponse(trend))
}

// Summary handles GET /api/v1/analytics/summary.
func (r *AnalyticsRouter) Summary(w http.ResponseWriter, req *http.Request) {
	summary, err := r.client.Analytics.Summary(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewSummaryResponse(summary))
}
