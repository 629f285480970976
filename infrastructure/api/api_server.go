// Package api exposes the fnol client over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claimsdesk/fnol"
	"github.com/claimsdesk/fnol/infrastructure/api/middleware"
	v1 "github.com/claimsdesk/fnol/infrastructure/api/v1"
	"github.com/claimsdesk/fnol/infrastructure/blob"
	mcpinternal "github.com/claimsdesk/fnol/internal/mcp"
)

// RequestTimeout bounds every /api/v1 request, intake included.
const RequestTimeout = 4 * time.Minute

// APIServer provides an HTTP API backed by a fnol Client.
type APIServer struct {
	client      *fnol.Client
	version     string
	corsOrigins []string
	server      *Server
	router      chi.Router
}

// APIServerOption configures an APIServer.
type APIServerOption func(*APIServer)

// WithVersion sets the version reported by the root endpoint and MCP.
func WithVersion(v string) APIServerOption {
	return func(a *APIServer) { a.version = v }
}

// WithCORSOrigins sets the allowed CORS origins. Empty allows none.
func WithCORSOrigins(origins []string) APIServerOption {
	return func(a *APIServer) { a.corsOrigins = origins }
}

// NewAPIServer creates a new APIServer wired to the given fnol Client.
func NewAPIServer(client *fnol.Client, opts ...APIServerOption) *APIServer {
	a := &APIServer{
		client:      client,
		version:     "dev",
		corsOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns every route with the standard middleware applied.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		router := chi.NewRouter()
		router.Use(chimiddleware.RequestID)
		router.Use(chimiddleware.RealIP)
		router.Use(chimiddleware.Recoverer)
		router.Use(chimiddleware.StripSlashes)
		a.mountRoutes(router)
		a.router = router
	}
	return a.router
}

// mountRoutes wires middleware and every route on router.
func (a *APIServer) mountRoutes(router chi.Router) {
	logger := a.client.Logger()

	router.Use(middleware.CorrelationID)
	router.Use(middleware.Logging(logger))
	if len(a.corsOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   a.corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.CorrelationIDHeader},
			ExposedHeaders:   []string{middleware.CorrelationIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/", a.root)
	router.Get("/health", a.health)
	router.Get("/healthz", a.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(RequestTimeout))
		r.Mount("/fnol", v1.NewFNOLRouter(a.client).Routes())
		r.Mount("/attachments", v1.NewAttachmentsRouter(a.client).Routes())
		r.Mount("/analytics", v1.NewAnalyticsRouter(a.client).Routes())
	})

	if blobs, ok := a.client.BlobHandler(); ok {
		router.Mount(blob.DefaultBaseURL, http.StripPrefix(blob.DefaultBaseURL, blobs))
	}

	// MCP streams, so it sits outside the timeout group.
	mcpSrv := mcpinternal.NewServer(a.client.WorkItems, a.client.Analytics, a.version, logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

func (a *APIServer) root(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "FNOL Backend API",
		"version": a.version,
	})
}

func (a *APIServer) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	srv := NewServer(addr, a.client.Logger())
	a.server = &srv
	a.mountRoutes(srv.Router())
	return srv.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}
