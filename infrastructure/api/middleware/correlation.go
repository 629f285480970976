package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/claimsdesk/fnol/internal/log"
)

// CorrelationIDHeader carries the correlation id on requests and responses.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID takes the correlation id from the request header, or
// generates one, and stores it with the chi request id in the context.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" {
			id = log.NewCorrelationID()
		}
		w.Header().Set(CorrelationIDHeader, id)

		ctx := log.WithCorrelationID(r.Context(), id)
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			ctx = log.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
