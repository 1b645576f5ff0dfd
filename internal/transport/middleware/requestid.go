package middleware

import (
	"net/http"

	"github.com/frahmantamala/petshop-commerce/pkg/logger"

	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		// inject into context
		ctx := logger.WithTraceID(r.Context(), traceID)

		// propagate back to response
		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
