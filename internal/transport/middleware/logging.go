package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/petshop-commerce/internal/core/metrics"
	"github.com/frahmantamala/petshop-commerce/pkg/logger"
)

// maxLoggedBody caps how much of a body is kept for the log line; CSV exports
// and gateway callbacks can be large.
const maxLoggedBody = 8 << 10

const filtered = "[FILTERED]"

// redactedKeys are matched as substrings of lower-cased header and JSON field
// names. Customer contact details are masked along with credentials.
var redactedKeys = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"cookie",
	"customer_phone",
	"shipping_address",
}

func redacted(name string) bool {
	name = strings.ToLower(name)
	for _, k := range redactedKeys {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// LoggingMiddleware logs each request and response with credentials and
// customer contact details masked, and records request metrics when m is
// non-nil.
func LoggingMiddleware(lg *slog.Logger, m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := logger.TraceID(r.Context())

			var reqBody []byte
			if r.Body != nil {
				reqBody, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(reqBody))
			}
			lg.InfoContext(r.Context(), "incoming request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"headers", redactHeaders(r.Header),
				"body", redactJSON(reqBody),
			)

			ww := &responseWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := ww.status()

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			body := ""
			if strings.HasPrefix(ww.Header().Get("Content-Type"), "application/json") {
				body = redactJSON(ww.body.Bytes())
			}
			lg.Log(r.Context(), level, "response",
				"request_id", reqID,
				"status_code", status,
				"duration_ms", duration.Milliseconds(),
				"response_size", ww.size,
				"body", body,
			)
			m.ObserveHTTP(r.Method, status, duration.Seconds())
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.body.Len() < maxLoggedBody {
		rw.body.Write(b)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *responseWriter) status() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if redacted(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactJSON returns the body with redacted fields masked. Bodies that are not
// JSON are never logged; only their size is.
func redactJSON(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		return "[TRUNCATED]"
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "[NON-JSON]"
	}
	out, err := json.Marshal(redactValue(doc))
	if err != nil {
		return "[NON-JSON]"
	}
	return string(out)
}

func redactValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			if redacted(k) {
				t[k] = filtered
				continue
			}
			t[k] = redactValue(val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = redactValue(val)
		}
		return t
	default:
		return v
	}
}
