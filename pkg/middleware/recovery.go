package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "officehub/pkg/errors"
	httputil "officehub/pkg/http"
	"officehub/pkg/logger"
	"officehub/pkg/metrics"
)

// Recovery turns a handler panic into a 500 INTERNAL_ERROR response.
// m may be nil.
func Recovery(log *logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					m.PanicRecovered()

					log.Error("Panic recovered",
						"request_id", RequestIDFromContext(r.Context()),
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					_ = httputil.WriteError(w, apperrors.Internal("Internal server error", nil))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
