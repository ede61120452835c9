package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "roomline/pkg/errors"
	apphttp "roomline/pkg/http"
	"roomline/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						"request_id", requestIDFrom(r.Context()),
						"method", r.Method,
						"path", r.URL.Path,
						"panic", rec,
						"stack", string(debug.Stack()),
					)
					appErr := apperrors.Internal("internal server error", nil)
					if err := apphttp.WriteError(w, appErr); err != nil {
						log.Error("failed to write panic response", "error", err)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
