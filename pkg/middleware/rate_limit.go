package middleware

import (
	"net"
	"net/http"

	apphttp "roomline/pkg/http"
	"roomline/pkg/logger"
	"roomline/pkg/ratelimit"
)

// RateLimit applies the sliding-window limiter per caller and endpoint.
// Authenticated callers are keyed by user ID; anonymous callers fall back
// to the client IP so one noisy neighbour cannot exhaust the budget for
// everyone behind the same proxy.
func RateLimit(limiter *ratelimit.Limiter, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiterKey(r)
			if err := limiter.Check(key); err != nil {
				log.Warn("rate limit exceeded",
					"request_id", requestIDFrom(r.Context()),
					"key", key,
					"path", r.URL.Path,
				)
				_ = apphttp.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func limiterKey(r *http.Request) string {
	if identity := IdentityFrom(r.Context()); identity != nil {
		return identity.UserID + ":" + r.URL.Path
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return host + ":" + r.URL.Path
}
