package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/soltodo/service-layer/internal/errors"
	"github.com/soltodo/service-layer/internal/httputil"
	"github.com/soltodo/service-layer/internal/logging"
)

// RateLimiter enforces one quota shared across all requests on the
// protected route group. Deliberately not keyed by caller: the limit
// protects the ledger RPC endpoint, not individual users.
type RateLimiter struct {
	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewRateLimiter allows at most requests per window, with refill spread
// evenly across the window.
func NewRateLimiter(requests int, window time.Duration, logger *logging.Logger) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	limit := rate.Limit(float64(requests) / window.Seconds())
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, requests),
		logger:  logger,
	}
}

// Allow reports whether one more request fits in the quota.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}

// Handler returns the rate limiting middleware handler.
func (rl *RateLimiter) Handler() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.limiter.Allow() {
				rl.logger.WithContext(r.Context()).WithFields(map[string]interface{}{
					"path":   r.URL.Path,
					"method": r.Method,
				}).Warn("rate limit exceeded")

				httputil.WriteError(w, errors.RateLimitExceeded())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
