package chi

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/envie-local/envie/internal/domain"
	logpkg "github.com/envie-local/envie/internal/logger"
	"github.com/envie-local/envie/internal/metrics"
)

var rateLimitKeyPrefix = domain.KeyPrefix + "ratelimit:"

// exemptPaths are routes that bypass rate limiting (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// counter is the consumer interface for the rate limiter (ISP).
type counter interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// RateLimitConfig holds the fixed-window parameters.
type RateLimitConfig struct {
	// Requests allowed per client IP and window. Zero disables limiting.
	Requests int
	Window   time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
}

// RateLimitMiddleware returns a per-IP fixed-window rate limiter backed by store.
// If store is nil or Requests is zero, limiting is disabled (pass-through).
// Store errors let the request through.
func RateLimitMiddleware(store counter, cfg RateLimitConfig) func(http.Handler) http.Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	window := cfg.Window
	if window < time.Second {
		window = time.Minute
	}
	windowSec := int64(window / time.Second)

	return func(next http.Handler) http.Handler {
		// Limiting disabled, pass everything through
		if store == nil || cfg.Requests <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ts := now().Unix()
			bucket := ts / windowSec
			key := rateLimitKeyPrefix + clientIP(r) + ":" + strconv.FormatInt(bucket, 10)

			n, err := store.IncrBy(r.Context(), key, 1)
			if err != nil {
				logpkg.FromContext(r.Context()).Warn("Rate limiter unavailable, allowing request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if n == 1 {
				if err := store.Expire(r.Context(), key, window, true); err != nil {
					logpkg.FromContext(r.Context()).Warn("Failed to set rate limit window", zap.Error(err))
				}
			}

			if n > int64(cfg.Requests) {
				metrics.RateLimitedTotal.Inc()
				retryAfter := (bucket+1)*windowSec - ts
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				writeError(w, http.StatusTooManyRequests, msgRateLimited, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr (set by chi RealIP when enabled).
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
