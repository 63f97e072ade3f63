package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "officehub/pkg/errors"
	httputil "officehub/pkg/http"
	"officehub/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "officehub:ratelimit"

type KeyExtractor func(r *http.Request) string

// ClientRateLimiter allows limit requests per window for each client key.
type ClientRateLimiter struct {
	limiter      *limiter.Limiter
	keyExtractor KeyExtractor
	log          *logger.Logger
}

// NewClientRateLimiter keeps counters in process memory, or in Redis when rdb
// is non-nil so that every instance shares the same budget.
func NewClientRateLimiter(limit int, window time.Duration, rdb *redis.Client, extractor KeyExtractor, log *logger.Logger) (*ClientRateLimiter, error) {
	if extractor == nil {
		extractor = ClientIP
	}

	var (
		store limiter.Store
		err   error
	)
	options := limiter.StoreOptions{
		Prefix:          rateLimitPrefix,
		CleanUpInterval: window,
		MaxRetry:        3,
	}
	if rdb != nil {
		store, err = redisstore.NewStoreWithOptions(rdb, options)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(options)
	}

	return &ClientRateLimiter{
		limiter:      limiter.New(store, limiter.Rate{Period: window, Limit: int64(limit)}),
		keyExtractor: extractor,
		log:          log,
	}, nil
}

func ClientRateLimit(rl *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rl.keyExtractor(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			lctx, err := rl.limiter.Get(r.Context(), key)
			if err != nil {
				// Fail open: a broken counter store must not take the API down.
				rl.log.Warn("Rate limiter unavailable",
					"request_id", RequestIDFromContext(r.Context()),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				rejectRateLimited(w, rl.log, r, key)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, key string) {
	log.Warn("Rate limit exceeded",
		"request_id", RequestIDFromContext(r.Context()),
		"client", key,
		"path", r.URL.Path,
	)

	_ = httputil.WriteError(w, apperrors.RateLimited())
}

// ClientIP prefers the first X-Forwarded-For hop, then the connection address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
