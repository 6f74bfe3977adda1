package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dayjournal/backend/internal/services"
)

// RateLimitKeyPrefix is the Redis key prefix for per-client counters.
const RateLimitKeyPrefix = "journal:ratelimit:"

// RateLimiter is a fixed window request limiter keyed by client IP and backed
// by Redis. Redis errors let the request through.
type RateLimiter struct {
	rdb     *redis.Client
	limit   int
	window  time.Duration
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:     rdb,
		limit:   limit,
		window:  window,
		logger:  logger,
		now:     time.Now,
		timeout: 200 * time.Millisecond,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := rl.now()
		windowStart := now.Truncate(rl.window)
		key := rl.key(clientIP(r), windowStart)

		ctx, cancel := context.WithTimeout(r.Context(), rl.timeout)
		count, err := rl.hit(ctx, key)
		cancel()
		if err != nil {
			rl.logger.Warn("rate limiter unavailable, allowing request", slog.String("error", err.Error()))
			next.ServeHTTP(w, r)
			return
		}

		reset := windowStart.Add(rl.window)
		remaining := rl.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if count > int64(rl.limit) {
			retryAfter := int(reset.Sub(now).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			services.SendErrorResponse(w, "Too many requests. Please try again later.", http.StatusTooManyRequests, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) key(ip string, windowStart time.Time) string {
	return RateLimitKeyPrefix + ip + ":" + strconv.FormatInt(windowStart.Unix(), 10)
}

// hit increments the window counter. The first hit of a window sets its expiry.
func (rl *RateLimiter) hit(ctx context.Context, key string) (int64, error) {
	count, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := rl.rdb.Expire(ctx, key, rl.window).Err(); err != nil {
			rl.logger.Warn("failed to set rate limit expiry", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return count, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
