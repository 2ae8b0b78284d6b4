package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/henriod/featherweight-mpesaCallback/internal/config"
)

const rateLimitKeyPrefix = "rate-limit:"

// RateLimit caps every route at cfg.Times requests per window per client.
// Counters live in redis so the quota holds across replicas. Excess requests
// get a 429 with a Retry-After header.
func RateLimit(client *redis.Client, cfg config.RateLimit, logger *slog.Logger) func(http.Handler) http.Handler {
	window := time.Duration(cfg.WindowSeconds) * time.Second

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := rateLimitKeyPrefix + clientIP(r) + ":" + r.URL.Path

			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				logger.ErrorContext(ctx, "Error consulting rate limiter", "error", err)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"detail": "rate limiter unavailable"})
				return
			}
			if count == 1 {
				if err := client.PExpire(ctx, key, window).Err(); err != nil {
					logger.ErrorContext(ctx, "Error setting rate limit window", "error", err)
				}
			}

			if count > int64(cfg.Times) {
				retryAfter := window
				if ttl, err := client.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
					retryAfter = ttl
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
				respondJSON(w, http.StatusTooManyRequests, map[string]string{"detail": "Too Many Requests"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
