package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// CachedResponse is the stored shape of one memoized endpoint response.
type CachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// CacheBackend stores memoized responses for a fixed window.
type CacheBackend interface {
	Get(ctx context.Context, key string) (*CachedResponse, error)
	Set(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error
}

// RedisBackend keeps cached responses as JSON values with a TTL.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (*CachedResponse, error) {
	value, err := b.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "fetching cached response %s", key)
	}

	var response CachedResponse
	if err := json.Unmarshal(value, &response); err != nil {
		return nil, errors.Wrapf(err, "decoding cached response %s", key)
	}
	return &response, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error {
	value, err := json.Marshal(response)
	if err != nil {
		return errors.Wrapf(err, "encoding cached response %s", key)
	}
	return errors.Wrapf(b.client.Set(ctx, key, value, ttl).Err(), "storing cached response %s", key)
}

// ResponseCache memoizes GET responses keyed by request identity. Identical
// requests within the TTL are served from the backend without invoking the
// handler. Backend failures degrade to a cache miss.
func ResponseCache(backend CacheBackend, prefix string, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := prefix + ":" + r.Method + ":" + r.URL.RequestURI()

			cached, err := backend.Get(ctx, key)
			if err != nil {
				logger.WarnContext(ctx, "Error reading response cache", "key", key, "error", err)
			}
			if cached != nil {
				w.Header().Set("Content-Type", cached.ContentType)
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(cached.Status)
				w.Write(cached.Body)
				return
			}

			buffered := &bufferedResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(buffered, r)

			if buffered.status == http.StatusOK {
				entry := &CachedResponse{
					Status:      buffered.status,
					ContentType: buffered.Header().Get("Content-Type"),
					Body:        buffered.body.Bytes(),
				}
				if err := backend.Set(ctx, key, entry, ttl); err != nil {
					logger.WarnContext(ctx, "Error writing response cache", "key", key, "error", err)
				}
			}

			w.Header().Set("X-Cache", "MISS")
			buffered.flush()
		})
	}
}
