package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/henriod/featherweight-mpesaCallback/internal/config"
	"github.com/henriod/featherweight-mpesaCallback/internal/middleware"
	"github.com/henriod/featherweight-mpesaCallback/internal/receipt"
)

// NewRouter wires the HTTP routes and the global middleware chain:
// timing -> rate limiting -> mux, with the response cache wrapping only the
// slow profile endpoint.
func NewRouter(logger *slog.Logger, client *redis.Client, processor *receipt.Processor, cfg *config.Config) http.Handler {
	handlers := NewHandlers(logger, processor, time.Duration(cfg.Cache.DelaySeconds)*time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /liveness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /{$}", handlers.Root)
	mux.HandleFunc("GET /user", handlers.CurrentUser)
	mux.HandleFunc("POST /receipts/c2b-payment-confirmation", handlers.PaymentConfirmation)

	responseCache := middleware.ResponseCache(
		middleware.NewRedisBackend(client),
		cfg.Cache.Prefix,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		logger,
	)
	mux.Handle("GET /cached", responseCache(http.HandlerFunc(handlers.CachedUser)))

	handler := middleware.RateLimit(client, cfg.RateLimit, logger)(mux)
	handler = middleware.Timing(logger)(handler)
	return handler
}
