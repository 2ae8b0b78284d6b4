package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/henriod/featherweight-mpesaCallback/internal/api"
	"github.com/henriod/featherweight-mpesaCallback/internal/config"
	"github.com/henriod/featherweight-mpesaCallback/internal/db"
	"github.com/henriod/featherweight-mpesaCallback/internal/logging"
	"github.com/henriod/featherweight-mpesaCallback/internal/metrics"
	"github.com/henriod/featherweight-mpesaCallback/internal/receipt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file:", err)
	}

	cfg := config.MustLoadConfig(".")

	logger := logging.GetLogger(cfg.Logs)
	slog.SetDefault(logger)

	metrics.Setup(cfg.Metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.GetClient(ctx, db.GetConnStr(cfg.Redis))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	repo := db.NewReceiptRepository(client)
	processor := receipt.NewProcessor(repo, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(logger, client, processor, cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger.Info("Shutting down http server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down http server", "error", err)
		}
	}()

	logger.Info("Starting http server", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
