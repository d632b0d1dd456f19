package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/viacard/jornada-analytics/internal/config"
	"github.com/viacard/jornada-analytics/internal/httpx"
	"github.com/viacard/jornada-analytics/internal/ingest"
	"github.com/viacard/jornada-analytics/internal/metrics"
	"github.com/viacard/jornada-analytics/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	prom := metrics.NewRegistry()
	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewMemoryStore()
	etl := ingest.NewETL(cl, st, logger, cfg, prom)

	r := httpx.NewRouter(logger, cfg, st, etl, prom)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
