package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/paulgagnon1969/nexus-enterprise-sub006/internal/adapters/http"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/bootstrap"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/config"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/observability/logging"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/observability/metrics"
)

const serviceName = "api"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	router := httpadapter.NewRouter(
		app.ScanUC,
		app.IngestUC,
		app.StagingUC,
		app.ConvertUC,
		app.PublishUC,
		httpMetrics,
		serviceName,
		logger,
	)

	mux := http.NewServeMux()
	mux.Handle("/", router.Handler())
	mux.Handle("GET /metrics", httpMetrics.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", "error", err)
	}
}
