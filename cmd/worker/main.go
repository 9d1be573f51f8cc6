package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/bootstrap"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/config"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/observability/logging"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/observability/metrics"
)

const (
	serviceName = "worker"

	scanTimeout       = 30 * time.Minute
	conversionTimeout = 5 * time.Minute
)

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

	workerMetrics := metrics.NewWorkerMetrics(serviceName)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", workerMetrics.Handler())
	metricsMux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsServer := &http.Server{
		Addr:        ":" + cfg.WorkerMetricsPort,
		Handler:     metricsMux,
		ReadTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		logger.Info("worker subscribed", "subject", cfg.NATSScanSubject)
		return app.Queue.SubscribeScanRequested(groupCtx, func(handlerCtx context.Context, tenantID, jobID string) error {
			scanCtx, cancel := context.WithTimeout(handlerCtx, scanTimeout)
			defer cancel()

			workerMetrics.StartJob()
			start := time.Now()
			runErr := app.ScanUC.RunScan(scanCtx, tenantID, jobID)

			found := 0
			if job, err := app.ScanJobs.GetByID(scanCtx, tenantID, jobID); err == nil {
				found = job.DocumentsFound
			}
			workerMetrics.FinishScan(serviceName, time.Since(start), found, runErr)
			return runErr
		})
	})

	group.Go(func() error {
		logger.Info("worker subscribed", "subject", cfg.NATSConvertSubject)
		return app.Queue.SubscribeConversionRequested(groupCtx, func(handlerCtx context.Context, tenantID, documentID string) error {
			convertCtx, cancel := context.WithTimeout(handlerCtx, conversionTimeout)
			defer cancel()

			workerMetrics.StartJob()
			start := time.Now()
			runErr := app.ConvertUC.ConvertByID(convertCtx, tenantID, documentID)
			workerMetrics.FinishConversion(serviceName, time.Since(start), runErr)

			if runErr == nil {
				if doc, err := app.Docs.GetByID(convertCtx, tenantID, documentID); err == nil {
					workerMetrics.RecordClassification(serviceName, string(doc.Classification.Type))
				}
			}
			return runErr
		})
	})

	if err := group.Wait(); err != nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}
