package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/config"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/convert"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/ports"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/usecase"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/infrastructure/queue/nats"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/infrastructure/repository/postgres"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/infrastructure/resilience"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/infrastructure/storage/localfs"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/scanner"
)

// App holds the wired dependency graph shared by the api and worker
// binaries.
type App struct {
	Config config.Config

	Queue    ports.JobQueue
	ScanJobs ports.ScanJobRepository
	Docs     ports.DocumentRepository

	ScanUC    ports.ScanService
	IngestUC  ports.DocumentIngestor
	StagingUC ports.StagingService
	ConvertUC ports.DocumentConversionService
	PublishUC ports.PublicationService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	jobs := postgres.NewScanJobRepository(db)
	if err := jobs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure scan job schema: %w", err)
	}
	docs := postgres.NewDocumentRepository(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure document schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	source := localfs.NewSourceReader()

	executorCfg := resilience.DefaultConfig()
	executorCfg.RetryMaxAttempts = cfg.ResilienceRetryMaxAttempts
	executorCfg.BreakerEnabled = cfg.ResilienceBreakerEnabled
	executor := resilience.NewExecutorWithLogger(executorCfg, logger)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSScanSubject, cfg.NATSConvertSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	walker := scanner.NewWalker(logger)
	converter := convert.NewRegistry(logger)

	scanUC := usecase.NewScanUseCase(jobs, docs, walker, queue, logger, cfg.ScanBatchSize)
	ingestUC := usecase.NewUploadUseCase(docs, storage)
	stagingUC := usecase.NewStagingUseCase(docs)
	convertUC := usecase.NewConvertUseCase(docs, source, storage, converter, queue, logger)
	publishUC := usecase.NewPublishUseCase(docs, queue, logger)

	return &App{
		Config: cfg,

		Queue:    queue,
		ScanJobs: jobs,
		Docs:     docs,

		ScanUC:    scanUC,
		IngestUC:  ingestUC,
		StagingUC: stagingUC,
		ConvertUC: convertUC,
		PublishUC: publishUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
