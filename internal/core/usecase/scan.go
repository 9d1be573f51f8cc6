package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/classify"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/ports"
)

// DefaultScanBatchSize bounds transaction size and memory during bulk
// staging inserts.
const DefaultScanBatchSize = 500

type ScanUseCase struct {
	jobs      ports.ScanJobRepository
	docs      ports.DocumentRepository
	walker    ports.TreeWalker
	queue     ports.JobQueue
	logger    *slog.Logger
	batchSize int
}

func NewScanUseCase(
	jobs ports.ScanJobRepository,
	docs ports.DocumentRepository,
	walker ports.TreeWalker,
	queue ports.JobQueue,
	logger *slog.Logger,
	batchSize int,
) *ScanUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultScanBatchSize
	}
	return &ScanUseCase{
		jobs:      jobs,
		docs:      docs,
		walker:    walker,
		queue:     queue,
		logger:    logger,
		batchSize: batchSize,
	}
}

// CreateScanJob validates the root path, records a pending job and
// enqueues the scan. The caller gets the pending record immediately
// and polls for progress.
func (uc *ScanUseCase) CreateScanJob(ctx context.Context, actor domain.Actor, rootPath string) (*domain.ScanJob, error) {
	if err := uc.walker.ValidateRoot(rootPath); err != nil {
		return nil, err
	}

	job := &domain.ScanJob{
		ID:        uuid.NewString(),
		TenantID:  actor.TenantID,
		RootPath:  rootPath,
		Status:    domain.ScanPending,
		CreatedAt: time.Now().UTC(),
		CreatedBy: actor.UserID,
	}
	if err := uc.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create scan job: %w", err)
	}

	if err := uc.queue.PublishScanRequested(ctx, job.TenantID, job.ID); err != nil {
		if failErr := uc.jobs.MarkFailed(ctx, job.ID, "scan could not be scheduled: "+err.Error()); failErr != nil {
			uc.logger.Error("mark unscheduled scan failed", "job_id", job.ID, "error", failErr)
		}
		return nil, fmt.Errorf("schedule scan: %w", err)
	}
	return job, nil
}

func (uc *ScanUseCase) GetScanJob(ctx context.Context, actor domain.Actor, id string) (*domain.ScanJob, error) {
	return uc.jobs.GetByID(ctx, actor.TenantID, id)
}

func (uc *ScanUseCase) ListScanJobs(ctx context.Context, actor domain.Actor) ([]domain.ScanJob, error) {
	return uc.jobs.List(ctx, actor.TenantID)
}

// RunScan executes one scan job end to end. Traversal errors inside a
// directory are absorbed by the walker; any error reaching this level
// is terminal for the job and is written into its record.
func (uc *ScanUseCase) RunScan(ctx context.Context, tenantID, jobID string) error {
	job, err := uc.jobs.GetByID(ctx, tenantID, jobID)
	if err != nil {
		return fmt.Errorf("load scan job: %w", err)
	}
	if job.Status.Terminal() {
		// Redelivered message for a finished job; terminal states
		// never regress.
		return nil
	}

	if err := uc.jobs.MarkRunning(ctx, job.ID); err != nil {
		return fmt.Errorf("mark scan running: %w", err)
	}

	if err := uc.runScan(ctx, job); err != nil {
		if failErr := uc.jobs.MarkFailed(ctx, job.ID, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark scan failed: %v", err, failErr)
		}
		return err
	}
	return nil
}

func (uc *ScanUseCase) runScan(ctx context.Context, job *domain.ScanJob) error {
	descriptors, err := uc.walker.Walk(job.RootPath)
	if err != nil {
		return fmt.Errorf("walk scan root: %w", err)
	}

	found := len(descriptors)
	processed := 0

	// Batches run strictly sequentially so progress is monotonic and
	// duplicate keys cannot race within one job.
	for start := 0; start < found; start += uc.batchSize {
		end := start + uc.batchSize
		if end > found {
			end = found
		}

		batch := make([]domain.StagedDocument, 0, end-start)
		for _, desc := range descriptors[start:end] {
			batch = append(batch, uc.stagedFromDescriptor(job, desc))
		}

		inserted, err := uc.docs.BulkCreate(ctx, batch)
		if err != nil {
			return fmt.Errorf("stage batch at offset %d: %w", start, err)
		}
		if skipped := len(batch) - inserted; skipped > 0 {
			uc.logger.Info("skipped already-staged documents", "job_id", job.ID, "skipped", skipped)
		}

		processed = end
		if err := uc.jobs.UpdateProgress(ctx, job.ID, found, processed); err != nil {
			return fmt.Errorf("update scan progress: %w", err)
		}
	}

	if err := uc.jobs.MarkCompleted(ctx, job.ID, found); err != nil {
		return fmt.Errorf("mark scan completed: %w", err)
	}
	uc.logger.Info("scan completed", "job_id", job.ID, "documents_found", found)
	return nil
}

func (uc *ScanUseCase) stagedFromDescriptor(job *domain.ScanJob, desc domain.FileDescriptor) domain.StagedDocument {
	now := time.Now().UTC()
	jobID := job.ID
	return domain.StagedDocument{
		ID:               uuid.NewString(),
		TenantID:         job.TenantID,
		ScanJobID:        &jobID,
		FileName:         desc.FileName,
		FilePath:         desc.FilePath,
		Breadcrumb:       desc.Breadcrumb,
		FileType:         desc.FileType,
		FileSize:         desc.FileSize,
		MimeType:         desc.MimeType,
		Status:           domain.StatusActive,
		Classification:   classify.ByFilename(desc.FileName),
		ConversionStatus: domain.ConversionPending,
		Tags:             []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
