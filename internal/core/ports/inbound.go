package ports

import (
	"context"
	"io"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

// ScanService owns the scan-job lifecycle. CreateScanJob returns a
// pending job immediately; callers poll GetScanJob for progress.
type ScanService interface {
	CreateScanJob(ctx context.Context, actor domain.Actor, rootPath string) (*domain.ScanJob, error)
	GetScanJob(ctx context.Context, actor domain.Actor, id string) (*domain.ScanJob, error)
	ListScanJobs(ctx context.Context, actor domain.Actor) ([]domain.ScanJob, error)
	// RunScan executes a previously created job; invoked by the worker.
	RunScan(ctx context.Context, tenantID, jobID string) error
}

// DocumentIngestor accepts direct uploads into the staging store.
type DocumentIngestor interface {
	Upload(ctx context.Context, actor domain.Actor, filename, mimeType string, body io.Reader, meta domain.UploadMetadata) (*domain.StagedDocument, error)
}

// DocumentConversionService converts a staged document to HTML and
// records the outcome on the record; invoked by the worker and by the
// explicit convert endpoint.
type DocumentConversionService interface {
	ConvertByID(ctx context.Context, tenantID, documentID string) error
	// RequestConversion marks the document pending and enqueues it.
	RequestConversion(ctx context.Context, actor domain.Actor, documentID string) error
}

// StagingService manages staged-document records between discovery and
// publication.
type StagingService interface {
	List(ctx context.Context, actor domain.Actor, filter domain.DocumentFilter) ([]domain.StagedDocument, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.StagedDocument, error)
	Update(ctx context.Context, actor domain.Actor, id string, update domain.DocumentUpdate) (*domain.StagedDocument, error)
	BulkUpdateStatus(ctx context.Context, actor domain.Actor, ids []string, status domain.DocumentStatus) (int, error)
}

// PublicationService promotes staged documents to published and back.
type PublicationService interface {
	Publish(ctx context.Context, actor domain.Actor, id string) (*domain.StagedDocument, error)
	Unpublish(ctx context.Context, actor domain.Actor, id string) (*domain.StagedDocument, error)
	BulkPublish(ctx context.Context, actor domain.Actor, ids []string) (int, error)
	ListPublished(ctx context.Context, actor domain.Actor, filter domain.DocumentFilter) ([]domain.StagedDocument, error)
	PublishedCategories(ctx context.Context, actor domain.Actor) ([]domain.CategoryCount, error)
	PublishedTags(ctx context.Context, actor domain.Actor) ([]domain.CategoryCount, error)
}
