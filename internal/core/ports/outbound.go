package ports

import (
	"context"
	"io"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

// ScanJobRepository persists scan-job state. The Mark* methods refuse
// to move a job out of a terminal status.
type ScanJobRepository interface {
	Create(ctx context.Context, job *domain.ScanJob) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.ScanJob, error)
	List(ctx context.Context, tenantID string) ([]domain.ScanJob, error)
	MarkRunning(ctx context.Context, id string) error
	UpdateProgress(ctx context.Context, id string, found, processed int) error
	MarkCompleted(ctx context.Context, id string, found int) error
	MarkFailed(ctx context.Context, id string, errMessage string) error
}

// DocumentRepository persists staged-document state. All read and
// mutation paths except the worker-side conversion writes are tenant
// scoped.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.StagedDocument) error
	// BulkCreate inserts a batch, silently skipping rows whose natural
	// key (tenant, path) already exists so re-scans never duplicate.
	// Returns the number actually inserted.
	BulkCreate(ctx context.Context, docs []domain.StagedDocument) (int, error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.StagedDocument, error)
	List(ctx context.Context, tenantID string, filter domain.DocumentFilter) ([]domain.StagedDocument, error)

	// SaveDetails writes the editable detail and revision fields,
	// guarded by the revision number the edit was based on. A stale
	// guard reports domain.ErrRevisionConflict.
	SaveDetails(ctx context.Context, doc *domain.StagedDocument, expectedRevision int) error
	// BulkUpdateStatus moves the given ids to status, skipping ids
	// outside the tenant or already in a conflicting state. Returns the
	// number actually changed.
	BulkUpdateStatus(ctx context.Context, tenantID string, ids []string, status domain.DocumentStatus, userID string) (int, error)

	SaveClassification(ctx context.Context, id string, cls domain.Classification) error
	SetConversionStatus(ctx context.Context, id string, status domain.ConversionStatus, convError string) error
	SaveConversionResult(ctx context.Context, id string, html string) error

	// MarkPublished moves an active document to published, stamps the
	// publish pair and resets conversion status to pending. Reports
	// domain.ErrDocumentNotFound when no active row matched.
	MarkPublished(ctx context.Context, tenantID, id, userID string) error
	// MarkUnpublished moves a published document back to active and
	// nulls the publish metadata.
	MarkUnpublished(ctx context.Context, tenantID, id string) error
	PublishedCategoryCounts(ctx context.Context, tenantID string) ([]domain.CategoryCount, error)
	PublishedTagCounts(ctx context.Context, tenantID string) ([]domain.CategoryCount, error)
}

// ObjectStorage stores uploaded document bytes outside the scanned
// source tree, which the pipeline never writes into.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// SourceReader reads discovered files back from the scanned tree or
// the upload storage area for conversion.
type SourceReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// JobQueue carries scan and conversion work from the api process to
// the worker. Handlers own their failure handling: a handler error is
// recorded on the owning record, never redelivered into a crash loop.
type JobQueue interface {
	PublishScanRequested(ctx context.Context, tenantID, jobID string) error
	PublishConversionRequested(ctx context.Context, tenantID, documentID string) error
	SubscribeScanRequested(ctx context.Context, handler func(context.Context, string, string) error) error
	SubscribeConversionRequested(ctx context.Context, handler func(context.Context, string, string) error) error
}

// TreeWalker discovers candidate documents under a scan root.
type TreeWalker interface {
	ValidateRoot(root string) error
	Walk(root string) ([]domain.FileDescriptor, error)
}

// FormatConverter renders raw document bytes as normalized HTML plus
// extracted plain text, dispatching on file extension.
type FormatConverter interface {
	Convert(fileType string, raw []byte) (domain.ConversionResult, error)
}
