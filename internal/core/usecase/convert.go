package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/classify"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/ports"
)

type ConvertUseCase struct {
	docs      ports.DocumentRepository
	source    ports.SourceReader
	storage   ports.ObjectStorage
	converter ports.FormatConverter
	queue     ports.JobQueue
	logger    *slog.Logger
}

func NewConvertUseCase(
	docs ports.DocumentRepository,
	source ports.SourceReader,
	storage ports.ObjectStorage,
	converter ports.FormatConverter,
	queue ports.JobQueue,
	logger *slog.Logger,
) *ConvertUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConvertUseCase{
		docs:      docs,
		source:    source,
		storage:   storage,
		converter: converter,
		queue:     queue,
		logger:    logger,
	}
}

// RequestConversion marks the document pending and enqueues it for the
// worker. Callers do not wait for the conversion itself.
func (uc *ConvertUseCase) RequestConversion(ctx context.Context, actor domain.Actor, documentID string) error {
	doc, err := uc.docs.GetByID(ctx, actor.TenantID, documentID)
	if err != nil {
		return err
	}
	if err := uc.docs.SetConversionStatus(ctx, doc.ID, domain.ConversionPending, ""); err != nil {
		return fmt.Errorf("reset conversion status: %w", err)
	}
	if err := uc.queue.PublishConversionRequested(ctx, doc.TenantID, doc.ID); err != nil {
		return fmt.Errorf("enqueue conversion: %w", err)
	}
	return nil
}

// ConvertByID runs one conversion pass and always records the outcome
// on the document: completed with stored HTML, skipped for formats the
// pipeline will never support, or failed with the error message. It is
// the worker-side endpoint of the fire-and-forget boundary.
func (uc *ConvertUseCase) ConvertByID(ctx context.Context, tenantID, documentID string) error {
	doc, err := uc.docs.GetByID(ctx, tenantID, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	raw, err := uc.readSource(ctx, doc)
	if err != nil {
		return uc.markFailed(ctx, doc.ID, fmt.Errorf("read source file: %w", err))
	}

	result, err := uc.converter.Convert(doc.FileType, raw)
	if domain.IsKind(err, domain.ErrUnsupportedFormat) {
		// Deliberate skip, not a failure: this format will never
		// convert and retrying is pointless.
		if setErr := uc.docs.SetConversionStatus(ctx, doc.ID, domain.ConversionSkipped, err.Error()); setErr != nil {
			return fmt.Errorf("mark conversion skipped: %w", setErr)
		}
		return nil
	}
	if err != nil {
		return uc.markFailed(ctx, doc.ID, err)
	}

	if err := uc.docs.SaveConversionResult(ctx, doc.ID, result.HTML); err != nil {
		return fmt.Errorf("save conversion result: %w", err)
	}

	uc.reclassify(ctx, doc, result.PlainText)
	return nil
}

// reclassify runs the content classifier over the extracted text and
// stores the result only when it is strictly more confident than the
// guess already on the record.
func (uc *ConvertUseCase) reclassify(ctx context.Context, doc *domain.StagedDocument, text string) {
	candidate := classify.ByContent(text)
	winner := classify.Apply(doc.Classification, candidate)
	if winner == doc.Classification {
		return
	}
	if err := uc.docs.SaveClassification(ctx, doc.ID, winner); err != nil {
		// Conversion already succeeded; a lost upgrade is recoverable
		// on the next pass.
		uc.logger.Warn("save upgraded classification", "document_id", doc.ID, "error", err)
	}
}

func (uc *ConvertUseCase) readSource(ctx context.Context, doc *domain.StagedDocument) ([]byte, error) {
	// Scanned documents sit in the source tree at an absolute path;
	// uploads live in object storage under their storage key.
	if doc.ScanJobID != nil {
		return uc.source.ReadFile(ctx, doc.FilePath)
	}
	reader, err := uc.storage.Open(ctx, doc.FilePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (uc *ConvertUseCase) markFailed(ctx context.Context, documentID string, convErr error) error {
	if setErr := uc.docs.SetConversionStatus(ctx, documentID, domain.ConversionFailed, convErr.Error()); setErr != nil {
		return fmt.Errorf("%w; mark conversion failed: %v", convErr, setErr)
	}
	return convErr
}
