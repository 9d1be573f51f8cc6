package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/ports"
)

type PublishUseCase struct {
	docs   ports.DocumentRepository
	queue  ports.JobQueue
	logger *slog.Logger
}

func NewPublishUseCase(docs ports.DocumentRepository, queue ports.JobQueue, logger *slog.Logger) *PublishUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishUseCase{docs: docs, queue: queue, logger: logger}
}

// Publish promotes an active document to published and fires a
// conversion without waiting on it: publish succeeds even if the
// conversion later fails, and the document converges to a terminal
// conversion status on its own.
func (uc *PublishUseCase) Publish(ctx context.Context, actor domain.Actor, id string) (*domain.StagedDocument, error) {
	doc, err := uc.docs.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	switch doc.Status {
	case domain.StatusPublished:
		return nil, domain.WrapError(domain.ErrAlreadyPublished, "publish", errors.New(id))
	case domain.StatusArchived:
		return nil, domain.WrapError(domain.ErrInvalidInput, "publish",
			fmt.Errorf("document %s is archived; unarchive it first", id))
	}

	if err := uc.docs.MarkPublished(ctx, actor.TenantID, doc.ID, actor.UserID); err != nil {
		return nil, fmt.Errorf("mark published: %w", err)
	}
	uc.requestConversion(ctx, actor.TenantID, doc.ID)

	return uc.docs.GetByID(ctx, actor.TenantID, doc.ID)
}

// Unpublish returns a published document to active and nulls its
// publish metadata. Conversion state is deliberately left as is.
func (uc *PublishUseCase) Unpublish(ctx context.Context, actor domain.Actor, id string) (*domain.StagedDocument, error) {
	doc, err := uc.docs.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.StatusPublished {
		return nil, domain.WrapError(domain.ErrNotPublished, "unpublish", errors.New(id))
	}

	if err := uc.docs.MarkUnpublished(ctx, actor.TenantID, doc.ID); err != nil {
		return nil, fmt.Errorf("mark unpublished: %w", err)
	}
	return uc.docs.GetByID(ctx, actor.TenantID, doc.ID)
}

// BulkPublish publishes every id it can and reports the count actually
// changed. Ids outside the tenant or not currently active are silently
// dropped; partial success is the norm, not an error.
func (uc *PublishUseCase) BulkPublish(ctx context.Context, actor domain.Actor, ids []string) (int, error) {
	published := 0
	for _, id := range ids {
		err := uc.docs.MarkPublished(ctx, actor.TenantID, id, actor.UserID)
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			continue
		}
		if err != nil {
			return published, fmt.Errorf("mark published %s: %w", id, err)
		}
		published++
		uc.requestConversion(ctx, actor.TenantID, id)
	}
	return published, nil
}

func (uc *PublishUseCase) ListPublished(ctx context.Context, actor domain.Actor, filter domain.DocumentFilter) ([]domain.StagedDocument, error) {
	filter.Status = domain.StatusPublished
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return uc.docs.List(ctx, actor.TenantID, filter)
}

func (uc *PublishUseCase) PublishedCategories(ctx context.Context, actor domain.Actor) ([]domain.CategoryCount, error) {
	return uc.docs.PublishedCategoryCounts(ctx, actor.TenantID)
}

func (uc *PublishUseCase) PublishedTags(ctx context.Context, actor domain.Actor) ([]domain.CategoryCount, error) {
	return uc.docs.PublishedTagCounts(ctx, actor.TenantID)
}

// requestConversion is fire-and-forget by contract: a queue hiccup
// must not unwind an otherwise successful publish.
func (uc *PublishUseCase) requestConversion(ctx context.Context, tenantID, documentID string) {
	if err := uc.queue.PublishConversionRequested(ctx, tenantID, documentID); err != nil {
		uc.logger.Warn("enqueue conversion after publish", "document_id", documentID, "error", err)
	}
}
