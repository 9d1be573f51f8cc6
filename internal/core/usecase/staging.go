package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/ports"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type StagingUseCase struct {
	docs ports.DocumentRepository
	now  func() time.Time
}

func NewStagingUseCase(docs ports.DocumentRepository) *StagingUseCase {
	return &StagingUseCase{
		docs: docs,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (uc *StagingUseCase) List(ctx context.Context, actor domain.Actor, filter domain.DocumentFilter) ([]domain.StagedDocument, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.docs.List(ctx, actor.TenantID, filter)
}

func (uc *StagingUseCase) Get(ctx context.Context, actor domain.Actor, id string) (*domain.StagedDocument, error) {
	return uc.docs.GetByID(ctx, actor.TenantID, id)
}

// Update applies a partial detail edit. Setting revision notes bumps
// the revision number and appends the superseded tuple to the history
// log first; the write is guarded by the revision the edit was based
// on so concurrent edits cannot silently interleave.
func (uc *StagingUseCase) Update(ctx context.Context, actor domain.Actor, id string, update domain.DocumentUpdate) (*domain.StagedDocument, error) {
	doc, err := uc.docs.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}

	expectedRevision := doc.RevisionNumber
	applyDocumentUpdate(doc, update, actor.UserID, uc.now())

	if err := uc.docs.SaveDetails(ctx, doc, expectedRevision); err != nil {
		return nil, fmt.Errorf("save document details: %w", err)
	}
	return doc, nil
}

// BulkUpdateStatus archives, unarchives or reactivates a set of
// documents. Ids outside the tenant are silently dropped; only the
// count actually changed is reported.
func (uc *StagingUseCase) BulkUpdateStatus(ctx context.Context, actor domain.Actor, ids []string, status domain.DocumentStatus) (int, error) {
	switch status {
	case domain.StatusActive, domain.StatusArchived:
	case domain.StatusPublished:
		return 0, domain.WrapError(domain.ErrInvalidInput, "bulk update status",
			fmt.Errorf("publishing goes through the publication workflow"))
	default:
		return 0, domain.WrapError(domain.ErrInvalidInput, "bulk update status",
			fmt.Errorf("unknown status %q", status))
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return uc.docs.BulkUpdateStatus(ctx, actor.TenantID, ids, status, actor.UserID)
}

// applyDocumentUpdate mutates doc in place with the non-nil fields of
// update. The revision history entry records who superseded the
// previous revision and when.
func applyDocumentUpdate(doc *domain.StagedDocument, update domain.DocumentUpdate, editor string, now time.Time) {
	if update.DisplayTitle != nil {
		doc.DisplayTitle = *update.DisplayTitle
	}
	if update.DisplayDescription != nil {
		doc.DisplayDescription = *update.DisplayDescription
	}
	if update.Category != nil {
		doc.Category = *update.Category
	}
	if update.Subcategory != nil {
		doc.Subcategory = *update.Subcategory
	}
	if update.Tags != nil {
		doc.Tags = domain.NormalizeTags(*update.Tags)
	}
	if update.OSHAReference != nil {
		doc.OSHAReference = *update.OSHAReference
	}
	if update.SortOrder != nil {
		doc.SortOrder = *update.SortOrder
	}
	if update.RevisionNotes != nil {
		// The pristine revision 0 carries no notes and is not worth
		// archiving; every later revision is.
		if doc.RevisionNumber > 0 || doc.RevisionNotes != "" {
			doc.RevisionHistory = append(doc.RevisionHistory, domain.RevisionEntry{
				RevisionNumber: doc.RevisionNumber,
				Notes:          doc.RevisionNotes,
				Date:           now,
				Editor:         editor,
			})
		}
		doc.RevisionNumber++
		doc.RevisionNotes = *update.RevisionNotes
	}
	doc.UpdatedAt = now
}
