package usecase

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/classify"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/ports"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/filetype"
)

type UploadUseCase struct {
	docs    ports.DocumentRepository
	storage ports.ObjectStorage
	now     func() time.Time
}

func NewUploadUseCase(docs ports.DocumentRepository, storage ports.ObjectStorage) *UploadUseCase {
	return &UploadUseCase{
		docs:    docs,
		storage: storage,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Upload stores the file bytes under a tenant-scoped key and stages a
// single active record, classified immediately from its filename.
func (uc *UploadUseCase) Upload(
	ctx context.Context,
	actor domain.Actor,
	filename, mimeType string,
	body io.Reader,
	meta domain.UploadMetadata,
) (*domain.StagedDocument, error) {
	ext := filetype.Ext(filename)
	if !filetype.IsDocument(ext) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload",
			fmt.Errorf("extension %q is not an accepted document format", ext))
	}
	if mimeType == "" {
		mimeType = filetype.MimeOf(ext)
	}

	now := uc.now()
	// Timestamp prefix avoids collisions; sanitizing blocks path
	// traversal through hostile filenames.
	storageKey := path.Join(actor.TenantID, "uploads",
		fmt.Sprintf("%d-%s", now.UnixMilli(), sanitizeFilename(filename)))

	written, err := uc.storage.Save(ctx, storageKey, body)
	if err != nil {
		return nil, fmt.Errorf("save uploaded file: %w", err)
	}

	doc := &domain.StagedDocument{
		ID:                 uuid.NewString(),
		TenantID:           actor.TenantID,
		FileName:           filename,
		FilePath:           storageKey,
		Breadcrumb:         []string{filename},
		FileType:           ext,
		FileSize:           uint64(written),
		MimeType:           mimeType,
		Status:             domain.StatusActive,
		Classification:     classify.ByFilename(filename),
		ConversionStatus:   domain.ConversionPending,
		DisplayTitle:       meta.DisplayTitle,
		DisplayDescription: meta.DisplayDescription,
		Category:           meta.Category,
		Subcategory:        meta.Subcategory,
		Tags:               domain.NormalizeTags(meta.Tags),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create staged document: %w", err)
	}
	return doc, nil
}

// sanitizeFilename keeps letters, digits, dots and dashes; everything
// else collapses to a dash.
func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-':
			return r
		default:
			return '-'
		}
	}, base)
	base = strings.Trim(base, ".")
	if base == "" {
		return "document.bin"
	}
	return base
}
