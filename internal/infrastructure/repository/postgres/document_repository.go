package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026030102)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS staged_documents (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	scan_job_id TEXT,
	file_name TEXT NOT NULL,
	file_path TEXT NOT NULL,
	breadcrumb JSONB NOT NULL DEFAULT '[]'::jsonb,
	file_type TEXT NOT NULL,
	file_size BIGINT NOT NULL DEFAULT 0,
	mime_type TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	doc_type TEXT NOT NULL,
	doc_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	doc_reason TEXT NOT NULL DEFAULT '',
	html_content TEXT NOT NULL DEFAULT '',
	conversion_status TEXT NOT NULL,
	conversion_error TEXT NOT NULL DEFAULT '',
	converted_at TIMESTAMPTZ,
	display_title TEXT NOT NULL DEFAULT '',
	display_description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	subcategory TEXT NOT NULL DEFAULT '',
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	osha_reference TEXT NOT NULL DEFAULT '',
	sort_order INTEGER NOT NULL DEFAULT 0,
	revision_number INTEGER NOT NULL DEFAULT 0,
	revision_notes TEXT NOT NULL DEFAULT '',
	revision_history JSONB NOT NULL DEFAULT '[]'::jsonb,
	archived_at TIMESTAMPTZ,
	archived_by_user_id TEXT NOT NULL DEFAULT '',
	published_at TIMESTAMPTZ,
	published_by_user_id TEXT NOT NULL DEFAULT '',
	imported_to_type TEXT NOT NULL DEFAULT '',
	imported_to_category TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_staged_documents_tenant_path ON staged_documents(tenant_id, file_path);
CREATE INDEX IF NOT EXISTS idx_staged_documents_tenant_status ON staged_documents(tenant_id, status);
CREATE INDEX IF NOT EXISTS idx_staged_documents_scan_job ON staged_documents(scan_job_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const documentColumns = `id, tenant_id, scan_job_id, file_name, file_path, breadcrumb, file_type, file_size, mime_type,
	status, doc_type, doc_score, doc_reason, html_content, conversion_status, conversion_error, converted_at,
	display_title, display_description, category, subcategory, tags, osha_reference, sort_order,
	revision_number, revision_notes, revision_history,
	archived_at, archived_by_user_id, published_at, published_by_user_id, imported_to_type, imported_to_category,
	created_at, updated_at`

const insertDocumentQuery = `
INSERT INTO staged_documents (` + documentColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35)`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.StagedDocument) error {
	args, err := documentInsertArgs(doc)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, insertDocumentQuery, args...); err != nil {
		return fmt.Errorf("insert staged document: %w", err)
	}
	return nil
}

// BulkCreate inserts a batch inside one transaction, counting rows the
// unique (tenant, path) index let through. Conflicting rows are
// skipped, not failed, so a re-scan over the same tree is idempotent.
func (r *DocumentRepository) BulkCreate(ctx context.Context, docs []domain.StagedDocument) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = insertDocumentQuery + `
ON CONFLICT (tenant_id, file_path) DO NOTHING`

	inserted := 0
	for i := range docs {
		args, err := documentInsertArgs(&docs[i])
		if err != nil {
			return inserted, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("bulk insert staged document %s: %w", docs[i].FilePath, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk insert tx: %w", err)
	}
	return inserted, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.StagedDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM staged_documents
WHERE id = $1 AND tenant_id = $2
`, id, tenantID)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan staged document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, tenantID string, filter domain.DocumentFilter) ([]domain.StagedDocument, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + documentColumns + "\nFROM staged_documents\nWHERE tenant_id = $1")
	args := []any{tenantID}

	addClause := func(clause string, value any) {
		args = append(args, value)
		fmt.Fprintf(&sb, " AND %s $%d", clause, len(args))
	}

	if filter.Status != "" {
		addClause("status =", string(filter.Status))
	}
	if filter.ScanJobID != "" {
		addClause("scan_job_id =", filter.ScanJobID)
	}
	if filter.TypeGuess != "" {
		addClause("doc_type =", string(filter.TypeGuess))
	}
	if filter.Category != "" {
		addClause("category =", filter.Category)
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		fmt.Fprintf(&sb, " AND (file_name ILIKE '%%' || $%[1]d || '%%' OR display_title ILIKE '%%' || $%[1]d || '%%')", len(args))
	}

	sb.WriteString(" ORDER BY sort_order ASC, created_at DESC, id ASC")
	args = append(args, filter.Limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	fmt.Fprintf(&sb, " OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list staged documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.StagedDocument, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staged document row: %w", err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staged documents: %w", err)
	}
	return out, nil
}

func (r *DocumentRepository) SaveDetails(ctx context.Context, doc *domain.StagedDocument, expectedRevision int) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	historyJSON, err := json.Marshal(doc.RevisionHistory)
	if err != nil {
		return fmt.Errorf("marshal revision history: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE staged_documents
SET display_title = $4, display_description = $5, category = $6, subcategory = $7, tags = $8,
	osha_reference = $9, sort_order = $10,
	revision_number = $11, revision_notes = $12, revision_history = $13,
	updated_at = $14
WHERE id = $1 AND tenant_id = $2 AND revision_number = $3
`,
		doc.ID, doc.TenantID, expectedRevision,
		doc.DisplayTitle, doc.DisplayDescription, doc.Category, doc.Subcategory, tagsJSON,
		doc.OSHAReference, doc.SortOrder,
		doc.RevisionNumber, doc.RevisionNotes, historyJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save document details: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Either the id is gone or someone committed revision
		// expectedRevision+1 first.
		if _, getErr := r.GetByID(ctx, doc.TenantID, doc.ID); getErr != nil {
			return getErr
		}
		return domain.WrapError(domain.ErrRevisionConflict, "save document details",
			fmt.Errorf("revision %d is no longer current for %s", expectedRevision, doc.ID))
	}
	return nil
}

func (r *DocumentRepository) BulkUpdateStatus(ctx context.Context, tenantID string, ids []string, status domain.DocumentStatus, userID string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	args := []any{tenantID, string(status), now}
	// Published rows never move through this path; archive bookkeeping
	// follows the target status.
	set := "status = $2, updated_at = $3"
	switch status {
	case domain.StatusArchived:
		args = append(args, now, userID)
		set += ", archived_at = $4, archived_by_user_id = $5"
	case domain.StatusActive:
		set += ", archived_at = NULL, archived_by_user_id = ''"
	}

	placeholders := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf(`
UPDATE staged_documents
SET %s
WHERE tenant_id = $1 AND status <> '%s' AND id IN (%s)
`, set, domain.StatusPublished, strings.Join(placeholders, ","))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *DocumentRepository) SaveClassification(ctx context.Context, id string, cls domain.Classification) error {
	if !cls.Type.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "save classification", fmt.Errorf("unknown document type %q", cls.Type))
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE staged_documents
SET doc_type = $2, doc_score = $3, doc_reason = $4, updated_at = $5
WHERE id = $1
`, id, string(cls.Type), cls.Score, cls.Reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return requireDocumentRow(res, id)
}

func (r *DocumentRepository) SetConversionStatus(ctx context.Context, id string, status domain.ConversionStatus, convError string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE staged_documents
SET conversion_status = $2, conversion_error = $3, updated_at = $4
WHERE id = $1
`, id, string(status), convError, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set conversion status: %w", err)
	}
	return requireDocumentRow(res, id)
}

func (r *DocumentRepository) SaveConversionResult(ctx context.Context, id string, html string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE staged_documents
SET html_content = $2, conversion_status = $3, conversion_error = '', converted_at = $4, updated_at = $4
WHERE id = $1
`, id, html, string(domain.ConversionCompleted), now)
	if err != nil {
		return fmt.Errorf("save conversion result: %w", err)
	}
	return requireDocumentRow(res, id)
}

func (r *DocumentRepository) MarkPublished(ctx context.Context, tenantID, id, userID string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE staged_documents
SET status = $4, published_at = $5, published_by_user_id = $6,
	conversion_status = $7, conversion_error = '', updated_at = $5
WHERE id = $1 AND tenant_id = $2 AND status = $3
`, id, tenantID, string(domain.StatusActive),
		string(domain.StatusPublished), now, userID, string(domain.ConversionPending))
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return requireDocumentRow(res, id)
}

func (r *DocumentRepository) MarkUnpublished(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE staged_documents
SET status = $4, published_at = NULL, published_by_user_id = '', updated_at = $5
WHERE id = $1 AND tenant_id = $2 AND status = $3
`, id, tenantID, string(domain.StatusPublished), string(domain.StatusActive), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark unpublished: %w", err)
	}
	return requireDocumentRow(res, id)
}

func (r *DocumentRepository) PublishedCategoryCounts(ctx context.Context, tenantID string) ([]domain.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT category, COUNT(*)
FROM staged_documents
WHERE tenant_id = $1 AND status = $2 AND category <> ''
GROUP BY category
ORDER BY COUNT(*) DESC, category ASC
`, tenantID, string(domain.StatusPublished))
	if err != nil {
		return nil, fmt.Errorf("published category counts: %w", err)
	}
	defer rows.Close()
	return scanCounts(rows)
}

func (r *DocumentRepository) PublishedTagCounts(ctx context.Context, tenantID string) ([]domain.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT tag, COUNT(*)
FROM staged_documents, jsonb_array_elements_text(tags) AS tag
WHERE tenant_id = $1 AND status = $2
GROUP BY tag
ORDER BY COUNT(*) DESC, tag ASC
`, tenantID, string(domain.StatusPublished))
	if err != nil {
		return nil, fmt.Errorf("published tag counts: %w", err)
	}
	defer rows.Close()
	return scanCounts(rows)
}

func scanCounts(rows *sql.Rows) ([]domain.CategoryCount, error) {
	out := make([]domain.CategoryCount, 0)
	for rows.Next() {
		var cc domain.CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		out = append(out, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate count rows: %w", err)
	}
	return out, nil
}

func requireDocumentRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document", fmt.Errorf("id %s matched no updatable row", id))
	}
	return nil
}

func documentInsertArgs(doc *domain.StagedDocument) ([]any, error) {
	breadcrumbJSON, err := json.Marshal(doc.Breadcrumb)
	if err != nil {
		return nil, fmt.Errorf("marshal breadcrumb: %w", err)
	}
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	historyJSON, err := json.Marshal(doc.RevisionHistory)
	if err != nil {
		return nil, fmt.Errorf("marshal revision history: %w", err)
	}

	var scanJobID sql.NullString
	if doc.ScanJobID != nil {
		scanJobID = sql.NullString{String: *doc.ScanJobID, Valid: true}
	}

	return []any{
		doc.ID, doc.TenantID, scanJobID, doc.FileName, doc.FilePath, breadcrumbJSON, doc.FileType, doc.FileSize, doc.MimeType,
		string(doc.Status), string(doc.Classification.Type), doc.Classification.Score, doc.Classification.Reason,
		doc.HTMLContent, string(doc.ConversionStatus), doc.ConversionError, doc.ConvertedAt,
		doc.DisplayTitle, doc.DisplayDescription, doc.Category, doc.Subcategory, tagsJSON, doc.OSHAReference, doc.SortOrder,
		doc.RevisionNumber, doc.RevisionNotes, historyJSON,
		doc.ArchivedAt, doc.ArchivedByUserID, doc.PublishedAt, doc.PublishedByUserID, doc.ImportedToType, doc.ImportedToCategory,
		doc.CreatedAt, doc.UpdatedAt,
	}, nil
}

func scanDocument(row rowScanner) (*domain.StagedDocument, error) {
	var doc domain.StagedDocument
	var scanJobID sql.NullString
	var breadcrumbRaw, tagsRaw, historyRaw []byte
	var status, docType, conversionStatus string
	var convertedAt, archivedAt, publishedAt sql.NullTime

	err := row.Scan(
		&doc.ID, &doc.TenantID, &scanJobID, &doc.FileName, &doc.FilePath, &breadcrumbRaw, &doc.FileType, &doc.FileSize, &doc.MimeType,
		&status, &docType, &doc.Classification.Score, &doc.Classification.Reason,
		&doc.HTMLContent, &conversionStatus, &doc.ConversionError, &convertedAt,
		&doc.DisplayTitle, &doc.DisplayDescription, &doc.Category, &doc.Subcategory, &tagsRaw, &doc.OSHAReference, &doc.SortOrder,
		&doc.RevisionNumber, &doc.RevisionNotes, &historyRaw,
		&archivedAt, &doc.ArchivedByUserID, &publishedAt, &doc.PublishedByUserID, &doc.ImportedToType, &doc.ImportedToCategory,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if scanJobID.Valid {
		s := scanJobID.String
		doc.ScanJobID = &s
	}
	if err := json.Unmarshal(breadcrumbRaw, &doc.Breadcrumb); err != nil {
		return nil, fmt.Errorf("unmarshal breadcrumb: %w", err)
	}
	if err := json.Unmarshal(tagsRaw, &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal(historyRaw, &doc.RevisionHistory); err != nil {
		return nil, fmt.Errorf("unmarshal revision history: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	doc.Classification.Type = domain.DocumentType(docType)
	doc.ConversionStatus = domain.ConversionStatus(conversionStatus)
	if convertedAt.Valid {
		t := convertedAt.Time
		doc.ConvertedAt = &t
	}
	if archivedAt.Valid {
		t := archivedAt.Time
		doc.ArchivedAt = &t
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		doc.PublishedAt = &t
	}
	return &doc, nil
}
