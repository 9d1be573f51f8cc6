package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

type ScanJobRepository struct {
	db *sql.DB
}

func NewScanJobRepository(db *sql.DB) *ScanJobRepository {
	return &ScanJobRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ScanJobRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026030101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS scan_jobs (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	root_path TEXT NOT NULL,
	status TEXT NOT NULL,
	documents_found INTEGER NOT NULL DEFAULT 0,
	documents_processed INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	created_by TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scan_jobs_tenant_created ON scan_jobs(tenant_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ScanJobRepository) Create(ctx context.Context, job *domain.ScanJob) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO scan_jobs (
	id, tenant_id, root_path, status, documents_found, documents_processed, error_message, started_at, completed_at, created_at, created_by
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		job.ID, job.TenantID, job.RootPath, string(job.Status), job.DocumentsFound, job.DocumentsProcessed,
		job.ErrorMessage, job.StartedAt, job.CompletedAt, job.CreatedAt, job.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert scan job: %w", err)
	}
	return nil
}

const scanJobColumns = `id, tenant_id, root_path, status, documents_found, documents_processed, error_message, started_at, completed_at, created_at, created_by`

func (r *ScanJobRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.ScanJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+scanJobColumns+`
FROM scan_jobs
WHERE id = $1 AND tenant_id = $2
`, id, tenantID)

	job, err := scanScanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrScanJobNotFound, "get scan job", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan scan job: %w", err)
	}
	return job, nil
}

func (r *ScanJobRepository) List(ctx context.Context, tenantID string) ([]domain.ScanJob, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+scanJobColumns+`
FROM scan_jobs
WHERE tenant_id = $1
ORDER BY created_at DESC
`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list scan jobs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ScanJob, 0)
	for rows.Next() {
		job, err := scanScanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scan job row: %w", err)
		}
		out = append(out, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan jobs: %w", err)
	}
	return out, nil
}

func (r *ScanJobRepository) MarkRunning(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE scan_jobs
SET status = $2, started_at = $3
WHERE id = $1 AND status = $4
`, id, string(domain.ScanRunning), time.Now().UTC(), string(domain.ScanPending))
	if err != nil {
		return fmt.Errorf("mark scan running: %w", err)
	}
	return requireScanJobRow(res, id)
}

func (r *ScanJobRepository) UpdateProgress(ctx context.Context, id string, found, processed int) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE scan_jobs
SET documents_found = $2, documents_processed = $3
WHERE id = $1 AND status = $4
`, id, found, processed, string(domain.ScanRunning))
	if err != nil {
		return fmt.Errorf("update scan progress: %w", err)
	}
	return nil
}

func (r *ScanJobRepository) MarkCompleted(ctx context.Context, id string, found int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE scan_jobs
SET status = $2, documents_found = $3, documents_processed = $3, completed_at = $4
WHERE id = $1 AND status NOT IN ($5, $6)
`, id, string(domain.ScanCompleted), found, time.Now().UTC(),
		string(domain.ScanCompleted), string(domain.ScanFailed))
	if err != nil {
		return fmt.Errorf("mark scan completed: %w", err)
	}
	return requireScanJobRow(res, id)
}

func (r *ScanJobRepository) MarkFailed(ctx context.Context, id string, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE scan_jobs
SET status = $2, error_message = $3, completed_at = $4
WHERE id = $1 AND status NOT IN ($5, $6)
`, id, string(domain.ScanFailed), errMessage, time.Now().UTC(),
		string(domain.ScanCompleted), string(domain.ScanFailed))
	if err != nil {
		return fmt.Errorf("mark scan failed: %w", err)
	}
	return requireScanJobRow(res, id)
}

// requireScanJobRow turns a zero-row update into a typed not-found:
// either the id is wrong or a terminal-status guard refused the write.
func requireScanJobRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrScanJobNotFound, "update scan job", fmt.Errorf("id %s matched no updatable row", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScanJob(row rowScanner) (*domain.ScanJob, error) {
	var job domain.ScanJob
	var status string
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&job.ID, &job.TenantID, &job.RootPath, &status, &job.DocumentsFound, &job.DocumentsProcessed,
		&job.ErrorMessage, &startedAt, &completedAt, &job.CreatedAt, &job.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	job.Status = domain.ScanStatus(status)
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return &job, nil
}
