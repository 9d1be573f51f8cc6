package domain

import "time"

type ScanStatus string

const (
	ScanPending   ScanStatus = "pending"
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

// Terminal reports whether a scan status may never change again.
func (s ScanStatus) Terminal() bool {
	return s == ScanCompleted || s == ScanFailed
}

// ScanJob is one filesystem-discovery run. Status transitions are
// monotonic: pending -> running -> completed|failed, with CompletedAt
// stamped exactly once at the terminal transition.
type ScanJob struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	RootPath string `json:"root_path"`

	Status             ScanStatus `json:"status"`
	DocumentsFound     int        `json:"documents_found"`
	DocumentsProcessed int        `json:"documents_processed"`
	ErrorMessage       string     `json:"error_message,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CreatedBy   string     `json:"created_by"`
}
