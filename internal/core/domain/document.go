package domain

import "time"

type DocumentStatus string

const (
	StatusActive    DocumentStatus = "active"
	StatusArchived  DocumentStatus = "archived"
	StatusPublished DocumentStatus = "published"
)

type ConversionStatus string

const (
	ConversionPending   ConversionStatus = "pending"
	ConversionCompleted ConversionStatus = "completed"
	ConversionFailed    ConversionStatus = "failed"
	ConversionSkipped   ConversionStatus = "skipped"
)

// StagedDocument is one discovered or uploaded file tracked through
// classification, conversion and publication.
type StagedDocument struct {
	ID        string  `json:"id"`
	TenantID  string  `json:"tenant_id"`
	ScanJobID *string `json:"scan_job_id,omitempty"`

	FileName   string   `json:"file_name"`
	FilePath   string   `json:"file_path"`
	Breadcrumb []string `json:"breadcrumb"`
	FileType   string   `json:"file_type"`
	FileSize   uint64   `json:"file_size"`
	MimeType   string   `json:"mime_type"`

	Status DocumentStatus `json:"status"`

	Classification Classification `json:"classification"`

	HTMLContent      string           `json:"html_content,omitempty"`
	ConversionStatus ConversionStatus `json:"conversion_status"`
	ConversionError  string           `json:"conversion_error,omitempty"`
	ConvertedAt      *time.Time       `json:"converted_at,omitempty"`

	DisplayTitle       string   `json:"display_title,omitempty"`
	DisplayDescription string   `json:"display_description,omitempty"`
	Category           string   `json:"category,omitempty"`
	Subcategory        string   `json:"subcategory,omitempty"`
	Tags               []string `json:"tags"`
	OSHAReference      string   `json:"osha_reference,omitempty"`
	SortOrder          int      `json:"sort_order"`

	RevisionNumber  int             `json:"revision_number"`
	RevisionNotes   string          `json:"revision_notes,omitempty"`
	RevisionHistory []RevisionEntry `json:"revision_history"`

	ArchivedAt       *time.Time `json:"archived_at,omitempty"`
	ArchivedByUserID string     `json:"archived_by_user_id,omitempty"`

	PublishedAt        *time.Time `json:"published_at,omitempty"`
	PublishedByUserID  string     `json:"published_by_user_id,omitempty"`
	ImportedToType     string     `json:"imported_to_type,omitempty"`
	ImportedToCategory string     `json:"imported_to_category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RevisionEntry is one superseded revision, appended to the history log
// before the current revision fields are overwritten. The log is
// append-only and never rewritten.
type RevisionEntry struct {
	RevisionNumber int       `json:"revision_number"`
	Notes          string    `json:"notes"`
	Date           time.Time `json:"date"`
	Editor         string    `json:"editor"`
}

// ConversionResult is the normalized output of a successful format
// conversion: renderable HTML plus the plain text used to reclassify
// the document.
type ConversionResult struct {
	HTML      string
	PlainText string
}

// FileDescriptor is one file reported by the tree walker. Breadcrumb
// holds the path segments relative to the scan root and is the portable
// display identity; FilePath is absolute and machine-local.
type FileDescriptor struct {
	FileName   string
	FilePath   string
	Breadcrumb []string
	FileType   string
	FileSize   uint64
	MimeType   string
}

// DocumentFilter narrows staged-document listings. Zero values mean no
// constraint; tenant scoping is always applied on top of it.
type DocumentFilter struct {
	Status    DocumentStatus
	ScanJobID string
	TypeGuess DocumentType
	Category  string
	Search    string
	Limit     int
	Offset    int
}

// UploadMetadata carries optional display fields supplied with a
// direct upload.
type UploadMetadata struct {
	DisplayTitle       string   `json:"display_title"`
	DisplayDescription string   `json:"display_description"`
	Category           string   `json:"category"`
	Subcategory        string   `json:"subcategory"`
	Tags               []string `json:"tags"`
}

// CategoryCount is one group-by bucket over published documents.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DocumentUpdate carries a partial detail edit. Nil fields are left
// untouched; setting RevisionNotes bumps the revision number and
// archives the previous revision tuple first.
type DocumentUpdate struct {
	DisplayTitle       *string
	DisplayDescription *string
	Category           *string
	Subcategory        *string
	Tags               *[]string
	OSHAReference      *string
	SortOrder          *int
	RevisionNotes      *string
}
