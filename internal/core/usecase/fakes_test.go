package usecase

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

// docRepoFake is an in-memory DocumentRepository shared by the usecase
// tests. Error fields, when set, are returned by the matching method
// before any state changes.
type docRepoFake struct {
	docs map[string]*domain.StagedDocument

	createErr     error
	bulkCreateErr error
	saveErr       error
	convErr       error

	savedDetails       []domain.StagedDocument
	expectedRevisions  []int
	savedClassified    map[string]domain.Classification
	conversionStatuses map[string]domain.ConversionStatus
	conversionErrors   map[string]string
	savedHTML          map[string]string
}

func newDocRepoFake() *docRepoFake {
	return &docRepoFake{
		docs:               make(map[string]*domain.StagedDocument),
		savedClassified:    make(map[string]domain.Classification),
		conversionStatuses: make(map[string]domain.ConversionStatus),
		conversionErrors:   make(map[string]string),
		savedHTML:          make(map[string]string),
	}
}

func (f *docRepoFake) put(doc domain.StagedDocument) {
	copyDoc := doc
	f.docs[doc.ID] = &copyDoc
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.StagedDocument) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.put(*doc)
	return nil
}

func (f *docRepoFake) BulkCreate(_ context.Context, docs []domain.StagedDocument) (int, error) {
	if f.bulkCreateErr != nil {
		return 0, f.bulkCreateErr
	}
	inserted := 0
	for _, doc := range docs {
		duplicate := false
		for _, existing := range f.docs {
			if existing.TenantID == doc.TenantID && existing.FilePath == doc.FilePath {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		f.put(doc)
		inserted++
	}
	return inserted, nil
}

func (f *docRepoFake) GetByID(_ context.Context, tenantID, id string) (*domain.StagedDocument, error) {
	doc, ok := f.docs[id]
	if !ok || doc.TenantID != tenantID {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", domain.ErrDocumentNotFound)
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *docRepoFake) List(_ context.Context, tenantID string, filter domain.DocumentFilter) ([]domain.StagedDocument, error) {
	out := make([]domain.StagedDocument, 0)
	for _, doc := range f.docs {
		if doc.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (f *docRepoFake) SaveDetails(_ context.Context, doc *domain.StagedDocument, expectedRevision int) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedDetails = append(f.savedDetails, *doc)
	f.expectedRevisions = append(f.expectedRevisions, expectedRevision)
	f.put(*doc)
	return nil
}

func (f *docRepoFake) BulkUpdateStatus(_ context.Context, tenantID string, ids []string, status domain.DocumentStatus, userID string) (int, error) {
	changed := 0
	for _, id := range ids {
		doc, ok := f.docs[id]
		if !ok || doc.TenantID != tenantID || doc.Status == domain.StatusPublished {
			continue
		}
		doc.Status = status
		changed++
	}
	return changed, nil
}

func (f *docRepoFake) SaveClassification(_ context.Context, id string, cls domain.Classification) error {
	f.savedClassified[id] = cls
	if doc, ok := f.docs[id]; ok {
		doc.Classification = cls
	}
	return nil
}

func (f *docRepoFake) SetConversionStatus(_ context.Context, id string, status domain.ConversionStatus, convError string) error {
	if f.convErr != nil {
		return f.convErr
	}
	f.conversionStatuses[id] = status
	f.conversionErrors[id] = convError
	if doc, ok := f.docs[id]; ok {
		doc.ConversionStatus = status
		doc.ConversionError = convError
	}
	return nil
}

func (f *docRepoFake) SaveConversionResult(_ context.Context, id string, html string) error {
	if f.convErr != nil {
		return f.convErr
	}
	f.savedHTML[id] = html
	if doc, ok := f.docs[id]; ok {
		doc.HTMLContent = html
		doc.ConversionStatus = domain.ConversionCompleted
		now := time.Now().UTC()
		doc.ConvertedAt = &now
	}
	return nil
}

func (f *docRepoFake) MarkPublished(_ context.Context, tenantID, id, userID string) error {
	doc, ok := f.docs[id]
	if !ok || doc.TenantID != tenantID || doc.Status != domain.StatusActive {
		return domain.WrapError(domain.ErrDocumentNotFound, "mark published", domain.ErrDocumentNotFound)
	}
	now := time.Now().UTC()
	doc.Status = domain.StatusPublished
	doc.PublishedAt = &now
	doc.PublishedByUserID = userID
	doc.ConversionStatus = domain.ConversionPending
	return nil
}

func (f *docRepoFake) MarkUnpublished(_ context.Context, tenantID, id string) error {
	doc, ok := f.docs[id]
	if !ok || doc.TenantID != tenantID || doc.Status != domain.StatusPublished {
		return domain.WrapError(domain.ErrDocumentNotFound, "mark unpublished", domain.ErrDocumentNotFound)
	}
	doc.Status = domain.StatusActive
	doc.PublishedAt = nil
	doc.PublishedByUserID = ""
	return nil
}

func (f *docRepoFake) PublishedCategoryCounts(_ context.Context, tenantID string) ([]domain.CategoryCount, error) {
	counts := make(map[string]int)
	for _, doc := range f.docs {
		if doc.TenantID == tenantID && doc.Status == domain.StatusPublished && doc.Category != "" {
			counts[doc.Category]++
		}
	}
	out := make([]domain.CategoryCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, domain.CategoryCount{Name: name, Count: count})
	}
	return out, nil
}

func (f *docRepoFake) PublishedTagCounts(_ context.Context, tenantID string) ([]domain.CategoryCount, error) {
	counts := make(map[string]int)
	for _, doc := range f.docs {
		if doc.TenantID != tenantID || doc.Status != domain.StatusPublished {
			continue
		}
		for _, tag := range doc.Tags {
			counts[tag]++
		}
	}
	out := make([]domain.CategoryCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, domain.CategoryCount{Name: name, Count: count})
	}
	return out, nil
}

type jobRepoFake struct {
	jobs map[string]*domain.ScanJob

	createErr error
	markErr   error

	progressUpdates [][2]int
}

func newJobRepoFake() *jobRepoFake {
	return &jobRepoFake{jobs: make(map[string]*domain.ScanJob)}
}

func (f *jobRepoFake) put(job domain.ScanJob) {
	copyJob := job
	f.jobs[job.ID] = &copyJob
}

func (f *jobRepoFake) Create(_ context.Context, job *domain.ScanJob) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.put(*job)
	return nil
}

func (f *jobRepoFake) GetByID(_ context.Context, tenantID, id string) (*domain.ScanJob, error) {
	job, ok := f.jobs[id]
	if !ok || job.TenantID != tenantID {
		return nil, domain.WrapError(domain.ErrScanJobNotFound, "get scan job", domain.ErrScanJobNotFound)
	}
	copyJob := *job
	return &copyJob, nil
}

func (f *jobRepoFake) List(_ context.Context, tenantID string) ([]domain.ScanJob, error) {
	out := make([]domain.ScanJob, 0)
	for _, job := range f.jobs {
		if job.TenantID == tenantID {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *jobRepoFake) MarkRunning(_ context.Context, id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	job := f.jobs[id]
	now := time.Now().UTC()
	job.Status = domain.ScanRunning
	job.StartedAt = &now
	return nil
}

func (f *jobRepoFake) UpdateProgress(_ context.Context, id string, found, processed int) error {
	job := f.jobs[id]
	job.DocumentsFound = found
	job.DocumentsProcessed = processed
	f.progressUpdates = append(f.progressUpdates, [2]int{found, processed})
	return nil
}

func (f *jobRepoFake) MarkCompleted(_ context.Context, id string, found int) error {
	if f.markErr != nil {
		return f.markErr
	}
	job := f.jobs[id]
	now := time.Now().UTC()
	job.Status = domain.ScanCompleted
	job.DocumentsFound = found
	job.CompletedAt = &now
	return nil
}

func (f *jobRepoFake) MarkFailed(_ context.Context, id string, errMessage string) error {
	job, ok := f.jobs[id]
	if !ok {
		return domain.ErrScanJobNotFound
	}
	now := time.Now().UTC()
	job.Status = domain.ScanFailed
	job.ErrorMessage = errMessage
	job.CompletedAt = &now
	return nil
}

type queueFake struct {
	scanPublished    []string
	convertPublished []string
	publishErr       error
}

func (f *queueFake) PublishScanRequested(_ context.Context, tenantID, jobID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.scanPublished = append(f.scanPublished, jobID)
	return nil
}

func (f *queueFake) PublishConversionRequested(_ context.Context, tenantID, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.convertPublished = append(f.convertPublished, documentID)
	return nil
}

func (f *queueFake) SubscribeScanRequested(context.Context, func(context.Context, string, string) error) error {
	return nil
}

func (f *queueFake) SubscribeConversionRequested(context.Context, func(context.Context, string, string) error) error {
	return nil
}

type walkerFake struct {
	validateErr error
	walkErr     error
	descriptors []domain.FileDescriptor
}

func (f *walkerFake) ValidateRoot(string) error { return f.validateErr }

func (f *walkerFake) Walk(string) ([]domain.FileDescriptor, error) {
	if f.walkErr != nil {
		return nil, f.walkErr
	}
	return f.descriptors, nil
}

// storageFake keeps saved objects in memory keyed by storage key.
type storageFake struct {
	objects map[string][]byte
	saveErr error
	openErr error
}

func newStorageFake() *storageFake {
	return &storageFake{objects: make(map[string][]byte)}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.objects[key] = raw
	return int64(len(raw)), nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	raw, ok := f.objects[key]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type sourceReaderFake struct {
	files map[string][]byte
	err   error
}

func (f *sourceReaderFake) ReadFile(_ context.Context, path string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, ok := f.files[path]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return raw, nil
}

type converterFake struct {
	result domain.ConversionResult
	err    error
}

func (f *converterFake) Convert(string, []byte) (domain.ConversionResult, error) {
	if f.err != nil {
		return domain.ConversionResult{}, f.err
	}
	return f.result, nil
}
