package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/ports"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/observability/metrics"
)

// maxUploadBytes bounds direct uploads; scanned trees are not subject
// to it because the scanner never loads file bodies.
const maxUploadBytes = 100 << 20

type Router struct {
	scans      ports.ScanService
	ingestor   ports.DocumentIngestor
	staging    ports.StagingService
	conversion ports.DocumentConversionService
	publisher  ports.PublicationService
	metrics    *metrics.HTTPServerMetrics
	service    string
	logger     *slog.Logger
}

func NewRouter(
	scans ports.ScanService,
	ingestor ports.DocumentIngestor,
	staging ports.StagingService,
	conversion ports.DocumentConversionService,
	publisher ports.PublicationService,
	m *metrics.HTTPServerMetrics,
	service string,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		scans:      scans,
		ingestor:   ingestor,
		staging:    staging,
		conversion: conversion,
		publisher:  publisher,
		metrics:    m,
		service:    service,
		logger:     logger,
	}
}

func (rt *Router) Handler() http.Handler {
	v1 := http.NewServeMux()
	v1.HandleFunc("POST /v1/scans", rt.createScan)
	v1.HandleFunc("GET /v1/scans", rt.listScans)
	v1.HandleFunc("GET /v1/scans/{id}", rt.getScan)

	v1.HandleFunc("POST /v1/documents", rt.uploadDocument)
	v1.HandleFunc("GET /v1/documents", rt.listDocuments)
	v1.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	v1.HandleFunc("PATCH /v1/documents/{id}", rt.updateDocument)
	v1.HandleFunc("POST /v1/documents/bulk-status", rt.bulkUpdateStatus)
	v1.HandleFunc("POST /v1/documents/bulk-publish", rt.bulkPublish)
	v1.HandleFunc("POST /v1/documents/{id}/convert", rt.requestConversion)
	v1.HandleFunc("POST /v1/documents/{id}/publish", rt.publishDocument)
	v1.HandleFunc("POST /v1/documents/{id}/unpublish", rt.unpublishDocument)

	v1.HandleFunc("GET /v1/published", rt.listPublished)
	v1.HandleFunc("GET /v1/published/categories", rt.publishedCategories)
	v1.HandleFunc("GET /v1/published/tags", rt.publishedTags)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.Handle("/v1/", actorMiddleware(v1))

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(rt.logger, handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createScanRequest struct {
	RootPath string `json:"root_path"`
}

func (req createScanRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.RootPath, validation.Required, validation.Length(1, 4096)),
	)
}

func (rt *Router) createScan(w http.ResponseWriter, r *http.Request) {
	var req createScanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	job, err := rt.scans.CreateScanJob(r.Context(), actorFromContext(r.Context()), req.RootPath)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordScanRequest(rt.service)
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (rt *Router) listScans(w http.ResponseWriter, r *http.Request) {
	jobs, err := rt.scans.ListScanJobs(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scan_jobs": jobs})
}

func (rt *Router) getScan(w http.ResponseWriter, r *http.Request) {
	job, err := rt.scans.GetScanJob(r.Context(), actorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	meta := domain.UploadMetadata{
		DisplayTitle:       r.FormValue("display_title"),
		DisplayDescription: r.FormValue("display_description"),
		Category:           r.FormValue("category"),
		Subcategory:        r.FormValue("subcategory"),
		Tags:               splitTags(r.FormValue("tags")),
	}

	doc, err := rt.ingestor.Upload(
		r.Context(),
		actorFromContext(r.Context()),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		meta,
	)
	if rt.metrics != nil {
		var size int64
		if doc != nil {
			size = int64(doc.FileSize)
		}
		rt.metrics.RecordUpload(rt.service, size, err)
	}
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}

	docs, err := rt.staging.List(r.Context(), actorFromContext(r.Context()), filter)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.staging.Get(r.Context(), actorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type updateDocumentRequest struct {
	DisplayTitle       *string   `json:"display_title"`
	DisplayDescription *string   `json:"display_description"`
	Category           *string   `json:"category"`
	Subcategory        *string   `json:"subcategory"`
	Tags               *[]string `json:"tags"`
	OSHAReference      *string   `json:"osha_reference"`
	SortOrder          *int      `json:"sort_order"`
	RevisionNotes      *string   `json:"revision_notes"`
}

func (req updateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.DisplayTitle, validation.Length(0, 500)),
		validation.Field(&req.DisplayDescription, validation.Length(0, 5000)),
		validation.Field(&req.Category, validation.Length(0, 200)),
		validation.Field(&req.Subcategory, validation.Length(0, 200)),
		validation.Field(&req.RevisionNotes, validation.Length(0, 5000)),
	)
}

func (rt *Router) updateDocument(w http.ResponseWriter, r *http.Request) {
	var req updateDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doc, err := rt.staging.Update(r.Context(), actorFromContext(r.Context()), r.PathValue("id"), domain.DocumentUpdate{
		DisplayTitle:       req.DisplayTitle,
		DisplayDescription: req.DisplayDescription,
		Category:           req.Category,
		Subcategory:        req.Subcategory,
		Tags:               req.Tags,
		OSHAReference:      req.OSHAReference,
		SortOrder:          req.SortOrder,
		RevisionNotes:      req.RevisionNotes,
	})
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type bulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

func (req bulkStatusRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.IDs, validation.Required, validation.Length(1, 1000)),
		validation.Field(&req.Status, validation.Required,
			validation.In(string(domain.StatusActive), string(domain.StatusArchived))),
	)
}

func (rt *Router) bulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	changed, err := rt.staging.BulkUpdateStatus(r.Context(), actorFromContext(r.Context()),
		req.IDs, domain.DocumentStatus(req.Status))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordBulkItems(rt.service, "status", changed)
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": changed})
}

func (rt *Router) requestConversion(w http.ResponseWriter, r *http.Request) {
	err := rt.conversion.RequestConversion(r.Context(), actorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "conversion requested"})
}

func (rt *Router) publishDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.publisher.Publish(r.Context(), actorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordPublishTransition(rt.service, "publish")
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) unpublishDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.publisher.Unpublish(r.Context(), actorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordPublishTransition(rt.service, "unpublish")
	}
	writeJSON(w, http.StatusOK, doc)
}

type bulkPublishRequest struct {
	IDs []string `json:"ids"`
}

func (req bulkPublishRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.IDs, validation.Required, validation.Length(1, 1000)),
	)
}

func (rt *Router) bulkPublish(w http.ResponseWriter, r *http.Request) {
	var req bulkPublishRequest
	if !decodeBody(w, r, &req) {
		return
	}

	published, err := rt.publisher.BulkPublish(r.Context(), actorFromContext(r.Context()), req.IDs)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordBulkItems(rt.service, "publish", published)
	}
	writeJSON(w, http.StatusOK, map[string]int{"published": published})
}

func (rt *Router) listPublished(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}

	docs, err := rt.publisher.ListPublished(r.Context(), actorFromContext(r.Context()), filter)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) publishedCategories(w http.ResponseWriter, r *http.Request) {
	counts, err := rt.publisher.PublishedCategories(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": counts})
}

func (rt *Router) publishedTags(w http.ResponseWriter, r *http.Request) {
	counts, err := rt.publisher.PublishedTags(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": counts})
}

func (rt *Router) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		rt.logger.Error("request failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeError(w, status, err.Error())
}

// decodeBody parses and validates a JSON request body, answering 400
// itself when either step fails.
func decodeBody(w http.ResponseWriter, r *http.Request, req validation.Validatable) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func filterFromQuery(r *http.Request) (domain.DocumentFilter, error) {
	q := r.URL.Query()
	filter := domain.DocumentFilter{
		Status:    domain.DocumentStatus(q.Get("status")),
		ScanJobID: q.Get("scan_job_id"),
		TypeGuess: domain.DocumentType(q.Get("type")),
		Category:  q.Get("category"),
		Search:    q.Get("search"),
	}
	if filter.TypeGuess != "" && !filter.TypeGuess.Valid() {
		return filter, domain.WrapError(domain.ErrInvalidInput, "parse filter",
			errors.New("unknown document type "+string(filter.TypeGuess)))
	}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return filter, domain.WrapError(domain.ErrInvalidInput, "parse filter",
				errors.New(name+" must be a non-negative integer"))
		}
		*dst = value
	}
	return filter, nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
