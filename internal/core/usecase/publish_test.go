package usecase

import (
	"context"
	"testing"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

func TestPublishActiveDocument(t *testing.T) {
	docs := newDocRepoFake()
	docs.put(domain.StagedDocument{ID: "doc-1", TenantID: "tenant-1", Status: domain.StatusActive, ConversionStatus: domain.ConversionCompleted})
	queue := &queueFake{}
	uc := NewPublishUseCase(docs, queue, discardLogger())

	doc, err := uc.Publish(context.Background(), testActor(), "doc-1")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if doc.Status != domain.StatusPublished {
		t.Fatalf("status = %s, want %s", doc.Status, domain.StatusPublished)
	}
	if doc.PublishedAt == nil || doc.PublishedByUserID != "user-1" {
		t.Fatalf("publish metadata not stamped: %+v", doc)
	}
	if doc.ConversionStatus != domain.ConversionPending {
		t.Fatalf("conversion status = %s, want reset to pending", doc.ConversionStatus)
	}
	if len(queue.convertPublished) != 1 || queue.convertPublished[0] != "doc-1" {
		t.Fatalf("conversion enqueued = %v", queue.convertPublished)
	}
}

func TestPublishSurvivesQueueFailure(t *testing.T) {
	docs := newDocRepoFake()
	docs.put(domain.StagedDocument{ID: "doc-1", TenantID: "tenant-1", Status: domain.StatusActive})
	queue := &queueFake{publishErr: context.DeadlineExceeded}
	uc := NewPublishUseCase(docs, queue, discardLogger())

	doc, err := uc.Publish(context.Background(), testActor(), "doc-1")
	if err != nil {
		t.Fatalf("publish must not fail on enqueue error, got %v", err)
	}
	if doc.Status != domain.StatusPublished {
		t.Fatalf("status = %s, want published", doc.Status)
	}
}

func TestPublishTwiceFails(t *testing.T) {
	docs := newDocRepoFake()
	docs.put(domain.StagedDocument{ID: "doc-1", TenantID: "tenant-1", Status: domain.StatusPublished})
	uc := NewPublishUseCase(docs, &queueFake{}, discardLogger())

	_, err := uc.Publish(context.Background(), testActor(), "doc-1")
	if !domain.IsKind(err, domain.ErrAlreadyPublished) {
		t.Fatalf("err = %v, want already published", err)
	}
}

func TestPublishArchivedFails(t *testing.T) {
	docs := newDocRepoFake()
	docs.put(domain.StagedDocument{ID: "doc-1", TenantID: "tenant-1", Status: domain.StatusArchived})
	uc := NewPublishUseCase(docs, &queueFake{}, discardLogger())

	_, err := uc.Publish(context.Background(), testActor(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestUnpublishRoundTrip(t *testing.T) {
	docs := newDocRepoFake()
	docs.put(domain.StagedDocument{ID: "doc-1", TenantID: "tenant-1", Status: domain.StatusActive})
	uc := NewPublishUseCase(docs, &queueFake{}, discardLogger())

	if _, err := uc.Publish(context.Background(), testActor(), "doc-1"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	doc, err := uc.Unpublish(context.Background(), testActor(), "doc-1")
	if err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	if doc.Status != domain.StatusActive {
		t.Fatalf("status = %s, want %s", doc.Status, domain.StatusActive)
	}
	if doc.PublishedAt != nil || doc.PublishedByUserID != "" {
		t.Fatalf("publish metadata not cleared: %+v", doc)
	}
}

func TestUnpublishNotPublishedFails(t *testing.T) {
	docs := newDocRepoFake()
	docs.put(domain.StagedDocument{ID: "doc-1", TenantID: "tenant-1", Status: domain.StatusActive})
	uc := NewPublishUseCase(docs, &queueFake{}, discardLogger())

	_, err := uc.Unpublish(context.Background(), testActor(), "doc-1")
	if !domain.IsKind(err, domain.ErrNotPublished) {
		t.Fatalf("err = %v, want not published", err)
	}
}

func TestBulkPublishPartialSuccess(t *testing.T) {
	docs := newDocRepoFake()
	docs.put(domain.StagedDocument{ID: "doc-1", TenantID: "tenant-1", Status: domain.StatusActive})
	docs.put(domain.StagedDocument{ID: "doc-2", TenantID: "tenant-1", Status: domain.StatusPublished})
	docs.put(domain.StagedDocument{ID: "doc-3", TenantID: "other-tenant", Status: domain.StatusActive})
	docs.put(domain.StagedDocument{ID: "doc-4", TenantID: "tenant-1", Status: domain.StatusActive})
	queue := &queueFake{}
	uc := NewPublishUseCase(docs, queue, discardLogger())

	published, err := uc.BulkPublish(context.Background(), testActor(),
		[]string{"doc-1", "doc-2", "doc-3", "missing", "doc-4"})
	if err != nil {
		t.Fatalf("BulkPublish: %v", err)
	}
	if published != 2 {
		t.Fatalf("published = %d, want 2", published)
	}
	if docs.docs["doc-3"].Status != domain.StatusActive {
		t.Fatal("cross-tenant document was published")
	}
	if len(queue.convertPublished) != 2 {
		t.Fatalf("conversions enqueued = %v, want one per published document", queue.convertPublished)
	}
}

func TestListPublishedForcesStatusFilter(t *testing.T) {
	docs := newDocRepoFake()
	docs.put(domain.StagedDocument{ID: "doc-1", TenantID: "tenant-1", Status: domain.StatusPublished})
	docs.put(domain.StagedDocument{ID: "doc-2", TenantID: "tenant-1", Status: domain.StatusActive})
	uc := NewPublishUseCase(docs, &queueFake{}, discardLogger())

	out, err := uc.ListPublished(context.Background(), testActor(), domain.DocumentFilter{Status: domain.StatusActive})
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	if len(out) != 1 || out[0].ID != "doc-1" {
		t.Fatalf("listed = %+v, want only published documents", out)
	}
}

func TestPublishedCategoryAndTagCounts(t *testing.T) {
	docs := newDocRepoFake()
	docs.put(domain.StagedDocument{ID: "doc-1", TenantID: "tenant-1", Status: domain.StatusPublished, Category: "safety", Tags: []string{"ppe"}})
	docs.put(domain.StagedDocument{ID: "doc-2", TenantID: "tenant-1", Status: domain.StatusPublished, Category: "safety", Tags: []string{"ppe", "welding"}})
	docs.put(domain.StagedDocument{ID: "doc-3", TenantID: "tenant-1", Status: domain.StatusActive, Category: "safety"})
	uc := NewPublishUseCase(docs, &queueFake{}, discardLogger())

	categories, err := uc.PublishedCategories(context.Background(), testActor())
	if err != nil {
		t.Fatalf("PublishedCategories: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "safety" || categories[0].Count != 2 {
		t.Fatalf("categories = %+v", categories)
	}

	tags, err := uc.PublishedTags(context.Background(), testActor())
	if err != nil {
		t.Fatalf("PublishedTags: %v", err)
	}
	counts := make(map[string]int, len(tags))
	for _, tag := range tags {
		counts[tag.Name] = tag.Count
	}
	if counts["ppe"] != 2 || counts["welding"] != 1 {
		t.Fatalf("tags = %+v", tags)
	}
}
