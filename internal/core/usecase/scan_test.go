package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testActor() domain.Actor {
	return domain.Actor{TenantID: "tenant-1", UserID: "user-1", Role: "admin"}
}

func TestCreateScanJobEnqueuesPending(t *testing.T) {
	jobs := newJobRepoFake()
	queue := &queueFake{}
	uc := NewScanUseCase(jobs, newDocRepoFake(), &walkerFake{}, queue, discardLogger(), 0)

	job, err := uc.CreateScanJob(context.Background(), testActor(), "/srv/docs")
	if err != nil {
		t.Fatalf("CreateScanJob: %v", err)
	}
	if job.Status != domain.ScanPending {
		t.Fatalf("status = %s, want %s", job.Status, domain.ScanPending)
	}
	if job.TenantID != "tenant-1" || job.RootPath != "/srv/docs" {
		t.Fatalf("unexpected job fields: %+v", job)
	}
	if len(queue.scanPublished) != 1 || queue.scanPublished[0] != job.ID {
		t.Fatalf("published jobs = %v, want [%s]", queue.scanPublished, job.ID)
	}
}

func TestCreateScanJobRejectsBadRoot(t *testing.T) {
	walker := &walkerFake{validateErr: domain.WrapError(domain.ErrInvalidInput, "validate root", errors.New("not a directory"))}
	uc := NewScanUseCase(newJobRepoFake(), newDocRepoFake(), walker, &queueFake{}, discardLogger(), 0)

	_, err := uc.CreateScanJob(context.Background(), testActor(), "/no/such/dir")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestCreateScanJobFailsJobWhenEnqueueFails(t *testing.T) {
	jobs := newJobRepoFake()
	queue := &queueFake{publishErr: errors.New("nats down")}
	uc := NewScanUseCase(jobs, newDocRepoFake(), &walkerFake{}, queue, discardLogger(), 0)

	_, err := uc.CreateScanJob(context.Background(), testActor(), "/srv/docs")
	if err == nil {
		t.Fatal("expected enqueue error")
	}
	if len(jobs.jobs) != 1 {
		t.Fatalf("jobs created = %d, want 1", len(jobs.jobs))
	}
	for _, job := range jobs.jobs {
		if job.Status != domain.ScanFailed {
			t.Fatalf("status = %s, want %s", job.Status, domain.ScanFailed)
		}
	}
}

func TestRunScanStagesAndCompletes(t *testing.T) {
	jobs := newJobRepoFake()
	jobs.put(domain.ScanJob{ID: "job-1", TenantID: "tenant-1", RootPath: "/srv/docs", Status: domain.ScanPending})

	walker := &walkerFake{descriptors: []domain.FileDescriptor{
		{FileName: "lockout-procedure.docx", FilePath: "/srv/docs/safety/lockout-procedure.docx", Breadcrumb: []string{"safety", "lockout-procedure.docx"}, FileType: "docx", FileSize: 2048, MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{FileName: "readme.txt", FilePath: "/srv/docs/readme.txt", Breadcrumb: []string{"readme.txt"}, FileType: "txt", FileSize: 64, MimeType: "text/plain"},
	}}
	docs := newDocRepoFake()
	uc := NewScanUseCase(jobs, docs, walker, &queueFake{}, discardLogger(), 0)

	if err := uc.RunScan(context.Background(), "tenant-1", "job-1"); err != nil {
		t.Fatalf("RunScan: %v", err)
	}

	job := jobs.jobs["job-1"]
	if job.Status != domain.ScanCompleted {
		t.Fatalf("status = %s, want %s", job.Status, domain.ScanCompleted)
	}
	if job.DocumentsFound != 2 || job.DocumentsProcessed != 2 {
		t.Fatalf("progress = %d/%d, want 2/2", job.DocumentsProcessed, job.DocumentsFound)
	}
	if len(docs.docs) != 2 {
		t.Fatalf("staged documents = %d, want 2", len(docs.docs))
	}
	for _, doc := range docs.docs {
		if doc.Status != domain.StatusActive {
			t.Fatalf("document status = %s, want %s", doc.Status, domain.StatusActive)
		}
		if doc.ScanJobID == nil || *doc.ScanJobID != "job-1" {
			t.Fatalf("scan job id not recorded on %s", doc.FileName)
		}
		if doc.ConversionStatus != domain.ConversionPending {
			t.Fatalf("conversion status = %s, want pending", doc.ConversionStatus)
		}
	}
}

func TestRunScanClassifiesByFilename(t *testing.T) {
	jobs := newJobRepoFake()
	jobs.put(domain.ScanJob{ID: "job-1", TenantID: "tenant-1", RootPath: "/srv/docs", Status: domain.ScanPending})
	walker := &walkerFake{descriptors: []domain.FileDescriptor{
		{FileName: "daily-safety-checklist.pdf", FilePath: "/srv/docs/daily-safety-checklist.pdf", Breadcrumb: []string{"daily-safety-checklist.pdf"}, FileType: "pdf"},
	}}
	docs := newDocRepoFake()
	uc := NewScanUseCase(jobs, docs, walker, &queueFake{}, discardLogger(), 0)

	if err := uc.RunScan(context.Background(), "tenant-1", "job-1"); err != nil {
		t.Fatalf("RunScan: %v", err)
	}
	for _, doc := range docs.docs {
		if doc.Classification.Type != domain.TypeLikelyProcedure {
			t.Fatalf("classification = %s, want %s", doc.Classification.Type, domain.TypeLikelyProcedure)
		}
		if doc.Classification.Score <= 0 {
			t.Fatalf("score = %v, want > 0", doc.Classification.Score)
		}
	}
}

func TestRunScanBatchesSequentially(t *testing.T) {
	jobs := newJobRepoFake()
	jobs.put(domain.ScanJob{ID: "job-1", TenantID: "tenant-1", RootPath: "/srv/docs", Status: domain.ScanPending})

	descriptors := make([]domain.FileDescriptor, 0, 5)
	for i := 0; i < 5; i++ {
		descriptors = append(descriptors, domain.FileDescriptor{
			FileName: fmt.Sprintf("doc-%d.txt", i),
			FilePath: fmt.Sprintf("/srv/docs/doc-%d.txt", i),
			FileType: "txt",
		})
	}
	uc := NewScanUseCase(jobs, newDocRepoFake(), &walkerFake{descriptors: descriptors}, &queueFake{}, discardLogger(), 2)

	if err := uc.RunScan(context.Background(), "tenant-1", "job-1"); err != nil {
		t.Fatalf("RunScan: %v", err)
	}

	want := [][2]int{{5, 2}, {5, 4}, {5, 5}}
	if len(jobs.progressUpdates) != len(want) {
		t.Fatalf("progress updates = %v, want %v", jobs.progressUpdates, want)
	}
	for i, update := range jobs.progressUpdates {
		if update != want[i] {
			t.Fatalf("progress update %d = %v, want %v", i, update, want[i])
		}
	}
}

func TestRunScanSkipsDuplicatePaths(t *testing.T) {
	jobs := newJobRepoFake()
	jobs.put(domain.ScanJob{ID: "job-1", TenantID: "tenant-1", RootPath: "/srv/docs", Status: domain.ScanPending})

	docs := newDocRepoFake()
	docs.put(domain.StagedDocument{ID: "existing", TenantID: "tenant-1", FilePath: "/srv/docs/readme.txt", Status: domain.StatusActive})

	walker := &walkerFake{descriptors: []domain.FileDescriptor{
		{FileName: "readme.txt", FilePath: "/srv/docs/readme.txt", FileType: "txt"},
		{FileName: "new.txt", FilePath: "/srv/docs/new.txt", FileType: "txt"},
	}}
	uc := NewScanUseCase(jobs, docs, walker, &queueFake{}, discardLogger(), 0)

	if err := uc.RunScan(context.Background(), "tenant-1", "job-1"); err != nil {
		t.Fatalf("RunScan: %v", err)
	}
	if len(docs.docs) != 2 {
		t.Fatalf("documents = %d, want 2 (duplicate skipped)", len(docs.docs))
	}
	if jobs.jobs["job-1"].Status != domain.ScanCompleted {
		t.Fatalf("duplicates must not fail the scan, status = %s", jobs.jobs["job-1"].Status)
	}
}

func TestRunScanRecordsWalkFailure(t *testing.T) {
	jobs := newJobRepoFake()
	jobs.put(domain.ScanJob{ID: "job-1", TenantID: "tenant-1", RootPath: "/gone", Status: domain.ScanPending})
	walker := &walkerFake{walkErr: errors.New("root vanished")}
	uc := NewScanUseCase(jobs, newDocRepoFake(), walker, &queueFake{}, discardLogger(), 0)

	if err := uc.RunScan(context.Background(), "tenant-1", "job-1"); err == nil {
		t.Fatal("expected walk error")
	}
	job := jobs.jobs["job-1"]
	if job.Status != domain.ScanFailed {
		t.Fatalf("status = %s, want %s", job.Status, domain.ScanFailed)
	}
	if job.ErrorMessage == "" {
		t.Fatal("error message not recorded")
	}
}

func TestRunScanIgnoresRedeliveryForTerminalJob(t *testing.T) {
	jobs := newJobRepoFake()
	jobs.put(domain.ScanJob{ID: "job-1", TenantID: "tenant-1", Status: domain.ScanCompleted, DocumentsFound: 7})
	walker := &walkerFake{walkErr: errors.New("should not be called")}
	uc := NewScanUseCase(jobs, newDocRepoFake(), walker, &queueFake{}, discardLogger(), 0)

	if err := uc.RunScan(context.Background(), "tenant-1", "job-1"); err != nil {
		t.Fatalf("redelivery must be a no-op, got %v", err)
	}
	if jobs.jobs["job-1"].DocumentsFound != 7 {
		t.Fatal("terminal job was modified")
	}
}
