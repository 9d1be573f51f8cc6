package localfs

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	written, err := storage.Save(context.Background(), "tenant-1/uploads/1-report.pdf", bytes.NewReader([]byte("pdf bytes")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if written != int64(len("pdf bytes")) {
		t.Fatalf("written = %d", written)
	}

	reader, err := storage.Open(context.Background(), "tenant-1/uploads/1-report.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(raw) != "pdf bytes" {
		t.Fatalf("read back %q", raw)
	}
}

func TestSaveCreatesNestedDirectories(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := storage.Save(context.Background(), "tenant-2/uploads/deep/key.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, key := range []string{"../outside.txt", "/etc/passwd", "a/../../outside.txt", "."} {
		if _, err := storage.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) accepted an escaping key", key)
		}
		if _, err := storage.Open(context.Background(), key); err == nil {
			t.Errorf("Open(%q) accepted an escaping key", key)
		}
	}
}
