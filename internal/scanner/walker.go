// Package scanner discovers candidate documents under a filesystem
// tree. The walk is read-only and tolerates per-entry failures: an
// unreadable directory or unstatable file is logged and skipped, never
// aborting the scan.
package scanner

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/filetype"
)

type Walker struct {
	logger *slog.Logger

	// Overridable for fault-injection in tests.
	readDir func(name string) ([]os.DirEntry, error)
	stat    func(name string) (fs.FileInfo, error)
}

func NewWalker(logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{
		logger:  logger,
		readDir: os.ReadDir,
		stat:    os.Stat,
	}
}

// ValidateRoot fails fast when root does not exist or is not a
// directory, so a scan job is never created for a bogus path.
func (w *Walker) ValidateRoot(root string) error {
	info, err := w.stat(root)
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "validate scan root", fmt.Errorf("path %q is not accessible: %w", root, err))
	}
	if !info.IsDir() {
		return domain.WrapError(domain.ErrInvalidInput, "validate scan root", fmt.Errorf("path %q is not a directory", root))
	}
	return nil
}

// Walk recurses depth-first under root and returns a descriptor for
// every regular file whose extension is on the document allow-list.
// Any path segment starting with "." is skipped entirely.
func (w *Walker) Walk(root string) ([]domain.FileDescriptor, error) {
	if err := w.ValidateRoot(root); err != nil {
		return nil, err
	}
	var found []domain.FileDescriptor
	w.walkDir(root, root, &found)
	return found, nil
}

func (w *Walker) walkDir(root, dir string, found *[]domain.FileDescriptor) {
	entries, err := w.readDir(dir)
	if err != nil {
		w.logger.Warn("skipping unreadable directory", "dir", dir, "error", err)
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		if entry.IsDir() {
			w.walkDir(root, path, found)
			continue
		}

		ext := filetype.Ext(name)
		if !filetype.IsDocument(ext) {
			continue
		}

		info, err := w.stat(path)
		if err != nil {
			w.logger.Warn("skipping unstatable file", "path", path, "error", err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		*found = append(*found, domain.FileDescriptor{
			FileName:   name,
			FilePath:   path,
			Breadcrumb: breadcrumb(root, path),
			FileType:   ext,
			FileSize:   uint64(info.Size()),
			MimeType:   filetype.MimeOf(ext),
		})
	}
}

// breadcrumb is the path relative to the scan root split into
// segments; it is the portable display identity of a discovered file.
func breadcrumb(root, path string) []string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}
