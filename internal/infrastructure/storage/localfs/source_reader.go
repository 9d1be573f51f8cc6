package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// SourceReader reads scanned files back from the source tree for
// conversion. The tree is read-only to the pipeline; this type never
// writes.
type SourceReader struct{}

func NewSourceReader() *SourceReader {
	return &SourceReader{}
}

func (r *SourceReader) ReadFile(_ context.Context, path string) ([]byte, error) {
	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("source path %q is not absolute", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}
	return raw, nil
}
