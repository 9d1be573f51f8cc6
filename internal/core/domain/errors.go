package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrScanJobNotFound   = errors.New("scan job not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyPublished  = errors.New("document already published")
	ErrRevisionConflict  = errors.New("document revision conflict")
	ErrNotPublished      = errors.New("document is not published")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrTemporary         = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
