package httpadapter

import (
	"net/http"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound),
		domain.IsKind(err, domain.ErrScanJobNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrAlreadyPublished),
		domain.IsKind(err, domain.ErrNotPublished),
		domain.IsKind(err, domain.ErrRevisionConflict):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
