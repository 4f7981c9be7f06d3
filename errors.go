package quill

import "github.com/quillhq/quill/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrPropertyNotFound    = domain.ErrPropertyNotFound
	ErrUnsupportedOperator = domain.ErrUnsupportedOperator
	ErrInvalidDirection    = domain.ErrInvalidDirection
	ErrInvalidLimit        = domain.ErrInvalidLimit
	ErrRateLimited         = domain.ErrRateLimited
	ErrTransient           = domain.ErrTransient
	ErrNotFound            = domain.ErrNotFound
	ErrUnauthorized        = domain.ErrUnauthorized
	ErrPermission          = domain.ErrPermission
	ErrBadRequest          = domain.ErrBadRequest
)
