package apperrors

import "errors"

var (
	ErrUnknownKind       = errors.New("unknown placeholder kind")
	ErrNoExecutor        = errors.New("no query executor configured")
	ErrUnsafeValue       = errors.New("value rejected by injection check")
	ErrEmptyTemplate     = errors.New("template has no SQL text")
	ErrCatalogDuplicate  = errors.New("duplicate template id in catalog")
	ErrContextIncomplete = errors.New("context is missing required fields")
)
