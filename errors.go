package esb

import "github.com/kailas-cloud/esb/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUnknownRecordKind    = domain.ErrUnknownRecordKind
	ErrUnsupportedOperator  = domain.ErrUnsupportedOperator
	ErrInvalidConfiguration = domain.ErrInvalidConfiguration
	ErrInvalidPagination    = domain.ErrInvalidPagination
	ErrInvalidSort          = domain.ErrInvalidSort
	ErrTransport            = domain.ErrTransport
	ErrEngine               = domain.ErrEngine
	ErrAlreadyDispatched    = domain.ErrAlreadyDispatched
	ErrScrollClosed         = domain.ErrScrollClosed
)

// EngineError carries the status and reason of a rejected request.
// It matches ErrEngine with errors.Is.
type EngineError = domain.EngineError
