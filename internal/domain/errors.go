package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRecordKind signals a record kind missing from the registry.
	ErrUnknownRecordKind = errors.New("unknown record kind")
	// ErrUnsupportedOperator signals an operator outside the recognized set.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrInvalidConfiguration signals a config the client cannot start with.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidPagination signals a negative size or offset.
	ErrInvalidPagination = errors.New("invalid pagination")
	// ErrInvalidSort signals a sort direction other than asc/desc.
	ErrInvalidSort = errors.New("invalid sort")

	// ErrTransport signals a network failure talking to the engine.
	ErrTransport = errors.New("transport error")
	// ErrEngine signals that the engine rejected the request.
	ErrEngine = errors.New("engine error")

	// ErrAlreadyDispatched signals a second dispatch of the same request without Reset.
	ErrAlreadyDispatched = errors.New("request already dispatched")
	// ErrScrollClosed signals use of a released scroll cursor.
	ErrScrollClosed = errors.New("scroll closed")
)

// EngineError wraps ErrEngine with the engine's status and reason.
type EngineError struct {
	Status int
	Type   string
	Reason string
}

func (e *EngineError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s: status %d", ErrEngine.Error(), e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s: %s", ErrEngine.Error(), e.Status, e.Type, e.Reason)
}

func (e *EngineError) Unwrap() error { return ErrEngine }

// NewEngineError creates an engine rejection error.
func NewEngineError(status int, typ, reason string) error {
	return &EngineError{Status: status, Type: typ, Reason: reason}
}
