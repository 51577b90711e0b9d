// Package apperror defines the closed set of failure kinds that may cross a
// service boundary. Every internal failure is mapped to one of these before it
// reaches a caller.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide on retry or status mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindValidation
	KindEmbedding
	KindRetrieval
	KindStorage
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindEmbedding:
		return "embedding"
	case KindRetrieval:
		return "retrieval"
	case KindStorage:
		return "storage"
	case KindGeneration:
		return "generation"
	default:
		return "unknown"
	}
}

// Error is a typed failure. Op names the operation that failed, e.g. "ingest.embed".
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a kind and operation. An err that is already an *Error
// keeps its original kind only when kind is KindUnknown.
func New(kind Kind, op string, err error) *Error {
	if kind == KindUnknown {
		var inner *Error
		if errors.As(err, &inner) {
			kind = inner.Kind
		}
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds an *Error from a formatted message.
func Newf(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
