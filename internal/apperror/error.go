// Package apperror defines the tagged error used across the pipeline.
//
// Every failure that reaches an entry point carries one Kind so callers can
// branch on it, while the result documents still expose a single message.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindQuery        // warehouse query failed
	KindPublish      // blob store write failed
	KindRefresh      // dashboard update failed
	KindConfig       // missing or malformed settings
)

func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindPublish:
		return "publish"
	case KindRefresh:
		return "refresh"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is a failure tagged with its Kind and the operation that produced it.
type Error struct {
	kind Kind
	op   string
	err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.op != "" && e.err != nil:
		return fmt.Sprintf("%s %s: %v", e.kind, e.op, e.err)
	case e.err != nil:
		return fmt.Sprintf("%s: %v", e.kind, e.err)
	case e.op != "":
		return fmt.Sprintf("%s %s failed", e.kind, e.op)
	default:
		return e.kind.String() + " error"
	}
}

// Kind returns the failure classification.
func (e *Error) Kind() Kind { return e.kind }

// Op returns the operation, usually a report name or config key.
func (e *Error) Op() string { return e.op }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.err }

func newError(kind Kind, op string, err error) error {
	return &Error{kind: kind, op: op, err: err}
}

// Query tags err as a warehouse query failure for op.
func Query(op string, err error) error { return newError(KindQuery, op, err) }

// Publish tags err as a blob store write failure for op.
func Publish(op string, err error) error { return newError(KindPublish, op, err) }

// Refresh tags err as a dashboard update failure for op.
func Refresh(op string, err error) error { return newError(KindRefresh, op, err) }

// Config tags err as a configuration failure for op.
func Config(op string, err error) error { return newError(KindConfig, op, err) }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
