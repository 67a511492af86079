// Package errors classifies the failures ipwatch can run into so callers can
// decide what is fatal (store access) and what is routine (network).
package errors

import (
	"errors"
	"fmt"
)

// Kind is the classification of an Error.
type Kind int

const (
	// KindIO is a file system access failure.
	KindIO Kind = iota
	// KindParse is a malformed persisted document.
	KindParse
	// KindInvalidPath is a malformed or shape-incompatible document path.
	KindInvalidPath
	// KindNetwork is an IP fetch or notification transport failure.
	KindNetwork
	// KindValidation is rejected user input, e.g. an out of range port.
	KindValidation
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindInvalidPath:
		return "invalid path"
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with its classification.
type Error struct {
	Kind Kind
	// Op is the operation that failed, e.g. "load" or "apply path".
	Op string
	// Subject is the file, path expression or endpoint involved, if any.
	Subject string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Op
	if e.Subject != "" {
		msg += " " + e.Subject
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error.
func New(kind Kind, op, subject string, err error) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Err: err}
}

// IO wraps err as a file system failure on path.
func IO(op, path string, err error) error {
	return New(KindIO, op, path, err)
}

// Parse wraps err as a malformed document read from path.
func Parse(path string, err error) error {
	return New(KindParse, "parse", path, err)
}

// InvalidPath reports a malformed path expression. The reason is formatted
// with args.
func InvalidPath(path, reason string, args ...any) error {
	return New(KindInvalidPath, "apply path", fmt.Sprintf("%q", path), fmt.Errorf(reason, args...))
}

// Network wraps err as a transport failure against endpoint.
func Network(op, endpoint string, err error) error {
	return New(KindNetwork, op, endpoint, err)
}

// Validation reports rejected input for the named field.
func Validation(field, reason string, args ...any) error {
	return New(KindValidation, "validate", field, fmt.Errorf(reason, args...))
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsIO reports whether err is a file system failure.
func IsIO(err error) bool { return is(err, KindIO) }

// IsParse reports whether err is a malformed document.
func IsParse(err error) bool { return is(err, KindParse) }

// IsInvalidPath reports whether err is a malformed path expression.
func IsInvalidPath(err error) bool { return is(err, KindInvalidPath) }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return is(err, KindNetwork) }

// IsValidation reports whether err is rejected user input.
func IsValidation(err error) bool { return is(err, KindValidation) }
