package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable code for a failure mode.
type ErrorKind string

const (
	// KindIO means a file could not be read or written.
	KindIO ErrorKind = "IO_ERROR"
	// KindParse means a file had syntax errors but still produced a tree.
	KindParse ErrorKind = "PARSE_RECOVERABLE"
	// KindInvariant means the rewriter was handed overlapping spans.
	KindInvariant ErrorKind = "INVARIANT_VIOLATION"
	// KindRegistry means the registry could not be evaluated.
	KindRegistry ErrorKind = "REGISTRY_EVALUATION"
	// KindConfig means the configuration is invalid.
	KindConfig ErrorKind = "CONFIG_INVALID"
	// KindStale means a file changed between scanning and rewriting.
	KindStale ErrorKind = "STALE_FILE"
)

// Error carries a kind, the file it concerns (if any), and the cause.
type Error struct {
	Kind    ErrorKind
	Path    string
	Message string
	cause   error
}

// NewError creates an Error. cause may be nil.
func NewError(kind ErrorKind, path, message string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Message: message, cause: cause}
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.cause }

// IsKind reports whether err (or anything it wraps) is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IssueFromError converts a per-file error into a reportable FileIssue.
func IssueFromError(file string, err error) FileIssue {
	kind := KindOf(err)
	if kind == "" {
		kind = KindIO
	}
	return FileIssue{File: file, Kind: kind, Message: err.Error()}
}
