// Package errors defines the failure categories of an export run.
// Every stage of the pipeline wraps its cause in an *E carrying a Kind so
// the HTTP layer and the CLI can report the failure without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Authentication indicates rejected credentials or an unreachable identity endpoint.
	Authentication Kind = "authentication"
	// Fetch indicates a transport or backend failure during pagination.
	Fetch Kind = "fetch"
	// Resolution indicates a failed label lookup batch or related-record join.
	Resolution Kind = "resolution"
	// MalformedInput indicates a domain or field list that could not be parsed.
	MalformedInput Kind = "malformed_input"
	// Export indicates the output file could not be written.
	Export Kind = "export"
	// FilterStore indicates a saved-filter persistence failure.
	FilterStore Kind = "filter_store"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error

	// Collected is the number of records gathered before a fetch aborted.
	Collected int
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf reports the kind of the first *E in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// CollectedOf returns the partial record count carried by a fetch error.
func CollectedOf(err error) int {
	var e *E
	if stderrors.As(err, &e) {
		return e.Collected
	}
	return 0
}
