package screening

import (
	"errors"
	"fmt"

	"github.com/spigell/resume-rank/internal/document"
	"github.com/spigell/resume-rank/internal/storage"
	"github.com/spigell/resume-rank/internal/utils"
)

const snippetLength = 200

var (
	// ErrUnsupportedFormat is returned for references that are neither .pdf nor .docx.
	ErrUnsupportedFormat = document.ErrUnsupportedFormat
	// ErrNotFound is returned when the referenced document does not exist.
	ErrNotFound = storage.ErrNotFound
	// ErrEmptyInput is returned when there is nothing to rank.
	ErrEmptyInput = errors.New("at least one candidate is required")
	// ErrResponseParse matches every ResponseParseError.
	ErrResponseParse = errors.New("response not parseable as structured data")
)

// ResponseParseError reports a model reply that could not be reconciled.
// Snippet holds the beginning of the offending reply.
type ResponseParseError struct {
	Reason  string
	Snippet string
	Err     error
}

func newResponseParseError(raw, reason string, err error) *ResponseParseError {
	return &ResponseParseError{
		Reason:  reason,
		Snippet: utils.Truncate(raw, snippetLength),
		Err:     err,
	}
}

func (e *ResponseParseError) Error() string {
	msg := ErrResponseParse.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s (response: %q)", msg, e.Snippet)
}

func (e *ResponseParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrResponseParse}
	}
	return []error{ErrResponseParse, e.Err}
}
