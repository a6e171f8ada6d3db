// Package extract pulls descriptive metadata out of document files.
//
// Each supported format has an Extractor; a Dispatcher picks one by file
// extension and folds every failure into the returned Result so callers
// never see a panic or a bare error from a parsing library.
package extract

import (
	"errors"
	"fmt"
	"time"

	"github.com/joseph-ayodele/docmeta/constants"
)

// Metadata is the flat field mapping produced by one extraction.
// Values are strings, ints or []string.
type Metadata map[string]any

// ErrorKey is the single key of the mapping that represents a failed extraction.
const ErrorKey = "error"

// Result is the outcome of dispatching one path.
type Result struct {
	Path     string
	Format   constants.Format
	Metadata Metadata
	Err      error
	Duration time.Duration
}

// OK reports whether the extraction produced metadata.
func (r Result) OK() bool {
	return r.Err == nil
}

// Fields returns the mapping to display, hash and store: the metadata on success,
// {"error": message} otherwise.
func (r Result) Fields() Metadata {
	if r.Err != nil {
		return Metadata{ErrorKey: r.Err.Error()}
	}
	if r.Metadata == nil {
		return Metadata{}
	}
	return r.Metadata
}

// ErrUnsupported matches any UnsupportedError via errors.Is.
var ErrUnsupported = errors.New("unsupported file type")

// UnsupportedError is returned for extensions that have no registered extractor.
type UnsupportedError struct {
	Ext string // lowercased, with leading dot; empty when the path has none
}

func (e *UnsupportedError) Error() string {
	return "Unsupported file type: " + e.Ext
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// ExtractError wraps a parse failure with the format that failed.
type ExtractError struct {
	Format constants.Format
	Path   string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("Failed to extract %s metadata: %v", e.Format, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// IsErrorFields reports whether m is the error mapping of a failed extraction.
func IsErrorFields(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	_, ok := m[ErrorKey]
	return ok
}
