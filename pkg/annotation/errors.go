package annotation

import (
	"errors"
	"fmt"
)

var (
	// ErrDirectoryMissing is returned by Load when the annotation path does
	// not exist or is not a directory.
	ErrDirectoryMissing = errors.New("annotation directory missing")

	// ErrMissingField marks a document or entry that lacks a required element.
	ErrMissingField = errors.New("missing required field")

	// ErrDegenerateBox marks a box whose min corner is not strictly below its max corner.
	ErrDegenerateBox = errors.New("degenerate bounding box")

	// ErrNotFinite is returned by ParseCoordinate for NaN and infinite values.
	ErrNotFinite = errors.New("coordinate is not finite")

	// ErrOutOfRange is returned by ParseCoordinate for values outside the int32 range.
	ErrOutOfRange = errors.New("coordinate out of range")

	// ErrInvalidSize marks a declared image size that is not a positive number.
	ErrInvalidSize = errors.New("invalid image size")
)

// Kind classifies a non-fatal load failure.
type Kind int

const (
	// MalformedDocument means a whole file was skipped.
	MalformedDocument Kind = iota + 1
	// MalformedEntry means a single object entry (or the optional size block) was skipped.
	MalformedEntry
	// NumericParseFailure is a MalformedEntry caused by an unparsable coordinate.
	NumericParseFailure
)

func (k Kind) String() string {
	switch k {
	case MalformedDocument:
		return "malformed document"
	case MalformedEntry:
		return "malformed entry"
	case NumericParseFailure:
		return "numeric parse failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failure describes one skipped document or entry.
type Failure struct {
	Kind Kind
	// File is the base name of the annotation file.
	File string
	// Entry is the zero based index of the <object> element, or -1 when the
	// failure concerns the document itself or its <size> block.
	Entry int
	// Field names the offending element, e.g. "filename", "name", "xmin".
	Field string
	Err   error
}

func (f Failure) Error() string {
	msg := f.Kind.String() + " in " + f.File
	if f.Entry >= 0 {
		msg += fmt.Sprintf(" object %d", f.Entry)
	}
	if f.Field != "" {
		msg += " field " + f.Field
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f Failure) Unwrap() error {
	return f.Err
}

// IsEntry reports whether only a single entry was skipped rather than a whole file.
func (f Failure) IsEntry() bool {
	return f.Kind == MalformedEntry || f.Kind == NumericParseFailure
}

// FailureSummary counts skipped documents and entries.
type FailureSummary struct {
	SkippedDocuments int `json:"skipped_documents"`
	SkippedEntries   int `json:"skipped_entries"`
	NumericFailures  int `json:"numeric_failures"`
}

// Total returns the number of failures of any kind.
func (s FailureSummary) Total() int {
	return s.SkippedDocuments + s.SkippedEntries
}

// Summarize counts failures by granularity. NumericFailures is a subset of
// SkippedEntries.
func Summarize(failures []Failure) FailureSummary {
	var s FailureSummary
	for _, f := range failures {
		switch {
		case f.Kind == MalformedDocument:
			s.SkippedDocuments++
		case f.IsEntry():
			s.SkippedEntries++
			if f.Kind == NumericParseFailure {
				s.NumericFailures++
			}
		}
	}
	return s
}
