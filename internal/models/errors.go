package models

import "fmt"

// InputError marks a trip table that is structurally unusable for an
// aggregate, e.g. a required column entirely absent from the source. It is
// raised once and surfaced to the caller; a partially valid table never
// produces one.
type InputError struct {
	Aggregate string
	Column    string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: required column %q is absent from the input", e.Aggregate, e.Column)
}

// MissingColumn builds the InputError for an absent required column.
func MissingColumn(aggregate, column string) *InputError {
	return &InputError{Aggregate: aggregate, Column: column}
}

// PartialDataWarning is informational: some rows or dates lacked full data
// and were excluded from a single aggregate. The pipeline proceeds; callers
// may choose to display the warning.
type PartialDataWarning struct {
	Aggregate string
	Reason    string
	Rows      int
}

func (w PartialDataWarning) String() string {
	return fmt.Sprintf("%s: %d row(s) %s", w.Aggregate, w.Rows, w.Reason)
}

// SourceError is the loader's typed failure: the source could not be read
// at all. It lets callers distinguish "empty but valid" (an empty table and
// a nil error) from "unusable source" without string-matching messages.
type SourceError struct {
	Source string
	Reason string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unusable source %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("unusable source %s: %s", e.Source, e.Reason)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
