package repository

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for dataset errors. Every failure returned by Load and Parse
// matches ErrLoad plus exactly one of the finer kinds.
var (
	ErrLoad          = errors.New("load dataset failed")
	ErrNotFound      = errors.New("dataset file not found")
	ErrMalformed     = errors.New("malformed dataset")
	ErrMissingColumn = errors.New("missing required column")
)

// LoadError describes why a dataset could not be loaded.
type LoadError struct {
	Source string // file path or reader name
	Line   int    // 1-based line in the file, 0 when not tied to a row
	Kind   error  // one of ErrNotFound, ErrMalformed, ErrMissingColumn
	Detail string
	Err    error // underlying cause, may be nil
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(ErrLoad.Error())
	if e.Source != "" {
		fmt.Fprintf(&b, " (%s", e.Source)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, ": %v", e.Kind)
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes ErrLoad, the kind and the cause to errors.Is/As.
func (e *LoadError) Unwrap() []error {
	errs := []error{ErrLoad, e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
