package datastore

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotReady is returned when a snapshot is requested before one has been published.
var ErrNotReady = errors.New("data not loaded")

// DocumentError records the failure of one required document.
type DocumentError struct {
	Document Document
	Location string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Document, e.Location, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// DataLoadError reports that one or more required documents failed to fetch or parse.
// Nothing from the failed load is published.
type DataLoadError struct {
	Failures []*DocumentError
}

func (e *DataLoadError) Error() string {
	if len(e.Failures) == 1 {
		return "loading citation data: " + e.Failures[0].Error()
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("loading citation data: %d documents failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes the per-document errors to errors.Is and errors.As.
func (e *DataLoadError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// IsDataLoadError returns true if err is or wraps a *DataLoadError.
func IsDataLoadError(err error) bool {
	var loadErr *DataLoadError
	return errors.As(err, &loadErr)
}
