package flatfile

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks problems with the flatfile layout that make the
	// run impossible before any row is processed.
	ErrConfiguration = errors.New("configuration error")

	// ErrData marks a record whose required fields are missing or invalid.
	ErrData = errors.New("data error")
)

// DataError describes a required field that could not be coerced.
type DataError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d column %q: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d column %q: invalid value %q", e.Row, e.Column, e.Value)
}

// Unwrap exposes both ErrData and the underlying cause to errors.Is/As.
func (e *DataError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrData}
	}
	return []error{ErrData, e.Err}
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
