package assertions

import "fmt"

// AssertionError is a failed check. Field is empty for checks that apply to a whole response.
type AssertionError struct {
	Field    string
	Expected string
	Actual   string
	// Detail, if set, is shown after the expected/actual values; for instance a diff.
	Detail string
}

func (e *AssertionError) Error() string {
	var s string
	if e.Field == "" {
		s = fmt.Sprintf("expected %s, but got %s", e.Expected, e.Actual)
	} else {
		s = fmt.Sprintf("%s: expected %s, but got %s", e.Field, e.Expected, e.Actual)
	}
	if e.Detail != "" {
		s += "\n" + e.Detail
	}
	return s
}

// MissingFieldError means a record did not have a field that the caller needed.
type MissingFieldError struct {
	Field  string
	Record string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q in %s", e.Field, e.Record)
}

func failf(field, expected, actualFormat string, args ...interface{}) error {
	return &AssertionError{Field: field, Expected: expected, Actual: fmt.Sprintf(actualFormat, args...)}
}
