package usermanager

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches every *ParseError.
	ErrParse              = errors.New("dumpsys parse failure")
	ErrUnsupportedVersion = errors.New("unsupported SDK version")
)

// ParseError reports which field could not be extracted and the raw text it
// was being extracted from.
type ParseError struct {
	Field string
	Raw   string
	Err   error
}

func newParseError(field, raw, format string, args ...interface{}) *ParseError {
	return &ParseError{Field: field, Raw: raw, Err: fmt.Errorf(format, args...)}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: field %s: %v; raw text: %q", ErrParse, e.Field, e.Err, e.Raw)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
