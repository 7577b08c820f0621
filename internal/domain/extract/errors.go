package extract

import (
	"errors"
	"fmt"
)

// Messages below are shown to end users and must stay byte-for-byte stable.
var (
	ErrMatchedFieldNotJSON = errors.New("Matched field value is not valid JSON.")
	ErrFieldNotJSON        = errors.New("Field value is not valid JSON.")
	ErrNotObject           = errors.New("Response is not an object for schema validation.")
	ErrSchemaMismatch      = errors.New("schema validation failed")

	ErrEmptyPath = errors.New("extraction path is empty")
)

// ErrorKind categorizes engine failures.
type ErrorKind string

const (
	KindNormalization ErrorKind = "normalization"
	KindValidation    ErrorKind = "validation"
)

// Error is a terminal engine failure. Its message is the user-facing text of the
// wrapped cause.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SchemaError names the first schema field that was missing or not a string.
type SchemaError struct {
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("Schema validation failed: missing or non-string field '%s'.", e.Field)
}

// Is reports SchemaError as an ErrSchemaMismatch.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

func normalizationError(err error) *Error {
	return &Error{Kind: KindNormalization, Err: err}
}

func validationError(err error) *Error {
	return &Error{Kind: KindValidation, Err: err}
}
