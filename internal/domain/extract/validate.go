package extract

import "github.com/sophialabs/apiprobe/internal/domain/jsonvalue"

// Validate checks that v is an object holding a string under every schema field.
// It stops at the first failing field. A nil v counts as a non-object.
func Validate(v jsonvalue.Value, schema []string) error {
	obj, ok := v.(jsonvalue.Object)
	if !ok {
		return validationError(ErrNotObject)
	}
	for _, field := range schema {
		if _, ok := obj[field].(jsonvalue.String); !ok {
			return validationError(&SchemaError{Field: field})
		}
	}
	return nil
}
