package extract

import "github.com/sophialabs/apiprobe/internal/domain/jsonvalue"

// Result is the outcome of Extract. Found is false when the path did not
// resolve; Value is nil in that case.
type Result struct {
	Value jsonvalue.Value
	Found bool
}

// Extract resolves path in root, normalizes the hit and validates it against
// schema. Extraction is skipped when path is blank or root is not an object.
// Schema validation runs on the final value either way.
func Extract(root jsonvalue.Value, path string, schema []string) (Result, error) {
	result := Result{Value: root, Found: true}

	steps, err := ParsePath(path)
	if _, isObject := root.(jsonvalue.Object); isObject && err == nil {
		resolved, ok := steps.Resolve(root)
		if !ok {
			result = Result{}
		} else {
			normalized, err := Normalize(resolved)
			if err != nil {
				return Result{}, err
			}
			result.Value = normalized
		}
	}

	if len(schema) > 0 {
		if err := Validate(result.Value, schema); err != nil {
			return Result{}, err
		}
	}

	return result, nil
}
