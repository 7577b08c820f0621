package extract

import (
	"regexp"

	"github.com/sophialabs/apiprobe/internal/domain/jsonvalue"
)

// Greedy: first '{' through last '}' across newlines.
var objectSpan = regexp.MustCompile(`(?s)\{.*\}`)

// Normalize re-parses a string value that carries an embedded JSON document.
// The substring from the first '{' to the last '}' is tried first, then the
// whole string. Non-string values are returned unchanged.
func Normalize(v jsonvalue.Value) (jsonvalue.Value, error) {
	s, ok := v.(jsonvalue.String)
	if !ok {
		return v, nil
	}

	matched := objectSpan.FindString(string(s))
	if matched != "" {
		if parsed, err := jsonvalue.ParseString(matched); err == nil {
			return parsed, nil
		}
	}

	parsed, err := jsonvalue.ParseString(string(s))
	if err == nil {
		return parsed, nil
	}

	if matched != "" {
		return nil, normalizationError(ErrMatchedFieldNotJSON)
	}
	return nil, normalizationError(ErrFieldNotJSON)
}
