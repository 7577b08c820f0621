package services

import (
	"strconv"
	"strings"

	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
)

// Field is one typed body field as entered by the user.
type Field struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
	Type  string `json:"type" yaml:"type"`
}

// CoerceField converts a raw field value to its declared type. Numbers that
// do not parse stay strings; an empty number is zero.
func CoerceField(value, typ string) any {
	switch typ {
	case requestconfig.FieldBoolean:
		return value == "true"
	case requestconfig.FieldNumber:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return float64(0)
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return value
		}
		return f
	default:
		return value
	}
}

// AdditionalFields coerces fields into a body map. Fields without a key are skipped.
func AdditionalFields(fields []Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if f.Key == "" {
			continue
		}
		out[f.Key] = CoerceField(f.Value, f.Type)
	}
	return out
}

// BuildBody assembles the outbound request body. The rendered prompt is
// decoded as JSON when possible, otherwise sent as a string. The prompt
// field wins over an additional field with the same key.
func BuildBody(promptKey, renderedPrompt string, additional map[string]any) map[string]any {
	body := make(map[string]any, len(additional)+1)
	for k, v := range additional {
		body[k] = v
	}
	if promptKey != "" {
		body[promptKey] = parseLoose(renderedPrompt)
	}
	return body
}

// ParseSchemaInput splits a comma-separated field list, dropping blanks.
func ParseSchemaInput(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	var fields []string
	for _, part := range strings.Split(input, ",") {
		if name := strings.TrimSpace(part); name != "" {
			fields = append(fields, name)
		}
	}
	return fields
}

// NormalizeURL turns a configured route into an absolute URL. Routes that
// already start with "http" are kept; others get https:// and lose one leading slash.
func NormalizeURL(route string) string {
	if strings.HasPrefix(route, "http") {
		return route
	}
	return "https://" + strings.TrimPrefix(route, "/")
}

// MergeHeaders returns the default JSON content type overlaid with custom headers.
// Headers with an empty name are skipped.
func MergeHeaders(custom map[string]string) map[string]string {
	merged := map[string]string{"Content-Type": "application/json"}
	for k, v := range custom {
		if k == "" {
			continue
		}
		merged[k] = v
	}
	return merged
}
