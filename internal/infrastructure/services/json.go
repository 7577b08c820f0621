package services

import (
	"github.com/goccy/go-json"
)

// parseLoose decodes s as JSON, returning s itself when it is not valid JSON.
func parseLoose(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
