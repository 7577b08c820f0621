// Package requestconfig holds saved API test configurations.
package requestconfig

import (
	"strings"
	"time"
)

// Variable source types.
const (
	SourceManual   = "manual"
	SourceDatalist = "datalist"
)

// Field types understood by body building.
const (
	FieldString  = "string"
	FieldNumber  = "number"
	FieldBoolean = "boolean"
)

// DefaultMethod is used when a config or request leaves the method blank.
const DefaultMethod = "GET"

// RequestConfig is a named, reusable description of one API call.
type RequestConfig struct {
	ID               int64                     `json:"id"`
	Name             string                    `json:"name"`
	Route            string                    `json:"route"`
	Method           string                    `json:"method"`
	AdditionalFields map[string]any            `json:"additionalFields"`
	Field            string                    `json:"field"`
	Headers          map[string]string         `json:"headers"`
	Prompt           map[string]string         `json:"prompt"`
	Variables        map[string]VariableSource `json:"variables"`
	Schema           []string                  `json:"schema"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// VariableSource says where the values of a prompt variable come from.
type VariableSource struct {
	Type       string   `json:"type"`
	Values     []string `json:"values,omitempty"`
	DatalistID *int64   `json:"datalistId,omitempty"`
}

// FromDatalist reports whether the values live in a datalist.
func (v VariableSource) FromDatalist() bool {
	return v.Type == SourceDatalist
}

// Patch carries the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	Name             *string                   `json:"name,omitempty"`
	Route            *string                   `json:"route,omitempty"`
	Method           *string                   `json:"method,omitempty"`
	AdditionalFields map[string]any            `json:"additionalFields,omitempty"`
	Field            *string                   `json:"field,omitempty"`
	Headers          map[string]string         `json:"headers,omitempty"`
	Prompt           map[string]string         `json:"prompt,omitempty"`
	Variables        map[string]VariableSource `json:"variables,omitempty"`
	Schema           []string                  `json:"schema,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Route == nil && p.Method == nil && p.Field == nil &&
		p.AdditionalFields == nil && p.Headers == nil && p.Prompt == nil &&
		p.Variables == nil && p.Schema == nil
}

// Apply copies the set fields of p onto c.
func (p Patch) Apply(c *RequestConfig) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Route != nil {
		c.Route = *p.Route
	}
	if p.Method != nil {
		c.Method = *p.Method
	}
	if p.AdditionalFields != nil {
		c.AdditionalFields = p.AdditionalFields
	}
	if p.Field != nil {
		c.Field = *p.Field
	}
	if p.Headers != nil {
		c.Headers = p.Headers
	}
	if p.Prompt != nil {
		c.Prompt = p.Prompt
	}
	if p.Variables != nil {
		c.Variables = p.Variables
	}
	if p.Schema != nil {
		c.Schema = p.Schema
	}
}

// StripDatalistValues drops inline values from datalist-sourced variables.
// Only the type and datalist id are persisted for those.
func StripDatalistValues(vars map[string]VariableSource) map[string]VariableSource {
	if vars == nil {
		return nil
	}
	out := make(map[string]VariableSource, len(vars))
	for name, src := range vars {
		if src.FromDatalist() {
			src.Values = nil
		}
		out[name] = src
	}
	return out
}

// EffectiveMethod returns the upper-cased method, defaulting to GET.
func (c *RequestConfig) EffectiveMethod() string {
	m := strings.ToUpper(strings.TrimSpace(c.Method))
	if m == "" {
		return DefaultMethod
	}
	return m
}

// PromptKey returns the body field the rendered prompt is injected into and
// the template text. The first key in sorted order wins when several exist.
func (c *RequestConfig) PromptKey() (key, text string) {
	for k, v := range c.Prompt {
		if key == "" || k < key {
			key, text = k, v
		}
	}
	return key, text
}
