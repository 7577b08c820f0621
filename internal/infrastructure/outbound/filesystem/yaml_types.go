package filesystem

import "github.com/sophialabs/apiprobe/internal/infrastructure/services"

// yamlConfig is the YAML deserialization target for collection entries.
type yamlConfig struct {
	Name             string                  `yaml:"name"`
	Route            string                  `yaml:"route"`
	Method           string                  `yaml:"method,omitempty"`
	Headers          map[string]string       `yaml:"headers,omitempty"`
	Prompt           map[string]string       `yaml:"prompt,omitempty"`
	Fields           []services.Field        `yaml:"fields,omitempty"`
	AdditionalFields map[string]any          `yaml:"additional_fields,omitempty"`
	Field            string                  `yaml:"field,omitempty"`
	Schema           yamlSchema              `yaml:"schema,omitempty"`
	Variables        map[string]yamlVariable `yaml:"variables,omitempty"`
}

type yamlVariable struct {
	Type     string   `yaml:"type,omitempty"`
	Values   []string `yaml:"values,omitempty"`
	Datalist *int64   `yaml:"datalist,omitempty"`
}

// yamlSchema accepts either a sequence of field names or a comma-separated string.
type yamlSchema []string
