package wire

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSchemaFile reads and validates a Schema from a YAML file of the
// form:
//
//	- name: x
//	  type: f64
//	  max_content_chars: 8
func LoadSchemaFile(path string) (Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse schema file: %w", err)
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}

	return schema, nil
}
