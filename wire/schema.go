package wire

import (
	"fmt"

	"github.com/corestability/engine/format"
)

// SchemaEntry describes one column of a record batch. Name is opaque to
// the codec; MaxContentChars and FixedWidth feed the layout engine only
// (see the layout package's Resolve).
type SchemaEntry struct {
	Name            string            `yaml:"name"`
	Type            format.ColumnType `yaml:"type"`
	MaxContentChars uint32            `yaml:"max_content_chars"`
	// FixedWidth overrides the computed width when non-nil.
	FixedWidth *uint32 `yaml:"fixed_width,omitempty"`
}

// Schema is an ordered, validated list of SchemaEntry. Column identity is
// positional: the codec never looks names up, it only carries them
// through to the layout engine.
type Schema []SchemaEntry

// Validate checks that names are non-empty and unique and that every
// entry can produce a computed width, mirroring the functional-option
// validation style used for mebo's encoder configuration.
func (s Schema) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for i, entry := range s {
		if entry.Name == "" {
			return fmt.Errorf("schema column %d: empty name", i)
		}
		if _, dup := seen[entry.Name]; dup {
			return fmt.Errorf("schema column %d: duplicate name %q", i, entry.Name)
		}
		seen[entry.Name] = struct{}{}

		if !entry.Type.Valid() {
			return fmt.Errorf("schema column %d (%s): unknown column type %d", i, entry.Name, entry.Type)
		}
		if entry.FixedWidth == nil && entry.MaxContentChars == 0 {
			return fmt.Errorf("schema column %d (%s): maxContentChars must be nonzero without a fixedWidth", i, entry.Name)
		}
	}

	return nil
}
