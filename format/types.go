// Package format defines the closed set of column types carried on the wire
// and their numeric descriptor tags.
package format

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ColumnType identifies the storage representation of a schema column.
// The numeric value is the exact tag written into a column descriptor
// on the wire (see the codec's column descriptor layout).
type ColumnType uint32

const (
	Float64     ColumnType = 0
	Int32       ColumnType = 1
	Uint32      ColumnType = 2
	Bool        ColumnType = 3
	TimestampMs ColumnType = 4
	Utf8        ColumnType = 5
	ListUtf8    ColumnType = 6
)

func (t ColumnType) String() string {
	switch t {
	case Float64:
		return "f64"
	case Int32:
		return "i32"
	case Uint32:
		return "u32"
	case Bool:
		return "bool"
	case TimestampMs:
		return "timestamp_ms"
	case Utf8:
		return "utf8"
	case ListUtf8:
		return "list_utf8"
	default:
		return "unknown"
	}
}

// ParseColumnType maps a schema file's type name (e.g. "f64", "list_utf8")
// to its ColumnType. It returns an error for any name outside the closed
// set instead of silently falling back to Float64.
func ParseColumnType(name string) (ColumnType, error) {
	switch name {
	case "f64":
		return Float64, nil
	case "i32":
		return Int32, nil
	case "u32":
		return Uint32, nil
	case "bool":
		return Bool, nil
	case "timestamp_ms":
		return TimestampMs, nil
	case "utf8":
		return Utf8, nil
	case "list_utf8":
		return ListUtf8, nil
	default:
		return 0, fmt.Errorf("unknown column type name %q", name)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler so a schema file can spell
// column types by name instead of by numeric tag.
func (t *ColumnType) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}

	parsed, err := ParseColumnType(name)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// MarshalYAML implements yaml.Marshaler, round-tripping a ColumnType as
// its name.
func (t ColumnType) MarshalYAML() (any, error) {
	return t.String(), nil
}

// Valid reports whether t is one of the closed set of recognized tags.
func (t ColumnType) Valid() bool {
	return t <= ListUtf8
}

// IsFixedWidth reports whether t is stored as rowCount fixed-size elements
// (no offset index).
func (t ColumnType) IsFixedWidth() bool {
	switch t {
	case Float64, Int32, Uint32, Bool, TimestampMs:
		return true
	default:
		return false
	}
}

// ElemSize returns the per-row byte width for fixed-width types, or 0 for
// variable-length types (Utf8, ListUtf8).
func (t ColumnType) ElemSize() int {
	switch t {
	case Float64, TimestampMs:
		return 8
	case Int32, Uint32:
		return 4
	case Bool:
		return 1
	default:
		return 0
	}
}
