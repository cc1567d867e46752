// Package column implements the growable columnar store: one
// append-only column per schema entry, preserving the wire layout so
// that windows can be sliced straight out of a column's own byte storage
// and re-emitted without transcoding.
package column

import (
	"errors"

	"github.com/corestability/engine/format"
	"github.com/corestability/engine/wire"
)

// errShortFragment is returned by Append when a parsed column fragment
// doesn't carry enough data for its declared row count. Encode/Parse
// reject this case already, so Append only sees it defensively; Commit
// returns it wrapped with the batch's "Batch N: " prefix.
var errShortFragment = errors.New("column: fragment shorter than declared row count")

// Column is one growable, append-only store for a single schema entry.
// Implementations never retain references into a caller's buffer: Append
// copies, and CopySlice always returns a fresh copy so ownership can
// transfer to a window consumer without aliasing the store.
type Column interface {
	ColumnType() format.ColumnType
	RowCount() int

	// Append appends a parsed batch-column fragment. It remaps the
	// fragment's batch-relative offsets to store-absolute offsets.
	Append(pc wire.ParsedColumn) error

	// CopySlice returns the wire-format data block for rows
	// [start, start+count), already rebased to start at offset/index 0.
	// The caller must have already clamped start and count to the
	// column's current row count.
	CopySlice(start, count int) []byte
}

// New constructs the Column implementation for a schema entry's type.
func New(typ format.ColumnType) Column {
	switch typ {
	case format.Utf8:
		return newUtf8Column()
	case format.ListUtf8:
		return newListUtf8Column()
	default:
		return newNumericColumn(typ)
	}
}
