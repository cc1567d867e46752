// Package layout computes the viewport layout derived from a schema and a
// renderer's current dimensions: per-column pixel widths, row height, and
// the number of rows a viewport must render to stay filled while
// scrolling.
package layout

import (
	"math"

	"github.com/corestability/engine/scalar"
	"github.com/corestability/engine/wire"
)

// CellHPadding is the horizontal padding (in pixels) added on both sides
// of a column's content when no fixed width is given.
const CellHPadding scalar.PixelSize = 16

// DefaultCharWidthHint is used when a caller does not supply one.
const DefaultCharWidthHint scalar.PixelSize = 8

// ResolvedColumn is a schema entry plus the pixel width the layout engine
// computed for it.
type ResolvedColumn struct {
	wire.SchemaEntry
	ComputedWidth scalar.PixelSize
	ColumnIndex   uint32
}

// Resolve computes ResolvedColumn.ComputedWidth for every schema entry:
// FixedWidth if given, else maxContentChars*charWidthHint + 2*CellHPadding.
func Resolve(schema wire.Schema, charWidthHint scalar.PixelSize) []ResolvedColumn {
	if charWidthHint == 0 {
		charWidthHint = DefaultCharWidthHint
	}

	out := make([]ResolvedColumn, len(schema))
	for i, entry := range schema {
		var width scalar.PixelSize
		if entry.FixedWidth != nil {
			width = scalar.PixelSize(*entry.FixedWidth)
		} else {
			width = scalar.PixelSize(entry.MaxContentChars)*charWidthHint + 2*CellHPadding
		}

		out[i] = ResolvedColumn{
			SchemaEntry:   entry,
			ComputedWidth: width,
			ColumnIndex:   uint32(i),
		}
	}

	return out
}

// ViewportLayout is the consumer-visible description of how many rows are
// visible and how wide each column renders.
type ViewportLayout struct {
	Columns      []ResolvedColumn
	RowHeight    scalar.PixelSize
	TotalRows    scalar.RowIndex
	TotalHeight  scalar.PixelSize
	ViewportRows uint32
}

// ComputeViewportRows returns ceil(viewportHeight/rowHeight) + 1, the
// number of rows a viewport must hold to stay filled while scrolling by
// fractional row heights.
func ComputeViewportRows(viewportHeight, rowHeight scalar.PixelSize) uint32 {
	if rowHeight == 0 {
		return 0
	}

	rows := math.Ceil(float64(viewportHeight) / float64(rowHeight))

	return uint32(rows) + 1
}

// Compute builds a ViewportLayout from resolved columns and the current
// renderer dimensions.
func Compute(columns []ResolvedColumn, rowHeight scalar.PixelSize, totalRows scalar.RowIndex, viewportHeight scalar.PixelSize) ViewportLayout {
	return ViewportLayout{
		Columns:      columns,
		RowHeight:    rowHeight,
		TotalRows:    totalRows,
		TotalHeight:  scalar.PixelSize(totalRows) * rowHeight,
		ViewportRows: ComputeViewportRows(viewportHeight, rowHeight),
	}
}
