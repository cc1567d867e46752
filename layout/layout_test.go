package layout_test

import (
	"testing"

	"github.com/corestability/engine/format"
	"github.com/corestability/engine/layout"
	"github.com/corestability/engine/scalar"
	"github.com/corestability/engine/wire"
	"github.com/stretchr/testify/require"
)

func TestResolveComputedWidth(t *testing.T) {
	schema := wire.Schema{{Name: "x", Type: format.Float64, MaxContentChars: 10}}
	cols := layout.Resolve(schema, 8)

	require.Equal(t, scalar.PixelSize(10*8+2*layout.CellHPadding), cols[0].ComputedWidth)
}

func TestResolveFixedWidthOverrides(t *testing.T) {
	fw := uint32(123)
	schema := wire.Schema{{Name: "x", Type: format.Float64, FixedWidth: &fw}}
	cols := layout.Resolve(schema, 8)

	require.Equal(t, scalar.PixelSize(123), cols[0].ComputedWidth)
}

func TestComputeViewportRows(t *testing.T) {
	require.Equal(t, uint32(0), layout.ComputeViewportRows(100, 0))
	require.Equal(t, uint32(23), layout.ComputeViewportRows(600, 28))
}

func TestComputeViewportLayout(t *testing.T) {
	schema := wire.Schema{{Name: "x", Type: format.Float64, MaxContentChars: 8}}
	cols := layout.Resolve(schema, 8)

	vl := layout.Compute(cols, 28, 100, 600)
	require.Equal(t, scalar.RowIndex(100), vl.TotalRows)
	require.Equal(t, scalar.PixelSize(2800), vl.TotalHeight)
	require.Equal(t, uint32(23), vl.ViewportRows)
}
