package wire_test

import (
	"testing"

	"github.com/corestability/engine/format"
	"github.com/corestability/engine/wire"
	"github.com/stretchr/testify/require"
)

func TestMaterializeFloat64Column(t *testing.T) {
	schema := wire.Schema{{Name: "x", Type: format.Float64, MaxContentChars: 8}}
	buf, err := wire.Encode(schema, []wire.Row{{"x": 1.5}, {"x": 2.5}, {"x": 3.0}}, 0)
	require.NoError(t, err)

	batch, err := wire.Parse(buf)
	require.NoError(t, err)

	values, cleanup := wire.MaterializeFloat64Column(batch.Columns[0])
	defer cleanup()
	require.Equal(t, []float64{1.5, 2.5, 3.0}, values)
}

func TestMaterializeStringColumn(t *testing.T) {
	schema := wire.Schema{{Name: "s", Type: format.Utf8, MaxContentChars: 8}}
	buf, err := wire.Encode(schema, []wire.Row{{"s": "a"}, {"s": "bb"}}, 0)
	require.NoError(t, err)

	batch, err := wire.Parse(buf)
	require.NoError(t, err)

	values, cleanup := wire.MaterializeStringColumn(batch.Columns[0])
	defer cleanup()
	require.Equal(t, []string{"a", "bb"}, values)
}

func TestMaterializeInt64ColumnFromUint32(t *testing.T) {
	schema := wire.Schema{{Name: "n", Type: format.Uint32, MaxContentChars: 8}}
	buf, err := wire.Encode(schema, []wire.Row{{"n": 7}, {"n": 9}}, 0)
	require.NoError(t, err)

	batch, err := wire.Parse(buf)
	require.NoError(t, err)

	values, cleanup := wire.MaterializeInt64Column(batch.Columns[0])
	defer cleanup()
	require.Equal(t, []int64{7, 9}, values)
}
