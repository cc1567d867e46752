package wire_test

import (
	"testing"

	"github.com/corestability/engine/format"
	"github.com/corestability/engine/wire"
	"github.com/stretchr/testify/require"
)

func f64Schema(maxChars uint32) wire.Schema {
	return wire.Schema{{Name: "x", Type: format.Float64, MaxContentChars: maxChars}}
}

func TestEncodeDecodeFloat64Batch(t *testing.T) {
	schema := f64Schema(8)
	rows := []wire.Row{{"x": 1.5}, {"x": -2.25}, {"x": 0}}

	buf, err := wire.Encode(schema, rows, 7)
	require.NoError(t, err)

	parsed, err := wire.Parse(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(7), parsed.Seq)
	require.Equal(t, uint32(3), parsed.RowCount)
	require.Len(t, parsed.Columns, 1)
	require.Equal(t, format.Float64, parsed.Columns[0].Type)
	require.Len(t, parsed.Columns[0].Raw, 24)

	require.InDelta(t, 1.5, parsed.Columns[0].Float64At(0), 0)
	require.InDelta(t, -2.25, parsed.Columns[0].Float64At(1), 0)
	require.InDelta(t, 0.0, parsed.Columns[0].Float64At(2), 0)
}

func TestEncodeUtf8NullHandling(t *testing.T) {
	schema := wire.Schema{{Name: "s", Type: format.Utf8, MaxContentChars: 8}}
	rows := []wire.Row{{"s": nil}, {}}

	buf, err := wire.Encode(schema, rows, 0)
	require.NoError(t, err)

	parsed, err := wire.Parse(buf)
	require.NoError(t, err)

	col := parsed.Columns[0]
	require.Equal(t, "", col.Utf8At(0))
	require.Equal(t, "", col.Utf8At(1))
	require.Len(t, col.Data, 0)
}

func TestEncodeListUtf8ParallelColumns(t *testing.T) {
	schema := wire.Schema{
		{Name: "organism_ids", Type: format.ListUtf8, MaxContentChars: 8},
		{Name: "organism_names", Type: format.ListUtf8, MaxContentChars: 8},
	}
	rows := []wire.Row{
		{"organism_ids": []string{"a", "b"}, "organism_names": []string{"E", "S"}},
		{"organism_ids": []string{"c"}, "organism_names": []string{"B"}},
	}

	buf, err := wire.Encode(schema, rows, 0)
	require.NoError(t, err)

	parsed, err := wire.Parse(buf)
	require.NoError(t, err)

	ids := parsed.Columns[0]
	names := parsed.Columns[1]

	require.Equal(t, []string{"a", "b"}, ids.ListUtf8At(0))
	require.Equal(t, []string{"c"}, ids.ListUtf8At(1))
	require.Equal(t, []string{"E", "S"}, names.ListUtf8At(0))
	require.Equal(t, []string{"B"}, names.ListUtf8At(1))
}

func TestParseInvalidMagic(t *testing.T) {
	buf := make([]byte, wire.HeaderSize)
	_, err := wire.Parse(buf)
	require.Error(t, err)
}

func TestParseTruncated(t *testing.T) {
	schema := f64Schema(8)
	buf, err := wire.Encode(schema, []wire.Row{{"x": 1.0}}, 0)
	require.NoError(t, err)

	_, err = wire.Parse(buf[:len(buf)-4])
	require.Error(t, err)
}

func TestSchemaValidate(t *testing.T) {
	bad := wire.Schema{{Name: "", Type: format.Float64, MaxContentChars: 8}}
	require.Error(t, bad.Validate())

	dup := wire.Schema{
		{Name: "a", Type: format.Float64, MaxContentChars: 8},
		{Name: "a", Type: format.Int32, MaxContentChars: 8},
	}
	require.Error(t, dup.Validate())

	noWidth := wire.Schema{{Name: "a", Type: format.Float64}}
	require.Error(t, noWidth.Validate())

	fw := uint32(40)
	ok := wire.Schema{{Name: "a", Type: format.Float64, FixedWidth: &fw}}
	require.NoError(t, ok.Validate())
}

func TestEncodeStreamAssignsMonotonicSeq(t *testing.T) {
	schema := f64Schema(8)

	batches := func(yield func([]wire.Row, error) bool) {
		if !yield([]wire.Row{{"x": 1.0}}, nil) {
			return
		}
		yield([]wire.Row{{"x": 2.0}}, nil)
	}

	var seqs []uint32
	for buf, err := range wire.EncodeStream(schema, batches) {
		require.NoError(t, err)
		parsed, parseErr := wire.Parse(buf)
		require.NoError(t, parseErr)
		seqs = append(seqs, parsed.Seq)
	}

	require.Equal(t, []uint32{0, 1}, seqs)
}
