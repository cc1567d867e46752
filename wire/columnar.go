package wire

import (
	"github.com/corestability/engine/format"
	"github.com/corestability/engine/internal/pool"
)

// MaterializeFloat64Column decodes every row of a float64 (or
// timestamp_ms) column into a pooled contiguous slice, for callers that
// need columnar values in bulk (aggregation, CLI summaries) rather than
// one DecodeRows map per record. The caller must call cleanup
// (typically deferred) to return the slice to the pool.
func MaterializeFloat64Column(pc ParsedColumn) ([]float64, func()) {
	out, cleanup := pool.GetFloat64Slice(int(pc.RowCount))
	for i := range out {
		out[i] = pc.Float64At(i)
	}

	return out, cleanup
}

// MaterializeInt64Column decodes every row of an i32 or u32 column,
// widened to int64, into a pooled contiguous slice. The caller must call
// cleanup to return the slice to the pool.
func MaterializeInt64Column(pc ParsedColumn) ([]int64, func()) {
	out, cleanup := pool.GetInt64Slice(int(pc.RowCount))
	for i := range out {
		if pc.Type == format.Int32 {
			out[i] = int64(pc.Int32At(i))
		} else {
			out[i] = int64(pc.Uint32At(i))
		}
	}

	return out, cleanup
}

// MaterializeStringColumn decodes every row of a utf8 column into a
// pooled contiguous slice. The caller must call cleanup to return the
// slice to the pool.
func MaterializeStringColumn(pc ParsedColumn) ([]string, func()) {
	out, cleanup := pool.GetStringSlice(int(pc.RowCount))
	for i := range out {
		out[i] = pc.Utf8At(i)
	}

	return out, cleanup
}
