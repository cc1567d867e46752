// Package window implements the window slicer: given a committed
// columnar store and a requested row range, it produces a framed wire
// buffer covering exactly that range without transcoding any column's
// underlying bytes — each column contributes a pre-rebased block via
// column.Store.Slice, and Pack only assembles the header and descriptors
// around them.
package window

import (
	"github.com/corestability/engine/column"
	"github.com/corestability/engine/endian"
	"github.com/corestability/engine/layout"
	"github.com/corestability/engine/scalar"
	"github.com/corestability/engine/wire"
)

// DataWindow is a framed, ready-to-send wire buffer covering
// [StartRow, StartRow+RowCount) of a store, tagged with the window's own
// emission sequence number (distinct from the ingest batch seq space),
// paired with the layout in effect when it was packed.
type DataWindow struct {
	Seq      scalar.BatchSeq
	StartRow scalar.RowIndex
	RowCount scalar.RowIndex
	Layout   layout.ViewportLayout
	Buffer   []byte
}

// Pack clamps [start, start+count) to the store's committed row range and
// assembles a DataWindow covering the clamped range. A start at or past
// the store's row count yields an empty (zero-row) window rather than an
// error, matching how an ingest-starved consumer requests a window before
// data has arrived.
func Pack(store *column.Store, start, count scalar.RowIndex, seq scalar.BatchSeq, lay layout.ViewportLayout) DataWindow {
	total := store.RowCount()
	if start > total {
		start = total
	}

	end := start.Add(uint64(count))
	if end > total {
		end = total
	}

	clampedCount := scalar.RowIndex(end.Int() - start.Int())

	slices := store.Slice(start, clampedCount)

	engine := endian.GetLittleEndianEngine()
	buf := assemble(store.Schema(), slices, uint32(seq), uint32(clampedCount.Int()), engine) //nolint:gosec

	return DataWindow{Seq: seq, StartRow: start, RowCount: clampedCount, Layout: lay, Buffer: buf}
}

func assemble(schema wire.Schema, slices []column.ColumnSlice, seq, rowCount uint32, engine endian.EndianEngine) []byte {
	total := wire.HeaderSize + len(schema)*wire.DescriptorSize
	for _, s := range slices {
		total += len(s.Block)
	}

	out := make([]byte, total)
	engine.PutUint32(out[0:4], wire.Magic)
	engine.PutUint32(out[4:8], seq)
	engine.PutUint32(out[8:12], rowCount)
	engine.PutUint32(out[12:16], uint32(len(schema))) //nolint:gosec

	descOff := wire.HeaderSize
	dataOff := wire.HeaderSize + len(schema)*wire.DescriptorSize
	for _, s := range slices {
		engine.PutUint32(out[descOff:descOff+4], uint32(s.Type))
		engine.PutUint32(out[descOff+4:descOff+8], uint32(len(s.Block))) //nolint:gosec
		descOff += wire.DescriptorSize

		copy(out[dataOff:], s.Block)
		dataOff += len(s.Block)
	}

	return out
}
