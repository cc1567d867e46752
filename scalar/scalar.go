// Package scalar defines branded non-negative integer types for quantities
// that are otherwise indistinguishable uint-like numbers (row indices,
// pixel sizes, milliseconds, batch sequence numbers, pool slots). Keeping
// them as distinct named types makes cross-category assignment a compile
// time error instead of a silent bug.
package scalar

// RowIndex identifies a row within a column or store, 0-based.
type RowIndex uint64

// PixelSize is a dimension in device pixels (row height, viewport height,
// computed column width).
type PixelSize uint32

// Milliseconds is a duration or latency sample in whole milliseconds.
type Milliseconds uint32

// BatchSeq is a monotonically increasing counter: one sequence space for
// ingest commands, a separate one for window emissions.
type BatchSeq uint32

// PoolSlot identifies a reusable buffer slot handed out by an internal pool.
type PoolSlot uint32

// Add returns r+n as a RowIndex.
func (r RowIndex) Add(n uint64) RowIndex { return r + RowIndex(n) }

// Int returns r as a plain int for slice indexing.
func (r RowIndex) Int() int { return int(r) }

// Next returns the next sequence number.
func (s BatchSeq) Next() BatchSeq { return s + 1 }
