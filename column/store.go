package column

import (
	"fmt"

	"github.com/corestability/engine/errs"
	"github.com/corestability/engine/format"
	"github.com/corestability/engine/scalar"
	"github.com/corestability/engine/wire"
)

// Store is the growable columnar store for one schema: one Column per
// schema entry, committed batch by batch.
type Store struct {
	schema  wire.Schema
	columns []Column
	rows    scalar.RowIndex
}

// NewStore allocates an empty store for schema, one Column per entry in
// schema order.
func NewStore(schema wire.Schema) *Store {
	cols := make([]Column, len(schema))
	for i, entry := range schema {
		cols[i] = New(entry.Type)
	}

	return &Store{schema: schema, columns: cols}
}

// CommitResult reports the outcome of a successful Commit.
type CommitResult struct {
	Seq       uint32
	RowsAdded scalar.RowIndex
	TotalRows scalar.RowIndex
}

// Schema returns the store's schema.
func (s *Store) Schema() wire.Schema { return s.schema }

// RowCount returns the store's committed row count.
func (s *Store) RowCount() scalar.RowIndex { return s.rows }

// Commit parses a wire buffer and applies it to the store following the
// batch commit protocol: parse, pre-check every column's declared type
// against the store's schema, append each present column's fragment,
// post-check that every column's row count grew by exactly the batch's
// row count, and only then advance the store's total row count. A
// pre-check or post-check failure leaves TotalRows unadvanced; columns
// that did append before a post-check failure are not rolled back, since
// a failed batch is expected to be followed by a fresh, non-overlapping
// retry rather than a replay of the same seq.
func (s *Store) Commit(buf []byte) (CommitResult, error) {
	batch, err := wire.Parse(buf)
	if err != nil {
		return CommitResult{}, fmt.Errorf("Batch 0: %w", err)
	}

	if err := s.checkTypes(batch); err != nil {
		return CommitResult{}, fmt.Errorf("Batch %d: %w", batch.Seq, err)
	}

	preRows := make([]int, len(s.columns))
	for i, col := range s.columns {
		preRows[i] = col.RowCount()
	}

	for i, col := range s.columns {
		if i >= len(batch.Columns) {
			continue
		}
		if err := col.Append(batch.Columns[i]); err != nil {
			return CommitResult{}, fmt.Errorf("Batch %d: %w", batch.Seq, err)
		}
	}

	for i, col := range s.columns {
		want := preRows[i] + int(batch.RowCount)
		if col.RowCount() != want {
			name := ""
			if i < len(s.schema) {
				name = s.schema[i].Name
			}

			violation := &errs.IntegrityViolation{ColumnName: name, ColumnRows: col.RowCount(), ExpectedRows: want}

			return CommitResult{}, fmt.Errorf("Batch %d: %w", batch.Seq, violation)
		}
	}

	s.rows = s.rows.Add(uint64(batch.RowCount))

	return CommitResult{Seq: batch.Seq, RowsAdded: scalar.RowIndex(batch.RowCount), TotalRows: s.rows}, nil
}

func (s *Store) checkTypes(batch wire.ParsedBatch) error {
	n := len(s.schema)
	if len(batch.Columns) < n {
		n = len(batch.Columns)
	}

	for i := 0; i < n; i++ {
		if s.schema[i].Type != batch.Columns[i].Type {
			return &errs.SchemaMismatch{
				ColumnIndex: i,
				Name:        s.schema[i].Name,
				Expected:    s.schema[i].Type.String(),
				Got:         batch.Columns[i].Type.String(),
			}
		}
	}

	return nil
}

// ColumnSlice is a window's raw contribution from one store column:
// already-rebased wire bytes for rows [start, start+count), ready to be
// reassembled into a framed buffer by the window packer.
type ColumnSlice struct {
	Name  string
	Type  format.ColumnType
	Block []byte
}

// Slice returns, for every schema column, the rebased wire-format block
// covering rows [start, start+count). The caller must pre-clamp start
// and count to [0, RowCount()].
func (s *Store) Slice(start, count scalar.RowIndex) []ColumnSlice {
	out := make([]ColumnSlice, len(s.columns))
	for i, col := range s.columns {
		out[i] = ColumnSlice{
			Name:  s.schema[i].Name,
			Type:  col.ColumnType(),
			Block: col.CopySlice(start.Int(), count.Int()),
		}
	}

	return out
}
