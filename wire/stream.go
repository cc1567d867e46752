package wire

import "iter"

// EncodeStream adapts a lazy sequence of row-batches into a lazy sequence
// of encoded wire buffers, preserving order and assigning a monotonic seq
// starting at 0. A producer error for a given batch is propagated to the
// sink as-is; encoding stops at the first error (either the producer's or
// Encode's).
func EncodeStream(schema Schema, batches iter.Seq2[[]Row, error]) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		seq := uint32(0)
		for rows, err := range batches {
			if err != nil {
				yield(nil, err)
				return
			}

			buf, encErr := Encode(schema, rows, seq)
			if !yield(buf, encErr) {
				return
			}
			if encErr != nil {
				return
			}

			seq++
		}
	}
}
