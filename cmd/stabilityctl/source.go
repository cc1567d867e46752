package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/corestability/engine/wire"
)

// readBatches streams newline-delimited JSON row objects from path,
// grouping them into batches of up to batchSize rows, in file order.
func readBatches(path string, batchSize int) iter.Seq2[[]wire.Row, error] {
	return func(yield func([]wire.Row, error) bool) {
		f, err := os.Open(path) //nolint:gosec
		if err != nil {
			yield(nil, fmt.Errorf("open input: %w", err))
			return
		}
		defer f.Close()

		dec := json.NewDecoder(bufio.NewReader(f))

		batch := make([]wire.Row, 0, batchSize)
		for {
			var row wire.Row
			if err := dec.Decode(&row); err != nil {
				if err == io.EOF {
					break
				}
				yield(nil, fmt.Errorf("decode row: %w", err))
				return
			}

			batch = append(batch, row)
			if len(batch) == batchSize {
				if !yield(batch, nil) {
					return
				}
				batch = make([]wire.Row, 0, batchSize)
			}
		}

		if len(batch) > 0 {
			yield(batch, nil)
		}
	}
}

// encodedSource adapts a lazy sequence of row batches into the
// wire-encoded buffer sequence the orchestrator pump consumes.
func encodedSource(schema wire.Schema, batches iter.Seq2[[]wire.Row, error]) iter.Seq2[[]byte, error] {
	return wire.EncodeStream(schema, batches)
}
