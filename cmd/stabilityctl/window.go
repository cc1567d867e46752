package main

import (
	"encoding/json"
	"fmt"

	"github.com/corestability/engine/column"
	"github.com/corestability/engine/format"
	"github.com/corestability/engine/layout"
	"github.com/corestability/engine/scalar"
	"github.com/corestability/engine/wire"
	"github.com/corestability/engine/window"
	"github.com/spf13/cobra"
)

func newWindowCmd() *cobra.Command {
	var (
		schemaPath string
		inputPath  string
		start      uint64
		count      uint64
		batchSize  int
		stats      bool
	)

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Ingest a file synchronously and print the decoded rows of one window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(schemaPath, inputPath, start, count, batchSize, stats)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to the schema YAML file (required)")
	cmd.Flags().StringVar(&inputPath, "input", "", "path to a newline-delimited JSON row file (required)")
	cmd.Flags().Uint64Var(&start, "start", 0, "window start row")
	cmd.Flags().Uint64Var(&count, "count", 50, "window row count")
	cmd.Flags().IntVar(&batchSize, "batch-size", 256, "rows per ingest batch")
	cmd.Flags().BoolVar(&stats, "stats", false, "print a min/max/avg summary for each float64 column instead of the decoded rows")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func printFloat64Stats(schema wire.Schema, parsed wire.ParsedBatch) {
	for i, entry := range schema {
		if entry.Type != format.Float64 || i >= len(parsed.Columns) {
			continue
		}

		values, cleanup := wire.MaterializeFloat64Column(parsed.Columns[i])
		if len(values) == 0 {
			cleanup()
			continue
		}

		min, max, sum := values[0], values[0], 0.0
		for _, v := range values {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			sum += v
		}
		cleanup()

		fmt.Printf("%s: min=%.4f max=%.4f avg=%.4f (n=%d)\n", entry.Name, min, max, sum/float64(len(values)), len(values))
	}
}

func runWindow(schemaPath, inputPath string, start, count uint64, batchSize int, stats bool) error {
	schema, err := wire.LoadSchemaFile(schemaPath)
	if err != nil {
		return err
	}

	store := column.NewStore(schema)

	seq := uint32(0)
	for rows, batchErr := range readBatches(inputPath, batchSize) {
		if batchErr != nil {
			return batchErr
		}

		buf, encErr := wire.Encode(schema, rows, seq)
		if encErr != nil {
			return encErr
		}

		if _, commitErr := store.Commit(buf); commitErr != nil {
			return commitErr
		}

		seq++
	}

	cols := layout.Resolve(schema, layout.DefaultCharWidthHint)
	lay := layout.Compute(cols, 28, store.RowCount(), 600)

	win := window.Pack(store, scalar.RowIndex(start), scalar.RowIndex(count), 0, lay)

	parsed, err := wire.Parse(win.Buffer)
	if err != nil {
		return fmt.Errorf("parse packed window: %w", err)
	}

	fmt.Printf("window: startRow=%d rowCount=%d totalRows=%d\n", win.StartRow, win.RowCount, store.RowCount())

	if stats {
		printFloat64Stats(schema, parsed)
		return nil
	}

	rows := wire.DecodeRows(schema, parsed)

	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}
