package orchestrator_test

import (
	"context"
	"iter"
	"testing"
	"time"

	"github.com/corestability/engine/format"
	"github.com/corestability/engine/orchestrator"
	"github.com/corestability/engine/wire"
	"github.com/stretchr/testify/require"
)

func TestRuntimeEndToEndIngestAndTerminate(t *testing.T) {
	schema := wire.Schema{{Name: "x", Type: format.Float64, MaxContentChars: 8}}

	rt := orchestrator.NewRuntime(28, 4, nil, nil)
	rt.Commands <- orchestrator.InitCommand{Schema: schema, CharWidthHint: 8, ViewportHeight: 600}

	rowBatches := func(yield func([]wire.Row, error) bool) {
		yield([]wire.Row{{"x": 1.0}, {"x": 2.0}}, nil)
	}
	source := wire.EncodeStream(schema, rowBatches)

	var seen []orchestrator.Event
	onEvent := func(ev orchestrator.Event) { seen = append(seen, ev) }

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := rt.Run(ctx, source, onEvent)
	require.NoError(t, err)

	var gotTotals, gotAck bool
	for _, ev := range seen {
		switch e := ev.(type) {
		case orchestrator.TotalRowsUpdatedEvent:
			gotTotals = true
			require.Equal(t, uint64(2), uint64(e.TotalRows))
		case orchestrator.IngestAckEvent:
			gotAck = true
		}
	}
	require.True(t, gotTotals, "expected a TotalRowsUpdatedEvent")
	require.True(t, gotAck, "expected an IngestAckEvent")
}

func TestRuntimeStopsOnContextCancellation(t *testing.T) {
	rt := orchestrator.NewRuntime(28, 4, nil, nil)
	rt.Commands <- orchestrator.InitCommand{
		Schema:         wire.Schema{{Name: "x", Type: format.Float64, MaxContentChars: 8}},
		CharWidthHint:  8,
		ViewportHeight: 600,
	}

	// An unbounded source: the worker never gets a TerminateCommand, so the
	// only way Run stops is via context cancellation.
	unboundedSource := func(yield func([]byte, error) bool) {
		schema := wire.Schema{{Name: "x", Type: format.Float64, MaxContentChars: 8}}
		for {
			buf, err := wire.Encode(schema, []wire.Row{{"x": 1.0}}, 0)
			if !yield(buf, err) {
				return
			}
		}
	}
	var source iter.Seq2[[]byte, error] = unboundedSource

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- rt.Run(ctx, source, nil) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-runErr:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("runtime did not stop on context cancellation")
	}
}
