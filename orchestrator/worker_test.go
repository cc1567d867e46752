package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/corestability/engine/format"
	"github.com/corestability/engine/orchestrator"
	"github.com/corestability/engine/scalar"
	"github.com/corestability/engine/wire"
	"github.com/stretchr/testify/require"
)

func testSchema() wire.Schema {
	return wire.Schema{{Name: "x", Type: format.Float64, MaxContentChars: 8}}
}

func runWorker(t *testing.T) (chan orchestrator.Command, <-chan orchestrator.Event, func()) {
	t.Helper()

	commands := make(chan orchestrator.Command, 8)
	events := make(chan orchestrator.Event, 64)
	worker := orchestrator.NewWorker(events, 28, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx, commands) //nolint:errcheck
	}()

	return commands, events, func() {
		cancel()
		<-done
	}
}

func recvEvent(t *testing.T, events <-chan orchestrator.Event) orchestrator.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestWorkerInitEmitsLayoutReady(t *testing.T) {
	commands, events, stop := runWorker(t)
	defer stop()

	commands <- orchestrator.InitCommand{Schema: testSchema(), CharWidthHint: 8, ViewportHeight: 600}

	ev := recvEvent(t, events)
	ready, ok := ev.(orchestrator.LayoutReadyEvent)
	require.True(t, ok)
	require.Equal(t, scalar.PixelSize(28), ready.Layout.RowHeight)
}

func TestWorkerIngestCommitsAndAcks(t *testing.T) {
	commands, events, stop := runWorker(t)
	defer stop()

	schema := testSchema()
	commands <- orchestrator.InitCommand{Schema: schema, CharWidthHint: 8, ViewportHeight: 600}
	recvEvent(t, events) // LayoutReadyEvent

	buf, err := wire.Encode(schema, []wire.Row{{"x": 1.0}, {"x": 2.0}}, 0)
	require.NoError(t, err)
	commands <- orchestrator.IngestCommand{Buffer: buf, Seq: 0}

	totals, ok := recvEvent(t, events).(orchestrator.TotalRowsUpdatedEvent)
	require.True(t, ok)
	require.Equal(t, scalar.RowIndex(2), totals.TotalRows)

	ack, ok := recvEvent(t, events).(orchestrator.IngestAckEvent)
	require.True(t, ok)
	require.Equal(t, scalar.BatchSeq(0), ack.Seq)
}

func TestWorkerIngestSchemaMismatchEmitsNonFatalError(t *testing.T) {
	commands, events, stop := runWorker(t)
	defer stop()

	schema := testSchema()
	commands <- orchestrator.InitCommand{Schema: schema, CharWidthHint: 8, ViewportHeight: 600}
	recvEvent(t, events)

	badSchema := wire.Schema{{Name: "x", Type: format.Utf8, MaxContentChars: 8}}
	buf, err := wire.Encode(badSchema, []wire.Row{{"x": "oops"}}, 0)
	require.NoError(t, err)
	commands <- orchestrator.IngestCommand{Buffer: buf, Seq: 0}

	errEv, ok := recvEvent(t, events).(orchestrator.IngestErrorEvent)
	require.True(t, ok)
	require.False(t, errEv.Fatal)

	ack, ok := recvEvent(t, events).(orchestrator.IngestAckEvent)
	require.True(t, ok)
	require.Equal(t, scalar.BatchSeq(0), ack.Seq)
}

func TestWorkerSetWindowEmitsPackedWindow(t *testing.T) {
	commands, events, stop := runWorker(t)
	defer stop()

	schema := testSchema()
	commands <- orchestrator.InitCommand{Schema: schema, CharWidthHint: 8, ViewportHeight: 600}
	recvEvent(t, events)

	buf, err := wire.Encode(schema, []wire.Row{{"x": 1.0}, {"x": 2.0}, {"x": 3.0}}, 0)
	require.NoError(t, err)
	commands <- orchestrator.IngestCommand{Buffer: buf, Seq: 0}
	recvEvent(t, events) // TotalRowsUpdatedEvent
	recvEvent(t, events) // IngestAckEvent

	commands <- orchestrator.SetWindowCommand{StartRow: 1, RowCount: 2}

	winEv, ok := recvEvent(t, events).(orchestrator.WindowUpdateEvent)
	require.True(t, ok)
	require.Equal(t, scalar.RowIndex(1), winEv.Window.StartRow)
	require.Equal(t, scalar.RowIndex(2), winEv.Window.RowCount)
}

func TestWorkerResizeRecomputesViewportRows(t *testing.T) {
	commands, events, stop := runWorker(t)
	defer stop()

	commands <- orchestrator.InitCommand{Schema: testSchema(), CharWidthHint: 8, ViewportHeight: 600}
	recvEvent(t, events)

	commands <- orchestrator.ResizeViewportCommand{Height: 280}

	ready, ok := recvEvent(t, events).(orchestrator.LayoutReadyEvent)
	require.True(t, ok)
	require.Equal(t, uint32(11), ready.Layout.ViewportRows)
}

func TestWorkerFrameAckEmitsBackpressureOnlyOnTransition(t *testing.T) {
	commands, events, stop := runWorker(t)
	defer stop()

	commands <- orchestrator.InitCommand{Schema: testSchema(), CharWidthHint: 8, ViewportHeight: 600}
	recvEvent(t, events)

	for i := 0; i < 3; i++ {
		commands <- orchestrator.FrameAckCommand{RenderMs: 30}
	}
	commands <- orchestrator.FrameAckCommand{RenderMs: 30}

	bp, ok := recvEvent(t, events).(orchestrator.BackpressureEvent)
	require.True(t, ok)
	require.Equal(t, "SHED", bp.Strategy.String())

	commands <- orchestrator.FrameAckCommand{RenderMs: 30}
	select {
	case ev := <-events:
		t.Fatalf("unexpected second event on unchanged strategy: %#v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWorkerTerminateStopsRun(t *testing.T) {
	commands := make(chan orchestrator.Command, 8)
	events := make(chan orchestrator.Event, 8)
	worker := orchestrator.NewWorker(events, 28, nil, nil)

	done := make(chan error, 1)
	go func() { done <- worker.Run(context.Background(), commands) }()

	commands <- orchestrator.TerminateCommand{}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on TerminateCommand")
	}
}
