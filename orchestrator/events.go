package orchestrator

import (
	"github.com/corestability/engine/backpressure"
	"github.com/corestability/engine/layout"
	"github.com/corestability/engine/scalar"
	"github.com/corestability/engine/window"
)

// Event is one message posted from the worker endpoint back to the main
// side.
type Event interface{ isEvent() }

// LayoutReadyEvent carries a freshly (re)computed viewport layout.
type LayoutReadyEvent struct {
	Layout layout.ViewportLayout
}

// WindowUpdateEvent carries a packed window; ownership of Window.Buffer
// transfers to the receiver.
type WindowUpdateEvent struct {
	Window window.DataWindow
}

// BackpressureEvent is emitted only on a strategy transition.
type BackpressureEvent struct {
	Strategy    backpressure.Strategy
	QueueDepth  int
	AvgRenderMs scalar.Milliseconds
}

// TotalRowsUpdatedEvent reports the store's new total row count.
type TotalRowsUpdatedEvent struct {
	TotalRows scalar.RowIndex
}

// IngestErrorEvent reports a failed (or SHED-evicted) ingest command.
// Fatal is set for errors that transition consumer status to error
// (currently only an integrity violation); Seq always matches the
// ingest command's own seq, never the wire header's.
type IngestErrorEvent struct {
	Seq     scalar.BatchSeq
	Message string
	Fatal   bool
}

// IngestAckEvent is emitted exactly once per ingest command, regardless
// of whether it also produced an IngestErrorEvent.
type IngestAckEvent struct {
	Seq scalar.BatchSeq
}

func (LayoutReadyEvent) isEvent()       {}
func (WindowUpdateEvent) isEvent()      {}
func (BackpressureEvent) isEvent()      {}
func (TotalRowsUpdatedEvent) isEvent()  {}
func (IngestErrorEvent) isEvent()       {}
func (IngestAckEvent) isEvent()         {}
