// Package orchestrator implements the ingest orchestrator: a worker
// endpoint that owns the column store and a main-side pump that feeds
// it record batches under a one-in-flight ACK discipline, plus the
// scroll-driven window request and render-latency feedback paths.
package orchestrator

import (
	"github.com/corestability/engine/scalar"
	"github.com/corestability/engine/wire"
)

// Command is one message posted from the pump (or a consumer-facing
// caller) to the worker endpoint.
type Command interface{ isCommand() }

// InitCommand establishes the store's schema and initial layout inputs.
type InitCommand struct {
	Schema         wire.Schema
	CharWidthHint  scalar.PixelSize
	RowHeightHint  scalar.PixelSize
	ViewportHeight scalar.PixelSize
}

// IngestCommand carries one wire-encoded batch buffer, ownership
// transferred to the worker: the caller must not read or write Buffer
// after posting it.
type IngestCommand struct {
	Buffer []byte
	Seq    scalar.BatchSeq
}

// SetWindowCommand requests the window covering [StartRow, StartRow+RowCount).
type SetWindowCommand struct {
	StartRow scalar.RowIndex
	RowCount uint32
}

// ResizeViewportCommand updates the viewport height used for layout.
type ResizeViewportCommand struct {
	Height scalar.PixelSize
}

// FrameAckCommand reports a rendered frame's elapsed wall time, feeding
// the backpressure controller.
type FrameAckCommand struct {
	RenderMs scalar.Milliseconds
	Seq      scalar.BatchSeq
}

// TerminateCommand drops the worker cleanly.
type TerminateCommand struct{}

func (InitCommand) isCommand()           {}
func (IngestCommand) isCommand()         {}
func (SetWindowCommand) isCommand()      {}
func (ResizeViewportCommand) isCommand() {}
func (FrameAckCommand) isCommand()       {}
func (TerminateCommand) isCommand()      {}
