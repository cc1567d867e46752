package orchestrator

import (
	"context"
	"errors"

	"github.com/corestability/engine/backpressure"
	"github.com/corestability/engine/column"
	"github.com/corestability/engine/errs"
	"github.com/corestability/engine/internal/options"
	"github.com/corestability/engine/internal/telemetry"
	"github.com/corestability/engine/layout"
	"github.com/corestability/engine/scalar"
	"github.com/corestability/engine/window"
	"go.uber.org/zap"
)

// MaxQueueDepth bounds the worker's internal ingest queue.
const MaxQueueDepth = 64

// Overscan is the number of extra rows rendered above and below the
// visible viewport.
const Overscan = 3

type queuedIngest struct {
	seq scalar.BatchSeq
	buf []byte
}

// Worker is the ingest endpoint: it owns the column store
// exclusively, drains ingest commands one at a time through the batch
// commit protocol, and tracks the currently requested window so it can
// re-emit WINDOW_UPDATE once its queue drains.
type Worker struct {
	store *column.Store
	log   *zap.Logger

	charWidthHint  scalar.PixelSize
	rowHeight      scalar.PixelSize
	viewportHeight scalar.PixelSize
	layout         layout.ViewportLayout

	queue []queuedIngest

	windowSet   bool
	windowStart scalar.RowIndex
	windowRows  uint32
	windowSeq   scalar.BatchSeq

	bp *backpressure.Controller

	events  chan<- Event
	metrics *telemetry.Metrics
}

// WorkerOption configures optional Worker construction parameters beyond
// NewWorker's required arguments.
type WorkerOption = options.Option[*Worker]

// WithQueueCapacityHint pre-allocates the worker's internal ingest queue
// to capacity n, avoiding repeated growth when a deployment is known to
// run under sustained backpressure. n is clamped to MaxQueueDepth.
func WithQueueCapacityHint(n int) WorkerOption {
	return options.NoError(func(w *Worker) {
		if n > MaxQueueDepth {
			n = MaxQueueDepth
		}
		if n > 0 {
			w.queue = make([]queuedIngest, 0, n)
		}
	})
}

// NewWorker constructs a Worker that posts its events to events. rowHeight
// is the fixed per-row pixel height used for layout: a renderer constant,
// not schema-derived. metrics may be nil, in which case the worker simply
// does not record any.
func NewWorker(events chan<- Event, rowHeight scalar.PixelSize, log *zap.Logger, metrics *telemetry.Metrics, opts ...WorkerOption) *Worker {
	w := &Worker{
		events:    events,
		rowHeight: rowHeight,
		bp:        backpressure.New(),
		log:       log,
		metrics:   metrics,
	}

	if err := options.Apply(w, opts...); err != nil {
		// NoError-wrapped options never return an error; this guards
		// against a future option that does without changing the
		// constructor's signature.
		if w.log != nil {
			w.log.Warn("worker option application failed", zap.Error(err))
		}
	}

	return w
}

// Run drains commands until a TerminateCommand is received, ctx is
// cancelled, or the channel closes.
func (w *Worker) Run(ctx context.Context, commands <-chan Command) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-commands:
			if !ok {
				return nil
			}

			if !w.handle(ctx, cmd) {
				return nil
			}
		}
	}
}

func (w *Worker) handle(ctx context.Context, cmd Command) bool {
	switch c := cmd.(type) {
	case InitCommand:
		w.handleInit(ctx, c)
	case IngestCommand:
		w.handleIngest(ctx, c)
	case SetWindowCommand:
		w.handleSetWindow(ctx, c)
	case ResizeViewportCommand:
		w.handleResize(ctx, c)
	case FrameAckCommand:
		w.handleFrameAck(ctx, c)
	case TerminateCommand:
		return false
	}

	return true
}

func (w *Worker) handleInit(ctx context.Context, c InitCommand) {
	w.store = column.NewStore(c.Schema)
	w.charWidthHint = c.CharWidthHint
	w.viewportHeight = c.ViewportHeight
	if c.RowHeightHint != 0 {
		w.rowHeight = c.RowHeightHint
	}

	cols := layout.Resolve(c.Schema, w.charWidthHint)
	w.layout = layout.Compute(cols, w.rowHeight, 0, w.viewportHeight)
	w.emit(ctx, LayoutReadyEvent{Layout: w.layout})
}

func (w *Worker) handleIngest(ctx context.Context, c IngestCommand) {
	if w.bp.Current() == backpressure.Shed && len(w.queue) >= MaxQueueDepth {
		evicted := w.queue[0]
		w.queue = w.queue[1:]
		w.emit(ctx, IngestErrorEvent{Seq: evicted.seq, Message: errs.BatchMessage(uint32(evicted.seq), errs.ErrShed)}) //nolint:gosec
		w.emit(ctx, IngestAckEvent{Seq: evicted.seq})
	}

	w.queue = append(w.queue, queuedIngest{seq: c.Seq, buf: c.Buffer})
	w.drainQueue(ctx)
}

// drainQueue processes every queued ingest command in order, then — once
// the queue is empty — re-packs and emits the currently requested window
// exactly once, coalescing any intermediate updates the loop would
// otherwise have produced under buffered backpressure (harmless under
// nominal load, where the queue is ordinarily never more than one deep).
func (w *Worker) drainQueue(ctx context.Context) {
	for len(w.queue) > 0 {
		item := w.queue[0]
		w.queue = w.queue[1:]
		w.commitOne(ctx, item)
	}

	if w.windowSet {
		w.emitWindow(ctx)
	}
}

func (w *Worker) commitOne(ctx context.Context, item queuedIngest) {
	result, err := w.store.Commit(item.buf)
	if err != nil {
		var violation *errs.IntegrityViolation
		fatal := errors.As(err, &violation)

		w.emit(ctx, IngestErrorEvent{Seq: item.seq, Message: err.Error(), Fatal: fatal})
		w.emit(ctx, IngestAckEvent{Seq: item.seq})

		if w.log != nil {
			w.log.Warn("ingest commit failed", zap.Uint32("seq", uint32(item.seq)), zap.Error(err)) //nolint:gosec
		}

		if w.metrics != nil {
			w.metrics.IngestErrors.WithLabelValues(boolLabel(fatal)).Inc()
			w.metrics.IngestAcks.Inc()
		}

		return
	}

	w.layout.TotalRows = result.TotalRows
	w.layout.TotalHeight = scalar.PixelSize(result.TotalRows) * w.rowHeight
	w.emit(ctx, TotalRowsUpdatedEvent{TotalRows: result.TotalRows})
	w.emit(ctx, IngestAckEvent{Seq: item.seq})

	if w.metrics != nil {
		w.metrics.CommittedRows.Add(float64(result.RowsAdded))
		w.metrics.IngestAcks.Inc()
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}

	return "false"
}

func (w *Worker) handleSetWindow(ctx context.Context, c SetWindowCommand) {
	w.windowSet = true
	w.windowStart = c.StartRow
	w.windowRows = c.RowCount
	w.emitWindow(ctx)
}

func (w *Worker) emitWindow(ctx context.Context) {
	win := window.Pack(w.store, w.windowStart, scalar.RowIndex(w.windowRows), w.windowSeq, w.layout)
	w.windowSeq = w.windowSeq.Next()
	w.emit(ctx, WindowUpdateEvent{Window: win})

	if w.metrics != nil {
		w.metrics.WindowUpdates.Inc()
	}
}

func (w *Worker) handleResize(ctx context.Context, c ResizeViewportCommand) {
	w.viewportHeight = c.Height
	w.layout.ViewportRows = layout.ComputeViewportRows(w.viewportHeight, w.rowHeight)
	w.emit(ctx, LayoutReadyEvent{Layout: w.layout})
}

func (w *Worker) handleFrameAck(ctx context.Context, c FrameAckCommand) {
	if w.metrics != nil {
		w.metrics.RenderLatencyMs.Observe(float64(c.RenderMs))
	}

	event, changed := w.bp.Observe(c.RenderMs)
	if !changed {
		return
	}

	w.emit(ctx, BackpressureEvent{Strategy: event.Strategy, QueueDepth: len(w.queue), AvgRenderMs: event.RollingAvg})

	if w.metrics != nil {
		w.metrics.BackpressureState.Set(float64(event.Strategy))
	}
}

func (w *Worker) emit(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}
