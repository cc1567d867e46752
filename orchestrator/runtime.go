package orchestrator

import (
	"context"
	"iter"

	"github.com/corestability/engine/internal/telemetry"
	"github.com/corestability/engine/scalar"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runtime wires a Worker and a Pump together over command/event channels
// and runs them on an errgroup: two isolated cooperative tasks
// communicating over an ordered channel, with goroutines standing in
// for separate runtimes.
type Runtime struct {
	Commands chan Command
	Events   chan Event

	Worker *Worker
	Pump   *Pump
}

// NewRuntime allocates the command/event channels and the Worker/Pump
// pair. commandBuf bounds how many commands may be in flight on the wire
// before the sender blocks; it has no bearing on MaxQueueDepth, which the
// Worker enforces on its own internal ingest queue.
func NewRuntime(rowHeight scalar.PixelSize, commandBuf int, log *zap.Logger, metrics *telemetry.Metrics) *Runtime {
	commands := make(chan Command, commandBuf)
	events := make(chan Event, commandBuf)

	return &Runtime{
		Commands: commands,
		Events:   events,
		Worker:   NewWorker(events, rowHeight, log, metrics),
		Pump:     NewPump(commands),
	}
}

// Run starts the worker loop, the event-dispatch loop (which feeds
// IngestAckEvent back into the pump and forwards every event to onEvent),
// and the pump's source drain, all under one errgroup. It returns once
// all three finish; a TERMINATE or a context cancellation winds down the
// worker and event loops even if the pump already returned.
func (r *Runtime) Run(ctx context.Context, source iter.Seq2[[]byte, error], onEvent func(Event)) error {
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(r.Events)

		return r.Worker.Run(gctx, r.Commands)
	})

	group.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case ev, ok := <-r.Events:
				if !ok {
					return nil
				}

				r.Pump.HandleEvent(ev)
				if onEvent != nil {
					onEvent(ev)
				}
			}
		}
	})

	group.Go(func() error {
		return r.Pump.Run(gctx, source)
	})

	return group.Wait()
}
