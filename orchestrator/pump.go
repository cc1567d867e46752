package orchestrator

import (
	"context"
	"iter"
	"sync"

	"github.com/corestability/engine/errs"
	"github.com/corestability/engine/scalar"
)

// Pump is the main-side endpoint: it reads wire-encoded batches from a
// lazy source and gates itself to exactly one in-flight ingest command
// at a time by registering an ACK channel per seq before posting the
// INGEST command and awaiting it before posting the next.
type Pump struct {
	commands chan<- Command

	mu      sync.Mutex
	pending map[scalar.BatchSeq]chan error
	nextSeq scalar.BatchSeq
}

// NewPump constructs a Pump that posts commands to commands.
func NewPump(commands chan<- Command) *Pump {
	return &Pump{commands: commands, pending: make(map[scalar.BatchSeq]chan error)}
}

// HandleEvent feeds a worker event into the pump's ACK bookkeeping.
// Callers run this from the goroutine draining the worker's event
// channel, ahead of (or alongside) any consumer-store dispatch of the
// same event.
func (p *Pump) HandleEvent(ev Event) {
	if ack, ok := ev.(IngestAckEvent); ok {
		p.resolve(ack.Seq, nil)
	}
}

// Crash rejects every outstanding ACK with a single errs.ErrTransportCrash,
// unblocking the pump on a worker transport failure.
func (p *Pump) Crash() { p.settleAll(errs.ErrTransportCrash) }

// Abort rejects every outstanding ACK with errs.ErrAborted.
func (p *Pump) Abort() { p.settleAll(errs.ErrAborted) }

// Terminate resolves (does not reject) every outstanding ACK — a
// controlled shutdown is not a failure.
func (p *Pump) Terminate() { p.settleAll(nil) }

func (p *Pump) register(seq scalar.BatchSeq) chan error {
	ch := make(chan error, 1)

	p.mu.Lock()
	p.pending[seq] = ch
	p.mu.Unlock()

	return ch
}

func (p *Pump) resolve(seq scalar.BatchSeq, err error) {
	p.mu.Lock()
	ch, ok := p.pending[seq]
	if ok {
		delete(p.pending, seq)
	}
	p.mu.Unlock()

	if ok {
		ch <- err
	}
}

func (p *Pump) settleAll(err error) {
	p.mu.Lock()
	pending := p.pending
	p.pending = make(map[scalar.BatchSeq]chan error)
	p.mu.Unlock()

	for _, ch := range pending {
		ch <- err
	}
}

// Run drains source, posting one INGEST command per batch and awaiting
// its ACK before posting the next. A producer error from source stops
// the pump immediately without posting TERMINATE. On a clean source
// exhaustion it posts TERMINATE and returns nil.
func (p *Pump) Run(ctx context.Context, source iter.Seq2[[]byte, error]) error {
	for buf, batchErr := range source {
		if batchErr != nil {
			return batchErr
		}

		seq := p.nextSeq
		p.nextSeq = p.nextSeq.Next()

		ackCh := p.register(seq)

		select {
		case p.commands <- IngestCommand{Buffer: buf, Seq: seq}:
		case <-ctx.Done():
			return ctx.Err()
		}

		select {
		case ackErr := <-ackCh:
			if ackErr != nil {
				return ackErr
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case p.commands <- TerminateCommand{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetWindow posts a SET_WINDOW command computed from a scroll position:
// startRow = floor(scrollTop/effectiveRowHeight), rowCount = viewportRows
// + 2*overscan.
func SetWindow(ctx context.Context, commands chan<- Command, scrollTop, effectiveRowHeight scalar.PixelSize, viewportRows uint32) error {
	var startRow scalar.RowIndex
	if effectiveRowHeight > 0 {
		startRow = scalar.RowIndex(scrollTop / effectiveRowHeight)
	}

	rowCount := viewportRows + 2*Overscan

	select {
	case commands <- SetWindowCommand{StartRow: startRow, RowCount: rowCount}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
