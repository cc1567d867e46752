// Package consumerstore implements the consumer-facing store: an
// immutable-snapshot state container, owned solely by the main task, that
// applies orchestrator events and fans out to subscribers synchronously
// after every mutation that actually changes the snapshot.
package consumerstore

import (
	"github.com/corestability/engine/backpressure"
	"github.com/corestability/engine/layout"
	"github.com/corestability/engine/orchestrator"
	"github.com/corestability/engine/scalar"
	"github.com/corestability/engine/window"
)

// Status mirrors the consumer-visible lifecycle of the pipeline.
type Status int

const (
	Idle Status = iota
	Streaming
	Complete
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Complete:
		return "complete"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Backpressure is the consumer-visible backpressure snapshot.
type Backpressure struct {
	Strategy    backpressure.Strategy
	QueueDepth  int
	AvgRenderMs scalar.Milliseconds
}

// State is one immutable snapshot of the pipeline's consumer-visible
// state. Pitch of 0 means "unset; use Layout.RowHeight".
type State struct {
	Status       Status
	Layout       *layout.ViewportLayout
	Window       *window.DataWindow
	Backpressure Backpressure
	TotalRows    scalar.RowIndex
	Err          string
	Pitch        scalar.PixelSize
}

// EffectiveRowHeight returns Pitch if set, else the layout's row height
// (0 if no layout has arrived yet).
func (s State) EffectiveRowHeight() scalar.PixelSize {
	if s.Pitch > 0 {
		return s.Pitch
	}
	if s.Layout != nil {
		return s.Layout.RowHeight
	}

	return 0
}

// Listener is notified synchronously after every state-changing mutation.
type Listener func(State)

// Store holds the current snapshot and its subscribers. Not safe for
// concurrent use from multiple goroutines without external
// synchronization — it is meant to be owned solely by the main task.
type Store struct {
	state     State
	listeners map[int]Listener
	nextID    int
}

// New constructs a Store starting at Idle with a zero-value snapshot.
func New() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// GetState returns the current snapshot.
func (s *Store) GetState() State { return s.state }

// Subscribe registers listener and returns an unsubscribe function.
func (s *Store) Subscribe(l Listener) func() {
	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() { delete(s.listeners, id) }
}

// SetStatus sets the consumer-visible status (and, for Error, the error
// message), notifying subscribers iff the snapshot actually changed.
func (s *Store) SetStatus(status Status, errMessage string) {
	next := s.state
	next.Status = status
	next.Err = errMessage
	s.commit(next)
}

// SetPitch records a consumer-measured row height override.
func (s *Store) SetPitch(pixels scalar.PixelSize) {
	next := s.state
	next.Pitch = pixels
	s.commit(next)
}

// Dispatch applies one orchestrator event to the state: LayoutReadyEvent,
// WindowUpdateEvent, BackpressureEvent, TotalRowsUpdatedEvent,
// IngestErrorEvent, IngestAckEvent. TotalRowsUpdatedEvent is suppressed
// if TotalRows is unchanged. IngestAckEvent carries no observable state
// by itself; it exists for the pump's ACK bookkeeping, so Dispatch is a
// no-op for it.
func (s *Store) Dispatch(ev orchestrator.Event) {
	next := s.state

	switch e := ev.(type) {
	case orchestrator.LayoutReadyEvent:
		lay := e.Layout
		next.Layout = &lay

	case orchestrator.WindowUpdateEvent:
		win := e.Window
		next.Window = &win
		if next.Status == Idle {
			next.Status = Streaming
		}

	case orchestrator.BackpressureEvent:
		next.Backpressure = Backpressure{
			Strategy:    e.Strategy,
			QueueDepth:  e.QueueDepth,
			AvgRenderMs: e.AvgRenderMs,
		}

	case orchestrator.TotalRowsUpdatedEvent:
		if e.TotalRows == s.state.TotalRows {
			return
		}
		next.TotalRows = e.TotalRows

	case orchestrator.IngestErrorEvent:
		next.Err = e.Message
		if e.Fatal {
			next.Status = Error
		}

	case orchestrator.IngestAckEvent:
		return

	default:
		return
	}

	s.commit(next)
}

// commit swaps the state pointer only when next differs from the
// current snapshot, then notifies every listener synchronously.
func (s *Store) commit(next State) {
	if statesEqual(s.state, next) {
		return
	}

	s.state = next

	for _, l := range s.listeners {
		l(next)
	}
}

func statesEqual(a, b State) bool {
	if a.Status != b.Status || a.TotalRows != b.TotalRows || a.Err != b.Err ||
		a.Pitch != b.Pitch || a.Backpressure != b.Backpressure {
		return false
	}
	if a.Layout != b.Layout {
		return false
	}
	if a.Window != b.Window {
		return false
	}

	return true
}
