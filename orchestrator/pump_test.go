package orchestrator_test

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/corestability/engine/errs"
	"github.com/corestability/engine/orchestrator"
	"github.com/corestability/engine/scalar"
	"github.com/stretchr/testify/require"
)

func seqSource(n int) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for i := 0; i < n; i++ {
			if !yield([]byte{byte(i)}, nil) {
				return
			}
		}
	}
}

func TestPumpOneInFlightGatesOnAck(t *testing.T) {
	commands := make(chan orchestrator.Command)
	pump := orchestrator.NewPump(commands)

	runErr := make(chan error, 1)
	go func() { runErr <- pump.Run(context.Background(), seqSource(2)) }()

	first := (<-commands).(orchestrator.IngestCommand)
	require.Equal(t, scalar.BatchSeq(0), first.Seq)

	select {
	case <-commands:
		t.Fatal("pump posted a second INGEST before the first was acked")
	case <-time.After(50 * time.Millisecond):
	}

	pump.HandleEvent(orchestrator.IngestAckEvent{Seq: first.Seq})

	second := (<-commands).(orchestrator.IngestCommand)
	require.Equal(t, scalar.BatchSeq(1), second.Seq)
	pump.HandleEvent(orchestrator.IngestAckEvent{Seq: second.Seq})

	term := (<-commands).(orchestrator.TerminateCommand)
	_ = term

	require.NoError(t, <-runErr)
}

func TestPumpCrashRejectsPendingAck(t *testing.T) {
	commands := make(chan orchestrator.Command)
	pump := orchestrator.NewPump(commands)

	runErr := make(chan error, 1)
	go func() { runErr <- pump.Run(context.Background(), seqSource(1)) }()

	<-commands // the single INGEST command

	pump.Crash()

	err := <-runErr
	require.True(t, errors.Is(err, errs.ErrTransportCrash))
}

func TestPumpAbortRejectsPendingAck(t *testing.T) {
	commands := make(chan orchestrator.Command)
	pump := orchestrator.NewPump(commands)

	runErr := make(chan error, 1)
	go func() { runErr <- pump.Run(context.Background(), seqSource(1)) }()

	<-commands

	pump.Abort()

	err := <-runErr
	require.True(t, errors.Is(err, errs.ErrAborted))
}

func TestPumpTerminateResolvesNotRejects(t *testing.T) {
	commands := make(chan orchestrator.Command)
	pump := orchestrator.NewPump(commands)

	runErr := make(chan error, 1)
	go func() { runErr <- pump.Run(context.Background(), seqSource(1)) }()

	<-commands

	pump.Terminate()

	// Run is awaiting the ack for the one posted batch; Terminate resolves
	// it with nil, so the pump proceeds to post its own TerminateCommand
	// and Run returns with no error.
	select {
	case cmd := <-commands:
		_, ok := cmd.(orchestrator.TerminateCommand)
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("pump did not post TerminateCommand after Terminate() resolved its pending ack")
	}

	require.NoError(t, <-runErr)
}

func TestPumpSourceErrorStopsWithoutTerminate(t *testing.T) {
	commands := make(chan orchestrator.Command, 1)
	pump := orchestrator.NewPump(commands)

	boom := errors.New("boom")
	source := func(yield func([]byte, error) bool) {
		yield(nil, boom)
	}

	err := pump.Run(context.Background(), source)
	require.ErrorIs(t, err, boom)

	select {
	case cmd := <-commands:
		t.Fatalf("unexpected command posted after source error: %#v", cmd)
	default:
	}
}

func TestSetWindowComputesStartRowAndRowCount(t *testing.T) {
	commands := make(chan orchestrator.Command, 1)

	err := orchestrator.SetWindow(context.Background(), commands, 140, 28, 10)
	require.NoError(t, err)

	cmd := (<-commands).(orchestrator.SetWindowCommand)
	require.Equal(t, scalar.RowIndex(5), cmd.StartRow)
	require.Equal(t, uint32(10+2*orchestrator.Overscan), cmd.RowCount)
}
