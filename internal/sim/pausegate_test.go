package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// testCommand is a minimal Command for exercising the gate in isolation.
type testCommand struct {
	name string
}

func (testCommand) isCommand()     {}
func (c testCommand) Kind() string { return c.name }

// TestGateRunsImmediatelyWhenUnpaused verifies that an unpaused gate
// executes commands inline.
func TestGateRunsImmediatelyWhenUnpaused(t *testing.T) {
	t.Parallel()

	var ran []string
	gate := NewGate(func(_ context.Context, cmd Command) error {
		ran = append(ran, cmd.Kind())
		return nil
	}, 0)

	deferred, err := gate.Do(context.Background(), testCommand{name: "a"})
	require.NoError(t, err)
	require.False(t, deferred)
	require.Equal(t, []string{"a"}, ran)
	require.Zero(t, gate.QueueLen())
}

// TestGateQueuesWhilePaused verifies that a paused gate captures commands
// without executing them.
func TestGateQueuesWhilePaused(t *testing.T) {
	t.Parallel()

	var ran []string
	gate := NewGate(func(_ context.Context, cmd Command) error {
		ran = append(ran, cmd.Kind())
		return nil
	}, 0)

	gate.Pause()
	require.True(t, gate.Paused())

	deferred, err := gate.Do(context.Background(), testCommand{name: "a"})
	require.NoError(t, err)
	require.True(t, deferred)

	deferred, err = gate.Do(context.Background(), testCommand{name: "b"})
	require.NoError(t, err)
	require.True(t, deferred)

	require.Empty(t, ran)
	require.Equal(t, 2, gate.QueueLen())
}

// TestGateResumeDrainsFIFO verifies the queued commands run in submission
// order, each exactly once.
func TestGateResumeDrainsFIFO(t *testing.T) {
	t.Parallel()

	var ran []string
	gate := NewGate(func(_ context.Context, cmd Command) error {
		ran = append(ran, cmd.Kind())
		return nil
	}, 0)

	gate.Pause()
	for _, name := range []string{"a", "b", "c"} {
		_, err := gate.Do(context.Background(), testCommand{name: name})
		require.NoError(t, err)
	}

	gate.Resume(context.Background())

	require.False(t, gate.Paused())
	require.Equal(t, []string{"a", "b", "c"}, ran)
	require.Zero(t, gate.QueueLen())

	// A second resume finds nothing to run.
	gate.Resume(context.Background())
	require.Equal(t, []string{"a", "b", "c"}, ran)
}

// TestGateFailedCommandSkipped verifies a failing queued command does not
// block the rest of the drain.
func TestGateFailedCommandSkipped(t *testing.T) {
	t.Parallel()

	var ran []string
	gate := NewGate(func(_ context.Context, cmd Command) error {
		if cmd.Kind() == "boom" {
			return errors.New("generation failed")
		}
		ran = append(ran, cmd.Kind())
		return nil
	}, 0)

	gate.Pause()
	for _, name := range []string{"a", "boom", "b"} {
		_, err := gate.Do(context.Background(), testCommand{name: name})
		require.NoError(t, err)
	}

	gate.Resume(context.Background())
	require.Equal(t, []string{"a", "b"}, ran)
}

// TestGatePauseWhileDrainingRequeues verifies commands submitted after a
// fresh pause land in a new queue rather than executing.
func TestGatePauseWhileDrainingRequeues(t *testing.T) {
	t.Parallel()

	gate := NewGate(func(_ context.Context, _ Command) error {
		return nil
	}, 0)

	gate.Pause()
	_, err := gate.Do(context.Background(), testCommand{name: "a"})
	require.NoError(t, err)

	gate.Resume(context.Background())
	gate.Pause()

	deferred, err := gate.Do(context.Background(), testCommand{name: "b"})
	require.NoError(t, err)
	require.True(t, deferred)
	require.Equal(t, 1, gate.QueueLen())
}
