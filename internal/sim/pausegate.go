package sim

import (
	"context"
	"sync"
	"time"
)

// Executor runs a deferred command. The gate treats it as opaque; the engine
// supplies the interpreter.
type Executor func(ctx context.Context, cmd Command) error

// Gate is the process-wide pause gate and action queue. While paused, every
// simulation-producing user operation is captured as a Command instead of
// executing; autonomous triggers consult Paused directly and simply no-op.
// On resume the queue is drained FIFO with a small stagger between tasks.
type Gate struct {
	mu     sync.Mutex
	paused bool
	queue  []Command

	exec    Executor
	stagger time.Duration
}

// NewGate creates a gate in the running (unpaused) state.
func NewGate(exec Executor, stagger time.Duration) *Gate {
	return &Gate{
		exec:    exec,
		stagger: stagger,
	}
}

// Paused reports whether the simulation is paused. Triggers check this at
// both schedule time and fire time.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.paused
}

// Pause stops simulation side effects. Idempotent.
func (g *Gate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.paused = true
}

// QueueLen returns the number of commands waiting for resume.
func (g *Gate) QueueLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.queue)
}

// Do runs the command immediately when unpaused, or enqueues it when
// paused. It reports whether the command was deferred so callers can notify
// the user.
func (g *Gate) Do(ctx context.Context, cmd Command) (bool, error) {
	g.mu.Lock()
	if g.paused {
		g.queue = append(g.queue, cmd)
		queued := len(g.queue)
		g.mu.Unlock()

		log.InfoS(ctx, "Simulation paused, queued action",
			"kind", cmd.Kind(),
			"queue_len", queued)

		return true, nil
	}
	g.mu.Unlock()

	return false, g.exec(ctx, cmd)
}

// Resume unpauses the simulation and drains the queued commands in FIFO
// order. The queue is cleared atomically up front, so a second Resume racing
// this one finds nothing to run and no command executes twice. A failing
// command is logged and skipped; it never blocks the rest of the queue.
func (g *Gate) Resume(ctx context.Context) {
	g.mu.Lock()
	if !g.paused {
		g.mu.Unlock()
		return
	}
	g.paused = false
	pending := g.queue
	g.queue = nil
	g.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	log.InfoS(ctx, "Simulation resumed, draining action queue",
		"queue_len", len(pending))

	for i, cmd := range pending {
		if i > 0 && g.stagger > 0 {
			select {
			case <-time.After(g.stagger):
			case <-ctx.Done():
				log.WarnS(ctx, "Queue drain aborted",
					ctx.Err(),
					"remaining", len(pending)-i)
				return
			}
		}

		if err := g.exec(ctx, cmd); err != nil {
			log.ErrorS(ctx, "Queued action failed", err,
				"kind", cmd.Kind())
		}
	}
}
