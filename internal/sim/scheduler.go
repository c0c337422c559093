package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// TriggerFunc is a background activity fired by the scheduler. The function
// is responsible for its own pause and visibility checks; the scheduler only
// decides when it runs.
type TriggerFunc func(ctx context.Context)

// loop is one recurring background activity with a randomized interval.
type loop struct {
	name   string
	min    time.Duration
	jitter time.Duration
	fn     TriggerFunc
}

// Scheduler drives the background activity loops. Each loop is a single-shot
// timer that re-arms itself with a fresh randomized delay after every firing,
// so intervals drift the way organic activity does rather than ticking on a
// fixed cadence.
type Scheduler struct {
	mu  sync.Mutex
	rng *rand.Rand

	loops []loop

	started  bool
	cancel   context.CancelFunc
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler seeded from the given source. Tests pass
// a fixed seed for reproducible firing orders.
func NewScheduler(seed int64) *Scheduler {
	return &Scheduler{
		rng:  rand.New(rand.NewSource(seed)),
		quit: make(chan struct{}),
	}
}

// AddLoop registers a recurring activity. The first firing happens after
// min plus a random fraction of jitter, and every subsequent firing re-rolls
// the delay. AddLoop must be called before Start.
func (s *Scheduler) AddLoop(name string, min, jitter time.Duration,
	fn TriggerFunc) {

	s.loops = append(s.loops, loop{
		name:   name,
		min:    min,
		jitter: jitter,
		fn:     fn,
	})
}

// Start launches one goroutine per registered loop. It is a no-op if the
// scheduler is already running.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)

	for _, l := range s.loops {
		s.wg.Add(1)
		go s.run(ctx, l)
	}
}

// Stop cancels all loops, releases pending one-shots and waits for
// in-flight trigger functions to return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
	})

	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// Once schedules fn to run a single time after delay. Chain replies, IM
// replies and queued side effects all go through here so shutdown can wait
// for them.
func (s *Scheduler) Once(ctx context.Context, delay time.Duration,
	fn TriggerFunc) {

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
		case <-s.quit:
		case <-timer.C:
			fn(ctx)
		}
	}()
}

// Delay returns min plus a random fraction of jitter.
func (s *Scheduler) Delay(min, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return min
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return min + time.Duration(s.rng.Int63n(int64(jitter)))
}

// Roll returns a uniform float in [0, 1).
func (s *Scheduler) Roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.Float64()
}

// Pick returns a random index in [0, n). It panics if n is not positive.
func (s *Scheduler) Pick(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.Intn(n)
}

func (s *Scheduler) run(ctx context.Context, l loop) {
	defer s.wg.Done()

	timer := time.NewTimer(s.Delay(l.min, l.jitter))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-s.quit:
			return

		case <-timer.C:
			log.TraceS(ctx, "Firing background loop",
				"loop", l.name)

			l.fn(ctx)

			timer.Reset(s.Delay(l.min, l.jitter))
		}
	}
}
