package actor

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// promise is the canonical Promise/Future implementation. Completion is
// signalled by closing the done channel, so any number of goroutines can
// await or register callbacks against the same future.
type promise[T any] struct {
	// done is closed exactly once when the result becomes available.
	done chan struct{}

	// result holds the completed value. It is written once, before done is
	// closed, and only read after done is observed closed.
	result fn.Result[T]

	// once guards the single completion.
	once sync.Once
}

// NewPromise creates a new, uncompleted promise.
func NewPromise[T any]() Promise[T] {
	return &promise[T]{
		done: make(chan struct{}),
	}
}

// Complete attempts to set the result of the future. It returns true if this
// call was the one that completed it.
func (p *promise[T]) Complete(result fn.Result[T]) bool {
	completed := false
	p.once.Do(func() {
		p.result = result
		close(p.done)
		completed = true
	})

	return completed
}

// Future returns the Future view of this promise.
func (p *promise[T]) Future() Future[T] {
	return p
}

// Await blocks until the result is available or the context is cancelled.
func (p *promise[T]) Await(ctx context.Context) fn.Result[T] {
	select {
	case <-p.done:
		return p.result

	case <-ctx.Done():
		return fn.Err[T](ctx.Err())
	}
}

// ThenApply returns a new future that carries the transformed result of this
// one. Errors (including context cancellation while waiting) pass through
// untransformed.
func (p *promise[T]) ThenApply(ctx context.Context,
	apply func(T) T,
) Future[T] {
	next := NewPromise[T]()

	go func() {
		res := p.Await(ctx)

		val, err := res.Unpack()
		if err != nil {
			next.Complete(fn.Err[T](err))
			return
		}

		next.Complete(fn.Ok(apply(val)))
	}()

	return next.Future()
}

// OnComplete registers a callback invoked once the result is ready, or with
// the context's error if the context is cancelled first.
func (p *promise[T]) OnComplete(ctx context.Context,
	callback func(fn.Result[T]),
) {
	go func() {
		callback(p.Await(ctx))
	}()
}
