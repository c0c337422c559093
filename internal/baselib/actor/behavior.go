package actor

import (
	"context"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// FunctionBehavior adapts a plain function into an ActorBehavior. This is the
// lightest way to stand up an actor when no internal state or lifecycle hooks
// are needed.
type FunctionBehavior[M Message, R any] struct {
	receive func(ctx context.Context, msg M) fn.Result[R]
}

// NewFunctionBehavior wraps the given function as an ActorBehavior.
func NewFunctionBehavior[M Message, R any](
	receive func(ctx context.Context, msg M) fn.Result[R],
) *FunctionBehavior[M, R] {
	return &FunctionBehavior[M, R]{
		receive: receive,
	}
}

// Receive dispatches the message to the wrapped function.
func (b *FunctionBehavior[M, R]) Receive(ctx context.Context,
	msg M,
) fn.Result[R] {
	return b.receive(ctx, msg)
}
