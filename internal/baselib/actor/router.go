package actor

import (
	"context"
	"sync/atomic"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// RoutingStrategy selects which registered actor should receive the next
// message routed through a service key.
type RoutingStrategy[M Message, R any] interface {
	// Select picks one reference from the candidate set. The candidate
	// slice is never empty when Select is called.
	Select(refs []ActorRef[M, R]) ActorRef[M, R]
}

// roundRobinStrategy cycles through candidates in registration order.
type roundRobinStrategy[M Message, R any] struct {
	next atomic.Uint64
}

// NewRoundRobinStrategy creates a strategy that distributes messages evenly
// across all registered actors.
func NewRoundRobinStrategy[M Message, R any]() RoutingStrategy[M, R] {
	return &roundRobinStrategy[M, R]{}
}

// Select returns the next candidate in rotation.
func (s *roundRobinStrategy[M, R]) Select(
	refs []ActorRef[M, R],
) ActorRef[M, R] {
	idx := s.next.Add(1) - 1
	return refs[idx%uint64(len(refs))]
}

// Router is a virtual ActorRef that resolves its target through the
// receptionist on every send. Registration changes are picked up
// automatically, giving callers location transparency over the actors behind
// a service key.
type Router[M Message, R any] struct {
	receptionist *Receptionist
	key          ServiceKey[M, R]
	strategy     RoutingStrategy[M, R]
	dlo          ActorRef[Message, any]
}

// NewRouter creates a router for the given service key. Messages sent while
// no actor is registered under the key are routed to the dead letter office
// (Tell) or failed with ErrActorTerminated (Ask).
func NewRouter[M Message, R any](receptionist *Receptionist,
	key ServiceKey[M, R], strategy RoutingStrategy[M, R],
	dlo ActorRef[Message, any],
) *Router[M, R] {
	return &Router[M, R]{
		receptionist: receptionist,
		key:          key,
		strategy:     strategy,
		dlo:          dlo,
	}
}

// ID returns the router's synthetic identifier.
func (r *Router[M, R]) ID() string {
	return "router:" + r.key.name
}

// Tell routes a fire-and-forget message to one registered actor.
func (r *Router[M, R]) Tell(ctx context.Context, msg M) {
	refs := FindInReceptionist(r.receptionist, r.key)
	if len(refs) == 0 {
		log.DebugS(ctx, "Router found no targets, routing to DLO",
			"service_key", r.key.name,
			"msg_type", msg.MessageType())

		if r.dlo != nil {
			r.dlo.Tell(ctx, msg)
		}

		return
	}

	r.strategy.Select(refs).Tell(ctx, msg)
}

// Ask routes a request-response message to one registered actor.
func (r *Router[M, R]) Ask(ctx context.Context, msg M) Future[R] {
	refs := FindInReceptionist(r.receptionist, r.key)
	if len(refs) == 0 {
		promise := NewPromise[R]()
		promise.Complete(fn.Err[R](ErrActorTerminated))

		return promise.Future()
	}

	return r.strategy.Select(refs).Ask(ctx, msg)
}
