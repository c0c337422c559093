package sim

import (
	"context"
	"time"

	"github.com/cubicool/cubicle/internal/baselib/actor"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Notification is a transient, user-visible message. Notifications are
// ephemeral: they are delivered to live subscribers and never persisted.
type Notification struct {
	// Kind tags the notification for filtering, e.g. "email", "im",
	// "queued", "system".
	Kind string

	// Text is the display message.
	Text string

	// At is the simulation time the notification was produced.
	At time.Time
}

// NotifierKey is the service key for the notifier actor.
var NotifierKey = actor.NewServiceKey[NotifyRequest, NotifyResponse](
	"notifier",
)

// NotifyRequest is the union type for all notifier requests.
type NotifyRequest interface {
	actor.Message
	isNotifyRequest()
}

// NotifyResponse is the union type for all notifier responses.
type NotifyResponse interface {
	isNotifyResponse()
}

func (SubscribeMsg) isNotifyRequest()   {}
func (UnsubscribeMsg) isNotifyRequest() {}
func (PublishMsg) isNotifyRequest()     {}

func (SubscribeResponse) isNotifyResponse()   {}
func (UnsubscribeResponse) isNotifyResponse() {}
func (PublishResponse) isNotifyResponse()     {}

// SubscribeMsg registers a delivery channel for one viewer's notifications.
type SubscribeMsg struct {
	actor.BaseMessage

	// ViewerEmail scopes delivery to notifications addressed to this
	// actor (or broadcast).
	ViewerEmail string

	// SubscriberID uniquely identifies this subscription.
	SubscriberID string

	// DeliveryChan receives notifications. Delivery is non-blocking; a
	// full channel drops the notification for that subscriber.
	DeliveryChan chan<- Notification
}

// MessageType implements actor.Message.
func (SubscribeMsg) MessageType() string { return "SubscribeMsg" }

// SubscribeResponse is the response to SubscribeMsg.
type SubscribeResponse struct {
	Success bool
}

// UnsubscribeMsg removes a subscription.
type UnsubscribeMsg struct {
	actor.BaseMessage

	ViewerEmail  string
	SubscriberID string
}

// MessageType implements actor.Message.
func (UnsubscribeMsg) MessageType() string { return "UnsubscribeMsg" }

// UnsubscribeResponse is the response to UnsubscribeMsg.
type UnsubscribeResponse struct {
	Success bool
}

// PublishMsg fans a notification out to the given viewers, or to every
// subscriber when Viewers is empty.
type PublishMsg struct {
	actor.BaseMessage

	Viewers      []string
	Notification Notification
}

// MessageType implements actor.Message.
func (PublishMsg) MessageType() string { return "PublishMsg" }

// PublishResponse is the response to PublishMsg.
type PublishResponse struct {
	// DeliveredCount is the number of subscribers that received the
	// notification.
	DeliveredCount int
}

// subscriber pairs a subscription ID with its delivery channel.
type subscriber struct {
	id           string
	deliveryChan chan<- Notification
}

// Notifier is the actor that fans transient notifications out to
// subscribers. All state lives inside the actor; external code communicates
// via Tell and Ask only.
type Notifier struct {
	// subscribers maps viewer emails to their subscriptions.
	subscribers map[string][]subscriber
}

// NewNotifier creates an empty notifier behavior.
func NewNotifier() *Notifier {
	return &Notifier{
		subscribers: make(map[string][]subscriber),
	}
}

// Receive implements actor.ActorBehavior by dispatching to type-specific
// handlers.
func (n *Notifier) Receive(ctx context.Context,
	msg NotifyRequest) fn.Result[NotifyResponse] {

	switch m := msg.(type) {
	case SubscribeMsg:
		return fn.Ok[NotifyResponse](n.handleSubscribe(m))

	case UnsubscribeMsg:
		return fn.Ok[NotifyResponse](n.handleUnsubscribe(m))

	case PublishMsg:
		return fn.Ok[NotifyResponse](n.handlePublish(m))

	default:
		return fn.Err[NotifyResponse](ErrUnknownRequestType)
	}
}

func (n *Notifier) handleSubscribe(msg SubscribeMsg) SubscribeResponse {
	subs := n.subscribers[msg.ViewerEmail]
	for _, s := range subs {
		if s.id == msg.SubscriberID {
			// Already subscribed.
			return SubscribeResponse{Success: true}
		}
	}

	n.subscribers[msg.ViewerEmail] = append(subs, subscriber{
		id:           msg.SubscriberID,
		deliveryChan: msg.DeliveryChan,
	})

	return SubscribeResponse{Success: true}
}

func (n *Notifier) handleUnsubscribe(
	msg UnsubscribeMsg) UnsubscribeResponse {

	subs := n.subscribers[msg.ViewerEmail]
	for i, s := range subs {
		if s.id == msg.SubscriberID {
			n.subscribers[msg.ViewerEmail] = append(
				subs[:i], subs[i+1:]...,
			)
			if len(n.subscribers[msg.ViewerEmail]) == 0 {
				delete(n.subscribers, msg.ViewerEmail)
			}

			return UnsubscribeResponse{Success: true}
		}
	}

	// Not found, still success (idempotent).
	return UnsubscribeResponse{Success: true}
}

func (n *Notifier) handlePublish(msg PublishMsg) PublishResponse {
	viewers := msg.Viewers
	if len(viewers) == 0 {
		viewers = make([]string, 0, len(n.subscribers))
		for viewer := range n.subscribers {
			viewers = append(viewers, viewer)
		}
	}

	delivered := 0
	for _, viewer := range viewers {
		for _, s := range n.subscribers[viewer] {
			// Non-blocking send so a stalled subscriber cannot
			// block the actor.
			select {
			case s.deliveryChan <- msg.Notification:
				delivered++
			default:
			}
		}
	}

	return PublishResponse{DeliveredCount: delivered}
}
