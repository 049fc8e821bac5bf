// Package pubsub provides a synchronous, typed publish/subscribe dispatcher.
//
// Each Topic carries one event type with one payload type. Publish calls
// every handler inline, in subscription order, before returning. Nothing is
// queued or deferred. Topics are not safe for concurrent use.
package pubsub

import "time"

// EventType names a published event.
type EventType string

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Handler receives events synchronously.
type Handler[T any] func(Event[T])

// Subscription is returned by Subscribe. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Subscriber lets observers register handlers without being able to publish.
type Subscriber[T any] interface {
	Subscribe(h Handler[T]) Subscription
}

// Publisher allows publishing a typed payload.
type Publisher[T any] interface {
	Publish(payload T)
}
