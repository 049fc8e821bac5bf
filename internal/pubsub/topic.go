package pubsub

import "time"

// Topic dispatches events of a single EventType to its subscribers.
type Topic[T any] struct {
	eventType EventType
	subs      []*subscription[T]
	closed    bool
	now       func() time.Time
}

var (
	_ Subscriber[int] = (*Topic[int])(nil)
	_ Publisher[int]  = (*Topic[int])(nil)
)

type subscription[T any] struct {
	topic   *Topic[T]
	handler Handler[T]
	active  bool
}

// NewTopic creates a topic for the given event type.
func NewTopic[T any](eventType EventType) *Topic[T] {
	return &Topic[T]{
		eventType: eventType,
		now:       time.Now,
	}
}

// Type returns the event type published by this topic.
func (t *Topic[T]) Type() EventType {
	return t.eventType
}

// Subscribe registers h. A nil handler or a closed topic yields an inert subscription.
func (t *Topic[T]) Subscribe(h Handler[T]) Subscription {
	if h == nil || t.closed {
		return &subscription[T]{}
	}
	sub := &subscription[T]{topic: t, handler: h, active: true}
	t.subs = append(t.subs, sub)
	return sub
}

// Publish delivers payload to every current subscriber, inline.
// Handlers run against a snapshot of the subscriber list; a handler that
// subscribes during dispatch is not called for this event.
func (t *Topic[T]) Publish(payload T) {
	if t.closed || len(t.subs) == 0 {
		return
	}

	event := Event[T]{
		Type:      t.eventType,
		Payload:   payload,
		Timestamp: t.now(),
	}

	snapshot := make([]*subscription[T], len(t.subs))
	copy(snapshot, t.subs)
	for _, sub := range snapshot {
		if sub.active {
			sub.handler(event)
		}
	}
}

// Close drops all subscribers. Publish and Subscribe become no-ops.
func (t *Topic[T]) Close() {
	if t.closed {
		return
	}
	t.closed = true
	for _, sub := range t.subs {
		sub.active = false
	}
	t.subs = nil
}

// SubscriberCount returns the number of active subscribers.
func (t *Topic[T]) SubscriberCount() int {
	return len(t.subs)
}

func (s *subscription[T]) Unsubscribe() {
	if !s.active {
		return
	}
	s.active = false
	subs := s.topic.subs
	for i, other := range subs {
		if other == s {
			s.topic.subs = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}
