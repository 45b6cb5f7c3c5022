// Package pubsub provides a generic publish/subscribe broker used to fan
// registry audit events and log entries out to in-process observers.
package pubsub

import (
	"context"
	"time"
)

// EventType names the kind of event being published.
type EventType string

// Event wraps a typed payload with its publication metadata.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
