// Package events carries document lifecycle notifications over RabbitMQ.
package events

import (
	"context"
	"time"
)

const (
	TypeDocumentAssigned = "document.assigned"
	TypeDocumentShared   = "document.shared"
	TypeDocumentSigned   = "document.signed"
)

// Event is the JSON body of a queued notification.
type Event struct {
	Type          string    `json:"type"`
	DocumentID    string    `json:"documentId"`
	DocumentTitle string    `json:"documentTitle"`
	ActorID       string    `json:"actorId"`
	ActorName     string    `json:"actorName,omitempty"`
	Recipients    []string  `json:"recipients"`
	Permission    string    `json:"permission,omitempty"`
	Message       string    `json:"message,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NopPublisher) Close() error                                   { return nil }
