// Package subscriber feeds queue snapshots from a message broker into the
// ingestion path, so departments can push updates without going through the
// HTTP API.
package subscriber

import "context"

// MessageHandler is a function that processes incoming messages
type MessageHandler func(ctx context.Context, subject string, data []byte) error

// Subscriber defines the interface for message subscription
type Subscriber interface {
	// Subscribe subscribes to a subject/topic with the given handler
	Subscribe(ctx context.Context, subject string, handler MessageHandler) error

	// Unsubscribe unsubscribes from a subject/topic
	Unsubscribe(subject string) error

	// Close closes the subscriber and releases resources
	Close() error
}

// Config holds common subscriber configuration
type Config struct {
	// NodeID is the unique identifier for this subscriber node
	NodeID string

	// ConsumerGroup is the consumer group name for group-based consumption
	ConsumerGroup string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		NodeID:        "opdpulse",
		ConsumerGroup: "opdpulse-ingest",
	}
}
