package utils

import "time"

// Server timeouts
const (
	// RequestReadTimeout bounds reading an incoming HTTP request
	RequestReadTimeout = 30 * time.Second

	// IngestTimeout is the timeout for queue message ingestion
	IngestTimeout = 10 * time.Second

	// ShutdownTimeout bounds graceful shutdown, including the final archive write
	ShutdownTimeout = 15 * time.Second
)

// QueueType represents the type of ingestion queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream (default)
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents the in-memory queue (for testing)
	QueueTypeMemory QueueType = "memory"
)

// Crowd intensity thresholds in predicted wait minutes
const (
	// IntensityHighMinutes marks the High congestion boundary
	IntensityHighMinutes = 60.0

	// IntensityMediumMinutes marks the Medium congestion boundary
	IntensityMediumMinutes = 30.0
)
