package subscriber

import (
	"fmt"
	"strings"

	"github.com/opdpulse/opdpulse/internal/config"
	"github.com/opdpulse/opdpulse/internal/utils"
)

// NewSubscriber creates a Subscriber based on the queue configuration
func NewSubscriber(cfg config.QueueConfig, subCfg Config) (Subscriber, error) {
	queueType := utils.QueueType(strings.ToLower(cfg.Type))

	// Default to NATS if not specified
	if queueType == "" {
		queueType = utils.QueueTypeNATS
	}

	switch queueType {
	case utils.QueueTypeNATS:
		return NewNATSSubscriber(cfg.URL, subCfg.NodeID, subCfg.ConsumerGroup)
	case utils.QueueTypeRedis:
		addr := cfg.URL
		if addr == "" {
			addr = "localhost:6379"
		}
		streamPrefix := cfg.RedisStream
		if streamPrefix == "" {
			streamPrefix = "opdpulse"
		}
		consumer := cfg.RedisConsumer
		if consumer == "" {
			consumer = subCfg.NodeID
		}
		group := cfg.RedisGroup
		if group == "" {
			group = subCfg.ConsumerGroup
		}
		return NewRedisSubscriber(addr, cfg.Password, cfg.RedisDB, streamPrefix, group, consumer)
	case utils.QueueTypeKafka:
		group := cfg.KafkaGroupID
		if group == "" {
			group = subCfg.ConsumerGroup
		}
		return NewKafkaSubscriber(cfg.KafkaBrokers, group)
	case utils.QueueTypeMemory:
		return NewMemorySubscriber()
	default:
		return nil, fmt.Errorf("unsupported queue type: %s", cfg.Type)
	}
}
