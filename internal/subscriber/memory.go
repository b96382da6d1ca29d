package subscriber

import (
	"context"
	"fmt"
	"sync"

	"github.com/opdpulse/opdpulse/internal/logging"
)

var memoryLog = logging.Global().With("component", "subscriber.memory")

// memorySubscription represents one active in-memory subscription
type memorySubscription struct {
	handler MessageHandler
	ctx     context.Context
	cancel  context.CancelFunc
	ch      chan memoryMessage
}

type memoryMessage struct {
	subject string
	data    []byte
}

// memoryBroker is a process-wide broker backing the in-memory subscriber
type memoryBroker struct {
	subscribers map[string][]*memorySubscription
	mu          sync.RWMutex
}

var (
	memBroker     *memoryBroker
	memBrokerOnce sync.Once
)

func getMemoryBroker() *memoryBroker {
	memBrokerOnce.Do(func() {
		memBroker = &memoryBroker{subscribers: make(map[string][]*memorySubscription)}
	})
	return memBroker
}

// PublishToMemory delivers a message to all in-memory subscribers of the
// subject. Used by tests and local development.
func PublishToMemory(subject string, data []byte) {
	b := getMemoryBroker()
	b.mu.RLock()
	subs := b.subscribers[subject]
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.ch <- memoryMessage{subject: subject, data: data}:
		default:
			memoryLog.Warn("Subscriber channel full, dropping message", "subject", subject)
		}
	}
}

// MemorySubscriber implements Subscriber without an external broker
type MemorySubscriber struct {
	subscriptions map[string]*memorySubscription
	mu            sync.Mutex
}

// NewMemorySubscriber creates a new in-memory subscriber
func NewMemorySubscriber() (*MemorySubscriber, error) {
	return &MemorySubscriber{
		subscriptions: make(map[string]*memorySubscription),
	}, nil
}

// Subscribe subscribes to a subject with the given handler
func (s *MemorySubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &memorySubscription{
		handler: handler,
		ctx:     subCtx,
		cancel:  cancel,
		ch:      make(chan memoryMessage, 1000),
	}
	s.subscriptions[subject] = sub

	b := getMemoryBroker()
	b.mu.Lock()
	b.subscribers[subject] = append(b.subscribers[subject], sub)
	b.mu.Unlock()

	go s.consume(sub)

	memoryLog.Info("Subscribed to in-memory subject", "subject", subject)
	return nil
}

// consume processes messages until the subscription is cancelled
func (s *MemorySubscriber) consume(sub *memorySubscription) {
	for {
		select {
		case <-sub.ctx.Done():
			return
		case msg := <-sub.ch:
			if err := sub.handler(sub.ctx, msg.subject, msg.data); err != nil {
				memoryLog.Error("Failed to handle message", "subject", msg.subject, "error", err)
			}
		}
	}
}

// Unsubscribe unsubscribes from a subject
func (s *MemorySubscriber) Unsubscribe(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	sub.cancel()
	delete(s.subscriptions, subject)
	unregisterFromBroker(subject, sub)

	return nil
}

// Close closes all subscriptions
func (s *MemorySubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for subject, sub := range s.subscriptions {
		sub.cancel()
		unregisterFromBroker(subject, sub)
	}
	s.subscriptions = make(map[string]*memorySubscription)
	return nil
}

func unregisterFromBroker(subject string, sub *memorySubscription) {
	b := getMemoryBroker()
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[subject]
	for i, candidate := range subs {
		if candidate == sub {
			b.subscribers[subject] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}
