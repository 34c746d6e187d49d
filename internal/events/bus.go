package events

import (
	"fmt"
	"sync"

	eventbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	Publish(topic string, data interface{}) error
	Subscribe(topic string, handler interface{}) error
	Unsubscribe(topic string, handler interface{}) error
	Close() error
}

// eventBus wraps the EventBus library with lifecycle handling
type eventBus struct {
	bus    eventbus.Bus
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// NewEventBus creates a new event bus instance
func NewEventBus(logger *zap.Logger) EventBus {
	return &eventBus{
		bus:    eventbus.New(),
		logger: logger,
	}
}

// Publish publishes an event to the specified topic
func (eb *eventBus) Publish(topic string, data interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return fmt.Errorf("event bus is closed")
	}

	eb.logger.Debug("Publishing event", zap.String("topic", topic))

	eb.bus.Publish(topic, data)
	return nil
}

// Subscribe subscribes to events on the specified topic
func (eb *eventBus) Subscribe(topic string, handler interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return fmt.Errorf("event bus is closed")
	}

	eb.logger.Debug("Subscribing to topic", zap.String("topic", topic))

	return eb.bus.Subscribe(topic, handler)
}

// Unsubscribe unsubscribes from events on the specified topic
func (eb *eventBus) Unsubscribe(topic string, handler interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return fmt.Errorf("event bus is closed")
	}

	return eb.bus.Unsubscribe(topic, handler)
}

// Close shuts down the event bus; further publishes are rejected
func (eb *eventBus) Close() error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return nil
	}

	eb.logger.Info("Closing event bus")
	eb.closed = true

	return nil
}
