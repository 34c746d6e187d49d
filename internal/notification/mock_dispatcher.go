package notification

import (
	"context"
	"sync"
)

// MockDispatcher records dispatched batches for testing
type MockDispatcher struct {
	mu      sync.RWMutex
	batches [][]Message

	failTokens map[string]string
	sendError  error
}

// NewMockDispatcher creates a new mock dispatcher
func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{
		failTokens: make(map[string]string),
	}
}

func (m *MockDispatcher) SendBatch(ctx context.Context, messages []Message) ([]DeliveryResult, error) {
	if m.sendError != nil {
		return nil, m.sendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batches = append(m.batches, messages)
	results := make([]DeliveryResult, len(messages))
	for i, msg := range messages {
		if reason, fails := m.failTokens[msg.To]; fails {
			results[i] = DeliveryResult{To: msg.To, OK: false, Error: reason}
		} else {
			results[i] = DeliveryResult{To: msg.To, OK: true}
		}
	}
	return results, nil
}

// FailToken makes every message to the given token fail with reason
func (m *MockDispatcher) FailToken(token, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failTokens[token] = reason
}

// SetSendError makes the whole batch call fail
func (m *MockDispatcher) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendError = err
}

// BatchCount returns the number of dispatched batches
func (m *MockDispatcher) BatchCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.batches)
}

// Messages returns all dispatched messages flattened
func (m *MockDispatcher) Messages() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []Message
	for _, b := range m.batches {
		all = append(all, b...)
	}
	return all
}
