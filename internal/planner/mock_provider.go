package planner

import (
	"context"
	"sync"
)

// MockPlanProvider is a mock implementation of PlanProvider for testing
type MockPlanProvider struct {
	mu sync.Mutex

	response *PlanResponse
	err      error
	requests []PlanRequest
}

// NewMockPlanProvider creates a new mock plan provider
func NewMockPlanProvider() *MockPlanProvider {
	return &MockPlanProvider{}
}

// SetResponse sets the canned response for GeneratePlan
func (m *MockPlanProvider) SetResponse(resp *PlanResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = resp
}

// SetError makes GeneratePlan fail
func (m *MockPlanProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GeneratePlan returns the configured response or error
func (m *MockPlanProvider) GeneratePlan(_ context.Context, req PlanRequest) (*PlanResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.response != nil {
		return m.response, nil
	}
	return &PlanResponse{}, nil
}

// ValidateConnection always succeeds
func (m *MockPlanProvider) ValidateConnection(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Requests returns the recorded plan requests
func (m *MockPlanProvider) Requests() []PlanRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PlanRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
