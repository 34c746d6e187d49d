package jog

import (
	"context"
	"sync"
	"time"

	"jogapp-api/internal/common"
)

// MockJogRepository provides an in-memory implementation for testing
type MockJogRepository struct {
	mu   sync.RWMutex
	jogs map[common.JogID]*Jog

	batches [][]JogUpdate
	changes chan JogChange

	createError error
	getError    error
	queryError  error
	updateError error
	batchError  error
}

// NewMockJogRepository creates a new mock repository
func NewMockJogRepository() *MockJogRepository {
	return &MockJogRepository{
		jogs:    make(map[common.JogID]*Jog),
		changes: make(chan JogChange, 16),
	}
}

func (m *MockJogRepository) Create(ctx context.Context, j *Jog) error {
	if m.createError != nil {
		return m.createError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *j
	m.jogs[j.ID] = &copied
	return nil
}

func (m *MockJogRepository) GetByID(ctx context.Context, jogID common.JogID) (*Jog, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if j, exists := m.jogs[jogID]; exists {
		copied := *j
		return &copied, nil
	}
	return nil, ErrJogNotFound
}

func (m *MockJogRepository) Query(ctx context.Context, filter JogFilter) ([]*Jog, error) {
	if m.queryError != nil {
		return nil, m.queryError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var jogs []*Jog
	for _, j := range m.jogs {
		if matchesFilter(j, filter) {
			copied := *j
			jogs = append(jogs, &copied)
		}
	}
	if filter.Limit > 0 && len(jogs) > filter.Limit {
		jogs = jogs[:filter.Limit]
	}
	return jogs, nil
}

func (m *MockJogRepository) Update(ctx context.Context, j *Jog) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jogs[j.ID]; !exists {
		return ErrJogNotFound
	}
	copied := *j
	m.jogs[j.ID] = &copied
	return nil
}

func (m *MockJogRepository) BatchUpdate(ctx context.Context, updates []JogUpdate) error {
	if m.batchError != nil {
		return m.batchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batches = append(m.batches, updates)
	for _, u := range updates {
		j, exists := m.jogs[u.ID]
		if !exists {
			continue
		}
		applyFields(j, u.Fields)
	}
	return nil
}

func (m *MockJogRepository) SoftDelete(ctx context.Context, jogID common.JogID, deletedAt time.Time) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	j, exists := m.jogs[jogID]
	if !exists {
		return ErrJogNotFound
	}
	j.Deleted = true
	j.TimeDeleted = &deletedAt
	j.UpdatedAt = deletedAt
	return nil
}

func (m *MockJogRepository) Watch(ctx context.Context) (<-chan JogChange, error) {
	return m.changes, nil
}

// EmitChange pushes a change into the mock subscription channel
func (m *MockJogRepository) EmitChange(change JogChange) {
	m.changes <- change
}

// Test helper methods

func (m *MockJogRepository) SetCreateError(err error) { m.createError = err }
func (m *MockJogRepository) SetGetError(err error)    { m.getError = err }
func (m *MockJogRepository) SetQueryError(err error)  { m.queryError = err }
func (m *MockJogRepository) SetUpdateError(err error) { m.updateError = err }
func (m *MockJogRepository) SetBatchError(err error)  { m.batchError = err }

func (m *MockJogRepository) JogCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jogs)
}

func (m *MockJogRepository) BatchCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.batches)
}

func (m *MockJogRepository) LastBatch() []JogUpdate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.batches) == 0 {
		return nil
	}
	return m.batches[len(m.batches)-1]
}

func matchesFilter(j *Jog, filter JogFilter) bool {
	if filter.UserID != nil && j.UserID != *filter.UserID {
		return false
	}
	if filter.Status != nil && j.CompleteStatus != *filter.Status {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if j.CompleteStatus == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Deleted != nil && j.Deleted != *filter.Deleted {
		return false
	}
	if filter.ReminderEnabled != nil && j.ReminderEnabled != *filter.ReminderEnabled {
		return false
	}
	if filter.DueAfter != nil && j.DueDate.Before(*filter.DueAfter) {
		return false
	}
	if filter.DueBefore != nil && !j.DueDate.Before(*filter.DueBefore) {
		return false
	}
	return true
}

func applyFields(j *Jog, fields map[string]interface{}) {
	for field, value := range fields {
		switch field {
		case "completeStatus":
			if s, ok := value.(common.CompleteStatus); ok {
				j.CompleteStatus = s
			}
		case "completed":
			if b, ok := value.(bool); ok {
				j.Completed = b
			}
		case "completedAt":
			if t, ok := value.(time.Time); ok {
				j.CompletedAt = &t
			}
		case "steps":
			if steps, ok := value.([]Step); ok {
				j.Steps = steps
			}
		case "reminderIntervals":
			if groups, ok := value.([]IntervalGroup); ok {
				j.ReminderIntervals = groups
			}
		case "updatedAt":
			if t, ok := value.(time.Time); ok {
				j.UpdatedAt = t
			}
		}
	}
}
