package stats

import (
	"context"
	"sync"
	"time"

	"jogapp-api/internal/common"
)

// MockStatsRepository provides an in-memory implementation for testing.
// Increments are recorded per dotted path so tests can assert exact counter
// deltas.
type MockStatsRepository struct {
	mu    sync.RWMutex
	users map[common.UserID]*UserStats

	Increments map[common.UserID]map[string]int64
	Merges     map[common.UserID]map[string]interface{}

	getError       error
	incrementError error
	mergeError     error
	resetCalls     int
}

// NewMockStatsRepository creates a new mock stats repository
func NewMockStatsRepository() *MockStatsRepository {
	return &MockStatsRepository{
		users:      make(map[common.UserID]*UserStats),
		Increments: make(map[common.UserID]map[string]int64),
		Merges:     make(map[common.UserID]map[string]interface{}),
	}
}

// Seed installs a prepared aggregate document
func (m *MockStatsRepository) Seed(stats *UserStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[stats.UserID] = stats
}

func (m *MockStatsRepository) GetOrInit(ctx context.Context, userID common.UserID) (*UserStats, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if stats, exists := m.users[userID]; exists {
		return stats, nil
	}
	stats := NewUserStats(userID, time.Now())
	m.users[userID] = stats
	return stats, nil
}

func (m *MockStatsRepository) IncrementPath(ctx context.Context, userID common.UserID, path string, delta int64) error {
	return m.IncrementPaths(ctx, userID, map[string]int64{path: delta})
}

func (m *MockStatsRepository) IncrementPaths(ctx context.Context, userID common.UserID, increments map[string]int64) error {
	if m.incrementError != nil {
		return m.incrementError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Increments[userID] == nil {
		m.Increments[userID] = make(map[string]int64)
	}
	for path, delta := range increments {
		m.Increments[userID][path] += delta
	}
	return nil
}

func (m *MockStatsRepository) Merge(ctx context.Context, userID common.UserID, fields map[string]interface{}) error {
	if m.mergeError != nil {
		return m.mergeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Merges[userID] == nil {
		m.Merges[userID] = make(map[string]interface{})
	}
	for path, value := range fields {
		m.Merges[userID][path] = value
	}

	// Keep the seeded documents coherent for the flags jobs read back
	if stats, exists := m.users[userID]; exists {
		if ready, ok := fields[PathQuestionnaireReady].(bool); ok {
			stats.SymptomStats.QuestionnaireReady = ready
		}
		if streak, ok := fields[PathCurrentStreak].(int64); ok {
			stats.JogStats.CurrentStreak = streak
		}
		if best, ok := fields[PathBestStreak].(int64); ok {
			stats.JogStats.BestStreak = best
		}
		if day, ok := fields[PathLastStreakDate].(string); ok {
			stats.JogStats.LastStreakDate = day
		}
	}
	return nil
}

func (m *MockStatsRepository) ListQuestionnaireCandidates(ctx context.Context) ([]*UserStats, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []*UserStats
	for _, stats := range m.users {
		if stats.SymptomStats.QuestionnaireTimeSet && !stats.SymptomStats.QuestionnaireReady {
			users = append(users, stats)
		}
	}
	return users, nil
}

func (m *MockStatsRepository) ResetQuestionnaireReady(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCalls++
	for _, stats := range m.users {
		stats.SymptomStats.QuestionnaireReady = false
	}
	return nil
}

// Test helper methods

func (m *MockStatsRepository) SetGetError(err error)       { m.getError = err }
func (m *MockStatsRepository) SetIncrementError(err error) { m.incrementError = err }
func (m *MockStatsRepository) SetMergeError(err error)     { m.mergeError = err }

func (m *MockStatsRepository) IncrementFor(userID common.UserID, path string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Increments[userID][path]
}

func (m *MockStatsRepository) ResetCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resetCalls
}
