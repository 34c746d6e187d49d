package stats

import (
	"context"

	"jogapp-api/internal/common"
)

// StatsRepository defines the interface for user aggregate data access.
// Counter mutations go through atomic increments, never read-modify-write,
// so concurrent jobs touching the same user compose without lost updates.
type StatsRepository interface {
	// GetOrInit returns the user's aggregate document, lazily creating a
	// zeroed one on first access
	GetOrInit(ctx context.Context, userID common.UserID) (*UserStats, error)

	// IncrementPath atomically adds delta to the counter at a dotted path
	IncrementPath(ctx context.Context, userID common.UserID, path string, delta int64) error

	// IncrementPaths atomically applies several counter increments in one
	// store operation
	IncrementPaths(ctx context.Context, userID common.UserID, increments map[string]int64) error

	// Merge writes partial fields by dotted path, touching only the
	// addressed leaves
	Merge(ctx context.Context, userID common.UserID, fields map[string]interface{}) error

	// ListQuestionnaireCandidates returns users with a configured
	// questionnaire time that has not fired today
	ListQuestionnaireCandidates(ctx context.Context) ([]*UserStats, error)

	// ResetQuestionnaireReady clears the ready flag for all users
	ResetQuestionnaireReady(ctx context.Context) error
}
