package jog

import (
	"context"
	"time"

	"jogapp-api/internal/common"
)

// JogChange is one observed write to the jog store, delivered through the
// store's change subscription
type JogChange struct {
	JogID  common.JogID
	UserID common.UserID
}

// JogRepository defines the interface for jog data access
type JogRepository interface {
	Create(ctx context.Context, j *Jog) error
	GetByID(ctx context.Context, jogID common.JogID) (*Jog, error)
	Query(ctx context.Context, filter JogFilter) ([]*Jog, error)
	Update(ctx context.Context, j *Jog) error

	// BatchUpdate applies all (id, partial fields) pairs as one atomic
	// batch: either the whole sweep's transitions commit or none do.
	BatchUpdate(ctx context.Context, updates []JogUpdate) error

	// SoftDelete marks a jog deleted without removing the document
	SoftDelete(ctx context.Context, jogID common.JogID, deletedAt time.Time) error

	// Watch subscribes to document changes. The channel closes when ctx is
	// cancelled or the underlying stream ends.
	Watch(ctx context.Context) (<-chan JogChange, error)
}
