package ports

import (
	"context"

	"stockSim/internal/domain"
)

// SessionRepository persists the complete session snapshot.
// The core treats it as opaque load/save.
type SessionRepository interface {
	// LoadSession returns the stored session, or ErrNotFound if none was saved yet.
	LoadSession(ctx context.Context) (*domain.Session, error)
	// SaveSession replaces the stored session with the given snapshot.
	SaveSession(ctx context.Context, session *domain.Session) error
}
