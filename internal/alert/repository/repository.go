package repository

import (
	"context"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/alert/domain"
)

// Repository is the read-only alert store. There is deliberately no list or search method:
// callers fetch exactly the ids they were given.
type Repository interface {
	// GetByID returns the alert for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Alert, error)
}

// Writer inserts alerts. Used by seeding tools only.
type Writer interface {
	Create(ctx context.Context, a *domain.Alert) error
}
