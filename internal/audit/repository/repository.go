package repository

import (
	"context"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/audit/domain"
)

// Repository defines append-only persistence for AI audit entries. There is no update or delete.
type Repository interface {
	Create(ctx context.Context, e *domain.Entry) error
	// GetByID returns the entry for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	// List returns entries newest first. An empty officerID lists every officer's entries.
	List(ctx context.Context, officerID string, limit, offset int32) ([]*domain.Entry, error)
}
