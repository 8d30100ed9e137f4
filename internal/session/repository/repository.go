package repository

import (
	"context"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/session/domain"
)

// Repository defines persistence for officer sessions.
type Repository interface {
	// GetByTokenHash returns the session with the given token hash, or nil if none exists.
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	// Invalidate clears the valid flag. Invalidating an already invalid or unknown session is not an error.
	Invalidate(ctx context.Context, id string) error
	InvalidateAllByOfficer(ctx context.Context, officerID string) error
}
