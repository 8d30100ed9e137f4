package repository

import (
	"context"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/officer/domain"
)

// Repository defines persistence for officers.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Officer, error)
	GetByBadgeNumber(ctx context.Context, badge string) (*domain.Officer, error)
	Create(ctx context.Context, o *domain.Officer) error
	// SetActive toggles the officer's active flag. Returns false if no officer has the given id.
	SetActive(ctx context.Context, id string, active bool) (bool, error)
}
