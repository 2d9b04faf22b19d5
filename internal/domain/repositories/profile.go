package repositories

import (
	"context"

	"transmittal/internal/domain/models"
)

// ProfileRepository stores user profiles.
type ProfileRepository interface {
	// GetByID returns nil, nil when the user has no profile row yet.
	GetByID(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) error
}
