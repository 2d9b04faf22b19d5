package repositories

import (
	"context"

	"transmittal/internal/domain/models"
)

// TemplateRepository stores reusable header templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *models.Template) error
	GetByID(ctx context.Context, id, userID string) (*models.Template, error)
	// List returns the user's own templates plus shared ones, newest first.
	List(ctx context.Context, userID string) ([]models.Template, error)
	Delete(ctx context.Context, id, userID string) error
}
