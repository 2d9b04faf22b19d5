package repositories

import (
	"context"

	"transmittal/internal/domain/models"
)

// CompanyRepository stores sender company profiles.
type CompanyRepository interface {
	Create(ctx context.Context, c *models.Company) error
	GetByID(ctx context.Context, id, ownerID string) (*models.Company, error)
	List(ctx context.Context, ownerID string) ([]models.Company, error)
	Delete(ctx context.Context, id, ownerID string) error
}
