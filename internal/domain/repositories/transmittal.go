package repositories

import (
	"context"

	"transmittal/internal/domain/models"
)

// TransmittalRepository stores full transmittal records, scoped by owner.
type TransmittalRepository interface {
	Create(ctx context.Context, t *models.Transmittal) error
	GetByID(ctx context.Context, id, userID string) (*models.Transmittal, error)
	// List returns the owner's records newest first.
	List(ctx context.Context, userID string, filter models.TransmittalFilter) ([]models.Transmittal, error)
	ListByIDs(ctx context.Context, userID string, ids []string) ([]models.Transmittal, error)
	Update(ctx context.Context, t *models.Transmittal) error
	// SetStatus stores the new status and returns the previous one.
	SetStatus(ctx context.Context, id, userID string, status models.TransmittalStatus) (models.TransmittalStatus, error)
	Delete(ctx context.Context, id, userID string) error

	AddHistory(ctx context.Context, entry *models.TransmittalHistory) error
	ListHistory(ctx context.Context, transmittalID, userID string) ([]models.TransmittalHistory, error)
}
