package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"transmittal/internal/config"
	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/repositories"
	"transmittal/internal/domain/services"
)

// transmittalService implements the TransmittalService interface
type transmittalService struct {
	repo      repositories.TransmittalRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewTransmittalService creates the cloud record service
func NewTransmittalService(
	repo repositories.TransmittalRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.TransmittalService {
	return &transmittalService{
		repo:      repo,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *transmittalService) SaveTransmittal(ctx context.Context, req *services.SaveTransmittalRequest) (*models.Transmittal, error) {
	if req.Status == "" {
		req.Status = models.StatusDraft
	}
	if err := validateSave(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	columns := req.Columns
	if len(columns) == 0 {
		columns = models.DefaultColumns()
	}

	t := &models.Transmittal{
		UserID:            req.UserID,
		CompanyID:         req.CompanyID,
		TransmittalNumber: strings.TrimSpace(req.TransmittalNumber),
		Status:            req.Status,
		Details:           req.Details,
		Items:             withItemIDs(req.Items),
		Columns:           columns,
		Notes:             req.Notes,
		FollowUpDate:      req.FollowUpDate,
	}
	t.Details.TransmittalNumber = t.TransmittalNumber

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("transmittal saved",
		"id", t.ID,
		"number", t.TransmittalNumber,
		"items", len(t.Items),
		"user_id", req.UserID,
	)
	return t, nil
}

func (s *transmittalService) GetTransmittal(ctx context.Context, id, userID string) (*models.Transmittal, error) {
	return s.repo.GetByID(ctx, id, userID)
}

func (s *transmittalService) ListTransmittals(ctx context.Context, userID string, filter models.TransmittalFilter) ([]models.Transmittal, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, filter.Status)
	}
	if err := validation.Validate(filter.DateFrom, validation.Date(models.DateLayout)); err != nil {
		return nil, fmt.Errorf("%w: date_from: %v", domain.ErrValidation, err)
	}
	if err := validation.Validate(filter.DateTo, validation.Date(models.DateLayout)); err != nil {
		return nil, fmt.Errorf("%w: date_to: %v", domain.ErrValidation, err)
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, userID, filter)
}

func (s *transmittalService) ListTransmittalsByIDs(ctx context.Context, userID string, ids []string) ([]models.Transmittal, error) {
	if len(ids) == 0 {
		return []models.Transmittal{}, nil
	}
	return s.repo.ListByIDs(ctx, userID, ids)
}

func (s *transmittalService) UpdateTransmittal(ctx context.Context, id, userID string, req *services.UpdateTransmittalRequest) (*models.Transmittal, error) {
	if err := validateUpdate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	t, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Details != nil {
		t.Details = *req.Details
		t.Details.TransmittalNumber = t.TransmittalNumber
	}
	if req.Items != nil {
		t.Items = withItemIDs(*req.Items)
	}
	if req.Columns != nil && len(*req.Columns) > 0 {
		t.Columns = *req.Columns
	}
	if req.Notes.Present {
		t.Notes = req.Notes.Value
	}
	if req.FollowUpDate.Present {
		t.FollowUpDate = req.FollowUpDate.Value
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("transmittal updated", "id", id, "user_id", userID)
	return t, nil
}

// UpdateStatus stores the new status and its history row in one transaction.
func (s *transmittalService) UpdateStatus(ctx context.Context, id, userID string, req *services.UpdateStatusRequest) (*models.Transmittal, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Status, validation.Required, validation.By(validStatus)),
		validation.Field(&req.Notes, validation.NilOrNotEmpty, validation.Length(0, config.MaxNotesLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var updated *models.Transmittal
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		previous, err := s.repo.SetStatus(txCtx, id, userID, req.Status)
		if err != nil {
			return err
		}

		entry := &models.TransmittalHistory{
			TransmittalID:  id,
			UserID:         userID,
			Action:         models.HistoryActionStatusChanged,
			PreviousStatus: &previous,
			NewStatus:      req.Status,
			Notes:          req.Notes,
		}
		if err := s.repo.AddHistory(txCtx, entry); err != nil {
			return fmt.Errorf("record status change: %w", err)
		}

		updated, err = s.repo.GetByID(txCtx, id, userID)
		if err == nil {
			s.logger.Info("transmittal status changed",
				"id", id,
				"from", previous,
				"to", req.Status,
				"user_id", userID,
			)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *transmittalService) GetHistory(ctx context.Context, id, userID string) ([]models.TransmittalHistory, error) {
	if _, err := s.repo.GetByID(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, id, userID)
}

func (s *transmittalService) DeleteTransmittal(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("transmittal deleted", "id", id, "user_id", userID)
	return nil
}

// GetStats counts every record of the user, per status and in items.
func (s *transmittalService) GetStats(ctx context.Context, userID string) (*models.TransmittalStats, error) {
	all, err := s.repo.List(ctx, userID, models.TransmittalFilter{})
	if err != nil {
		return nil, err
	}

	stats := &models.TransmittalStats{
		Total: len(all),
		ByStatus: map[models.TransmittalStatus]int{
			models.StatusDraft:    0,
			models.StatusSent:     0,
			models.StatusReceived: 0,
			models.StatusPending:  0,
		},
	}
	for _, t := range all {
		stats.ByStatus[t.Status]++
		stats.TotalItems += len(t.Items)
	}
	return stats, nil
}

func validateSave(req *services.SaveTransmittalRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.TransmittalNumber,
			validation.Required,
			validation.Length(1, config.MaxTransmittalNumberLength),
		),
		validation.Field(&req.Status, validation.By(validStatus)),
		validation.Field(&req.CompanyID, validation.NilOrNotEmpty, validation.By(validUUID)),
		validation.Field(&req.Items, validation.Length(0, config.MaxItemsPerTransmittal)),
		validation.Field(&req.Columns, validation.By(validColumns)),
		validation.Field(&req.Notes, validation.Length(0, config.MaxNotesLength)),
		validation.Field(&req.FollowUpDate, validation.Date(models.DateLayout)),
	)
}

func validateUpdate(req *services.UpdateTransmittalRequest) error {
	var items []models.TransmittalItem
	if req.Items != nil {
		items = *req.Items
	}
	var columns []models.TableColumn
	if req.Columns != nil {
		columns = *req.Columns
	}
	return validation.Errors{
		"items":          validation.Validate(items, validation.Length(0, config.MaxItemsPerTransmittal)),
		"columns":        validation.Validate(columns, validation.By(validColumns)),
		"notes":          validation.Validate(req.Notes.Value, validation.Length(0, config.MaxNotesLength)),
		"follow_up_date": validation.Validate(req.FollowUpDate.Value, validation.Date(models.DateLayout)),
	}.Filter()
}

func validStatus(value any) error {
	status, _ := value.(models.TransmittalStatus)
	if status != "" && !status.Valid() {
		return errors.New("must be one of draft, sent, received, pending")
	}
	return nil
}

func validUUID(value any) error {
	id, ok := value.(*string)
	if !ok || id == nil {
		return nil
	}
	if _, err := uuid.Parse(*id); err != nil {
		return errors.New("must be a valid UUID")
	}
	return nil
}

func validColumns(value any) error {
	columns, _ := value.([]models.TableColumn)
	seen := make(map[models.ColumnID]bool, len(columns))
	for _, c := range columns {
		if !c.ID.Valid() {
			return fmt.Errorf("unknown column %q", c.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate column %q", c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// withItemIDs gives manually built items without an id a fresh one.
func withItemIDs(items []models.TransmittalItem) []models.TransmittalItem {
	out := make([]models.TransmittalItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = "doc-" + uuid.NewString()
		}
		out[i] = item
	}
	return out
}
