package records

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"transmittal/internal/config"
	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/repositories"
	"transmittal/internal/domain/services"
)

type templateService struct {
	repo   repositories.TemplateRepository
	logger *slog.Logger
}

// NewTemplateService creates the header template service
func NewTemplateService(repo repositories.TemplateRepository, logger *slog.Logger) services.TemplateService {
	return &templateService{repo: repo, logger: logger}
}

// ListTemplates returns the user's templates and the shared ones.
func (s *templateService) ListTemplates(ctx context.Context, userID string) ([]models.Template, error) {
	return s.repo.List(ctx, userID)
}

func (s *templateService) GetTemplate(ctx context.Context, id, userID string) (*models.Template, error) {
	return s.repo.GetByID(ctx, id, userID)
}

// CreateTemplate stores the template subset of req.Details; the number,
// dates, items and signatures are never part of a template.
func (s *templateService) CreateTemplate(ctx context.Context, req *services.CreateTemplateRequest) (*models.Template, error) {
	req.Name = strings.TrimSpace(req.Name)
	err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxTemplateNameLength)),
		validation.Field(&req.CompanyID, validation.NilOrNotEmpty, validation.By(validUUID)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	t := &models.Template{
		UserID:           req.UserID,
		CompanyID:        req.CompanyID,
		Name:             req.Name,
		Department:       req.Details.Department,
		RecipientCompany: req.Details.RecipientCompany,
		Data:             models.TemplateDataFrom(req.Details),
		IsShared:         req.IsShared,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("template created", "id", t.ID, "name", t.Name, "user_id", req.UserID)
	return t, nil
}

// DeleteTemplate removes one of the user's own templates. Shared templates
// of other users are not found.
func (s *templateService) DeleteTemplate(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("template deleted", "id", id, "user_id", userID)
	return nil
}
