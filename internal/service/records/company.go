package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"transmittal/internal/config"
	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/repositories"
	"transmittal/internal/domain/services"
)

// Colours used when a company is created without a scheme.
const (
	DefaultPrimaryColor   = "#2563eb"
	DefaultSecondaryColor = "#64748b"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type companyService struct {
	repo   repositories.CompanyRepository
	logger *slog.Logger
}

// NewCompanyService creates the company profile service
func NewCompanyService(repo repositories.CompanyRepository, logger *slog.Logger) services.CompanyService {
	return &companyService{repo: repo, logger: logger}
}

func (s *companyService) ListCompanies(ctx context.Context, ownerID string) ([]models.Company, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *companyService) GetCompany(ctx context.Context, id, ownerID string) (*models.Company, error) {
	return s.repo.GetByID(ctx, id, ownerID)
}

func (s *companyService) CreateCompany(ctx context.Context, req *services.CreateCompanyRequest) (*models.Company, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.PrimaryColor == "" {
		req.PrimaryColor = DefaultPrimaryColor
	}
	if req.SecondaryColor == "" {
		req.SecondaryColor = DefaultSecondaryColor
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxCompanyNameLength)),
		validation.Field(&req.PrimaryColor, validation.Match(hexColor).Error("must be a #rrggbb colour")),
		validation.Field(&req.SecondaryColor, validation.Match(hexColor).Error("must be a #rrggbb colour")),
		validation.Field(&req.LogoURL, validation.By(imageReference)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	c := &models.Company{
		OwnerID:        req.OwnerID,
		Name:           req.Name,
		LogoURL:        emptyToNil(req.LogoURL),
		ContactDetails: emptyToNil(req.ContactDetails),
		ColorScheme:    models.ColorScheme{Primary: req.PrimaryColor, Secondary: req.SecondaryColor},
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("company created", "id", c.ID, "name", c.Name, "owner_id", req.OwnerID)
	return c, nil
}

func (s *companyService) DeleteCompany(ctx context.Context, id, ownerID string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	s.logger.Info("company deleted", "id", id, "owner_id", ownerID)
	return nil
}

// imageReference accepts an http(s) URL or an image data URL.
func imageReference(value any) error {
	ref, _ := value.(*string)
	if ref == nil || *ref == "" {
		return nil
	}
	v := *ref
	if strings.HasPrefix(v, "data:image/") || strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "http://") {
		return nil
	}
	return errors.New("must be an image URL or data URL")
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
