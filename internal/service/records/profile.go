package records

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/repositories"
	"transmittal/internal/domain/services"
)

type profileService struct {
	repo   repositories.ProfileRepository
	logger *slog.Logger
}

// NewProfileService creates the user profile service
func NewProfileService(repo repositories.ProfileRepository, logger *slog.Logger) services.ProfileService {
	return &profileService{repo: repo, logger: logger}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &models.Profile{ID: userID}, nil
	}
	return p, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, req *services.UpdateProfileRequest) (*models.Profile, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		req.FullName = &name
	}
	err := validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Length(0, 320)),
		validation.Field(&req.FullName, validation.Length(0, 255)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	p := &models.Profile{ID: userID, Email: req.Email, FullName: req.FullName}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", "user_id", userID)
	return p, nil
}
