package services

import (
	"context"

	"transmittal/internal/domain/models"
)

// OptionalText carries PATCH tri-state semantics for a nullable text field.
//   - Present=false: leave unchanged
//   - Present=true, Value=nil: clear
//   - Present=true, Value!=nil: set
type OptionalText struct {
	Present bool
	Value   *string
}

// SaveTransmittalRequest creates a cloud record from the current session.
type SaveTransmittalRequest struct {
	UserID            string                   `json:"-"`
	CompanyID         *string                  `json:"company_id,omitempty"`
	TransmittalNumber string                   `json:"transmittal_number"`
	Status            models.TransmittalStatus `json:"status"`
	Details           models.ProjectDetails    `json:"project_details"`
	Items             []models.TransmittalItem `json:"items"`
	Columns           []models.TableColumn     `json:"columns"`
	Notes             *string                  `json:"notes,omitempty"`
	FollowUpDate      *string                  `json:"follow_up_date,omitempty"`
}

// UpdateTransmittalRequest is a partial update; nil fields are left unchanged.
type UpdateTransmittalRequest struct {
	Details      *models.ProjectDetails
	Items        *[]models.TransmittalItem
	Columns      *[]models.TableColumn
	Notes        OptionalText
	FollowUpDate OptionalText
}

// UpdateStatusRequest changes a record's status and logs the change.
type UpdateStatusRequest struct {
	Status models.TransmittalStatus `json:"status"`
	Notes  *string                  `json:"notes,omitempty"`
}

// TransmittalService is the cloud record store for full transmittals.
type TransmittalService interface {
	SaveTransmittal(ctx context.Context, req *SaveTransmittalRequest) (*models.Transmittal, error)
	GetTransmittal(ctx context.Context, id, userID string) (*models.Transmittal, error)
	ListTransmittals(ctx context.Context, userID string, filter models.TransmittalFilter) ([]models.Transmittal, error)
	ListTransmittalsByIDs(ctx context.Context, userID string, ids []string) ([]models.Transmittal, error)
	UpdateTransmittal(ctx context.Context, id, userID string, req *UpdateTransmittalRequest) (*models.Transmittal, error)
	UpdateStatus(ctx context.Context, id, userID string, req *UpdateStatusRequest) (*models.Transmittal, error)
	GetHistory(ctx context.Context, id, userID string) ([]models.TransmittalHistory, error)
	DeleteTransmittal(ctx context.Context, id, userID string) error
	GetStats(ctx context.Context, userID string) (*models.TransmittalStats, error)
}

// CreateTemplateRequest saves the template subset of the given details.
type CreateTemplateRequest struct {
	UserID    string                `json:"-"`
	CompanyID *string               `json:"company_id,omitempty"`
	Name      string                `json:"name"`
	Details   models.ProjectDetails `json:"project_details"`
	IsShared  bool                  `json:"is_shared"`
}

// TemplateService manages reusable header templates.
type TemplateService interface {
	ListTemplates(ctx context.Context, userID string) ([]models.Template, error)
	GetTemplate(ctx context.Context, id, userID string) (*models.Template, error)
	CreateTemplate(ctx context.Context, req *CreateTemplateRequest) (*models.Template, error)
	DeleteTemplate(ctx context.Context, id, userID string) error
}

// CreateCompanyRequest creates a sender company profile.
type CreateCompanyRequest struct {
	OwnerID        string  `json:"-"`
	Name           string  `json:"name"`
	LogoURL        *string `json:"logo_url,omitempty"`
	ContactDetails *string `json:"contact_details,omitempty"`
	PrimaryColor   string  `json:"primary_color"`
	SecondaryColor string  `json:"secondary_color"`
}

// CompanyService manages company profiles.
type CompanyService interface {
	ListCompanies(ctx context.Context, ownerID string) ([]models.Company, error)
	GetCompany(ctx context.Context, id, ownerID string) (*models.Company, error)
	CreateCompany(ctx context.Context, req *CreateCompanyRequest) (*models.Company, error)
	DeleteCompany(ctx context.Context, id, ownerID string) error
}

// UpdateProfileRequest sets the caller's profile fields.
type UpdateProfileRequest struct {
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
}

// ProfileService manages user profiles.
type ProfileService interface {
	// GetProfile returns the stored profile or an empty one for new users.
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.Profile, error)
}
