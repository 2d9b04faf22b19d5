// Package seed fills a development database with a sample sender company,
// a template and a handful of transmittals in every status.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"transmittal/internal/domain/models"
	"transmittal/internal/domain/services"
)

// User is the account the sample data is created for.
type User struct {
	ID       string
	Email    string
	FullName string
}

// Seeder creates sample records through the service layer.
type Seeder struct {
	profiles     services.ProfileService
	companies    services.CompanyService
	templates    services.TemplateService
	transmittals services.TransmittalService
	numbers      services.NumberAllocator
	logger       *slog.Logger
	now          func() time.Time
}

func NewSeeder(
	profiles services.ProfileService,
	companies services.CompanyService,
	templates services.TemplateService,
	transmittals services.TransmittalService,
	numbers services.NumberAllocator,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		profiles:     profiles,
		companies:    companies,
		templates:    templates,
		transmittals: transmittals,
		numbers:      numbers,
		logger:       logger,
		now:          time.Now,
	}
}

// Summary counts what Run created.
type Summary struct {
	CompanyID    string
	TemplateID   string
	Transmittals int
}

type sampleTransmittal struct {
	recipient string
	project   string
	purpose   string
	status    models.TransmittalStatus
	items     []models.TransmittalItem
}

var samples = []sampleTransmittal{
	{
		recipient: "Northwind Builders Inc.",
		project:   "Harbor View Tower",
		purpose:   "For Review",
		status:    models.StatusSent,
		items: []models.TransmittalItem{
			{Qty: "1", DocumentType: "Drawing", Description: "Architectural Floor Plan Level 2", OriginalFilename: "A-102_floor_plan.pdf"},
			{Qty: "1", DocumentType: "Drawing", Description: "Structural Framing Plan Roof Deck", OriginalFilename: "S-301_roof_framing.pdf"},
			{Qty: "2", DocumentType: "Specification", Description: "Curtain Wall Technical Specification", OriginalFilename: "spec_curtain_wall.docx"},
		},
	},
	{
		recipient: "City Engineering Office",
		project:   "Harbor View Tower",
		purpose:   "For Approval",
		status:    models.StatusReceived,
		items: []models.TransmittalItem{
			{Qty: "1", DocumentType: "Permit", Description: "Building Permit Application Form", OriginalFilename: "permit_application.pdf"},
			{Qty: "1", DocumentType: "Report", Description: "Geotechnical Investigation Report", OriginalFilename: "geotech_report_final.pdf", Remarks: "Signed and sealed"},
		},
	},
	{
		recipient: "Greenfield Supply Co.",
		project:   "Riverside Clinic Fit-out",
		purpose:   "For Information",
		status:    models.StatusPending,
		items: []models.TransmittalItem{
			{Qty: "3", DocumentType: "Shop Drawing", Description: "Ceiling Grid Layout Shop Drawing", OriginalFilename: "SD-ceiling-grid.dwg"},
		},
	},
	{
		recipient: "Northwind Builders Inc.",
		project:   "Riverside Clinic Fit-out",
		purpose:   "For Construction",
		status:    models.StatusDraft,
		items: []models.TransmittalItem{
			{Qty: "1", DocumentType: "Memo", Description: "Site Coordination Memo No. 4", OriginalFilename: "memo_04.pdf"},
			{Qty: "1", DocumentType: "Photo", Description: "Site Progress Photo East Elevation", OriginalFilename: "IMG_2031.jpg"},
		},
	},
}

// Run creates the profile, company, template and sample transmittals.
func (s *Seeder) Run(ctx context.Context, user User) (*Summary, error) {
	fullName := user.FullName
	if _, err := s.profiles.UpdateProfile(ctx, user.ID, &services.UpdateProfileRequest{
		Email:    user.Email,
		FullName: &fullName,
	}); err != nil {
		return nil, fmt.Errorf("seed profile: %w", err)
	}

	contact := "Unit 5, 2F Harborview Building\nMakati City"
	company, err := s.companies.CreateCompany(ctx, &services.CreateCompanyRequest{
		OwnerID:        user.ID,
		Name:           "Fieldpoint Design Studio",
		ContactDetails: &contact,
		PrimaryColor:   "#1d4ed8",
		SecondaryColor: "#475569",
	})
	if err != nil {
		return nil, fmt.Errorf("seed company: %w", err)
	}
	s.logger.Info("seeded company", "id", company.ID, "user_id", user.ID)

	sender := models.ProjectDetails{
		Sender:               company.Name,
		SenderEmail:          user.Email,
		SenderContactNumber:  "+63 2 8123 4567",
		SenderContactDetails: contact,
		Department:           "Design Management",
		PreparedBy:           user.FullName,
		NotedBy:              "Project Manager",
	}

	templateDetails := sender
	templateDetails.RecipientCompany = "Northwind Builders Inc."
	templateDetails.RecipientName = "Document Control"
	templateDetails.Purpose = "For Review"
	template, err := s.templates.CreateTemplate(ctx, &services.CreateTemplateRequest{
		UserID:    user.ID,
		CompanyID: &company.ID,
		Name:      "Northwind review submittal",
		Details:   templateDetails,
	})
	if err != nil {
		return nil, fmt.Errorf("seed template: %w", err)
	}
	s.logger.Info("seeded template", "id", template.ID, "user_id", user.ID)

	day := s.now()
	created := 0
	for i, sample := range samples {
		number, err := s.numbers.NextNumber(ctx, user.ID, user.FullName)
		if err != nil {
			return nil, fmt.Errorf("seed number %d: %w", i+1, err)
		}

		details := sender
		details.RecipientCompany = sample.recipient
		details.ProjectName = sample.project
		details.Purpose = sample.purpose
		details.Date = day.Format(models.DateLayout)
		details.TimeGenerated = day.Format(models.TimeLayout)

		record, err := s.transmittals.SaveTransmittal(ctx, &services.SaveTransmittalRequest{
			UserID:            user.ID,
			CompanyID:         &company.ID,
			TransmittalNumber: number,
			Details:           details,
			Items:             sample.items,
		})
		if err != nil {
			return nil, fmt.Errorf("seed transmittal %s: %w", number, err)
		}

		if sample.status != models.StatusDraft {
			if _, err := s.transmittals.UpdateStatus(ctx, record.ID, user.ID, &services.UpdateStatusRequest{
				Status: sample.status,
			}); err != nil {
				return nil, fmt.Errorf("seed status of %s: %w", number, err)
			}
		}
		created++
	}

	return &Summary{CompanyID: company.ID, TemplateID: template.ID, Transmittals: created}, nil
}
