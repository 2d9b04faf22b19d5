package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transmittal/internal/domain/models"
	"transmittal/internal/domain/services"
)

type recorder struct {
	services.ProfileService
	services.CompanyService
	services.TemplateService
	services.TransmittalService

	profile  *services.UpdateProfileRequest
	template *services.CreateTemplateRequest
	saved    []*services.SaveTransmittalRequest
	statuses map[string]models.TransmittalStatus
	seq      int
	failAt   int
}

func (r *recorder) UpdateProfile(ctx context.Context, userID string, req *services.UpdateProfileRequest) (*models.Profile, error) {
	r.profile = req
	return &models.Profile{ID: userID}, nil
}

func (r *recorder) CreateCompany(ctx context.Context, req *services.CreateCompanyRequest) (*models.Company, error) {
	return &models.Company{ID: "company-1", OwnerID: req.OwnerID, Name: req.Name}, nil
}

func (r *recorder) CreateTemplate(ctx context.Context, req *services.CreateTemplateRequest) (*models.Template, error) {
	r.template = req
	return &models.Template{ID: "template-1"}, nil
}

func (r *recorder) SaveTransmittal(ctx context.Context, req *services.SaveTransmittalRequest) (*models.Transmittal, error) {
	r.saved = append(r.saved, req)
	return &models.Transmittal{ID: fmt.Sprintf("t%d", len(r.saved)), Status: models.StatusDraft}, nil
}

func (r *recorder) UpdateStatus(ctx context.Context, id, userID string, req *services.UpdateStatusRequest) (*models.Transmittal, error) {
	r.statuses[id] = req.Status
	return &models.Transmittal{ID: id, Status: req.Status}, nil
}

func (r *recorder) NextNumber(ctx context.Context, userID, displayName string) (string, error) {
	r.seq++
	if r.seq == r.failAt {
		return "", errors.New("sequence table missing")
	}
	return fmt.Sprintf("TR-FP-20240307-%04d-JDC", r.seq), nil
}

func (r *recorder) NumberOrFallback(ctx context.Context, userID, displayName string) string {
	return ""
}

func (r *recorder) CurrentSequence(ctx context.Context, userID string) (int, error) {
	return r.seq, nil
}

func newSeeder(r *recorder) *Seeder {
	s := NewSeeder(r, r, r, r, r, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2024, 3, 7, 14, 5, 0, 0, time.UTC) }
	return s
}

func TestSeeder_Run(t *testing.T) {
	r := &recorder{statuses: map[string]models.TransmittalStatus{}}
	user := User{ID: "user-1", Email: "test@example.com", FullName: "Juan Dela Cruz"}

	summary, err := newSeeder(r).Run(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, "company-1", summary.CompanyID)
	assert.Equal(t, "template-1", summary.TemplateID)
	assert.Equal(t, len(samples), summary.Transmittals)

	require.NotNil(t, r.profile.FullName)
	assert.Equal(t, "Juan Dela Cruz", *r.profile.FullName)
	assert.Equal(t, "company-1", *r.template.CompanyID)

	require.Len(t, r.saved, len(samples))
	first := r.saved[0]
	assert.Equal(t, "TR-FP-20240307-0001-JDC", first.TransmittalNumber)
	assert.Equal(t, "2024-03-07", first.Details.Date)
	assert.Equal(t, "02:05 PM", first.Details.TimeGenerated)
	assert.Equal(t, "Fieldpoint Design Studio", first.Details.Sender)

	// drafts keep their initial status; everything else moves once
	assert.Equal(t, map[string]models.TransmittalStatus{
		"t1": models.StatusSent,
		"t2": models.StatusReceived,
		"t3": models.StatusPending,
	}, r.statuses)
}

func TestSeeder_RunStopsOnNumberFailure(t *testing.T) {
	r := &recorder{statuses: map[string]models.TransmittalStatus{}, failAt: 2}

	_, err := newSeeder(r).Run(context.Background(), User{ID: "user-1", FullName: "Juan Dela Cruz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequence table missing")
	assert.Len(t, r.saved, 1)
}
