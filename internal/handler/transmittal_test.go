package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/services"
)

type fakeTransmittals struct {
	services.TransmittalService

	records map[string]*models.Transmittal
	saved   *services.SaveTransmittalRequest
	updated *services.UpdateTransmittalRequest
	filter  models.TransmittalFilter
}

func newFakeTransmittals() *fakeTransmittals {
	return &fakeTransmittals{records: map[string]*models.Transmittal{
		"t1": {
			ID:                "t1",
			UserID:            "user-1",
			TransmittalNumber: "TR-FP-20240307-0001-JDC",
			Status:            models.StatusSent,
			Details:           models.ProjectDetails{ProjectName: "Tower", RecipientCompany: "Acme"},
			Items:             []models.TransmittalItem{{ID: "i1", Qty: "2", DocumentType: "Drawing", Description: "Plan"}},
			CreatedAt:         time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC),
			UpdatedAt:         time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC),
		},
	}}
}

func (f *fakeTransmittals) GetTransmittal(ctx context.Context, id, userID string) (*models.Transmittal, error) {
	t, ok := f.records[id]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("transmittal %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

func (f *fakeTransmittals) SaveTransmittal(ctx context.Context, req *services.SaveTransmittalRequest) (*models.Transmittal, error) {
	f.saved = req
	return &models.Transmittal{ID: "new", UserID: req.UserID, TransmittalNumber: req.TransmittalNumber}, nil
}

func (f *fakeTransmittals) ListTransmittals(ctx context.Context, userID string, filter models.TransmittalFilter) ([]models.Transmittal, error) {
	f.filter = filter
	return []models.Transmittal{*f.records["t1"]}, nil
}

func (f *fakeTransmittals) ListTransmittalsByIDs(ctx context.Context, userID string, ids []string) ([]models.Transmittal, error) {
	var out []models.Transmittal
	for _, id := range ids {
		if t, ok := f.records[id]; ok && t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTransmittals) UpdateTransmittal(ctx context.Context, id, userID string, req *services.UpdateTransmittalRequest) (*models.Transmittal, error) {
	f.updated = req
	return f.GetTransmittal(ctx, id, userID)
}

func serveTransmittals(h *TransmittalHandler, r *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/transmittals", h.List)
	mux.HandleFunc("POST /api/transmittals", h.Create)
	mux.HandleFunc("POST /api/transmittals/export", h.Export)
	mux.HandleFunc("GET /api/transmittals/{id}", h.Get)
	mux.HandleFunc("PATCH /api/transmittals/{id}", h.Update)
	mux.HandleFunc("GET /api/transmittals/{id}/csv", h.CSV)
	mux.HandleFunc("GET /api/transmittals/{id}/pdf", h.PDF)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authed(r))
	return rec
}

func TestTransmittalHandler_CreateUsesCaller(t *testing.T) {
	svc := newFakeTransmittals()
	h := NewTransmittalHandler(svc, testLogger)

	body := `{"transmittal_number":"TR-1","user_id":"someone-else","items":[]}`
	rec := serveTransmittals(h, httptest.NewRequest(http.MethodPost, "/api/transmittals", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", svc.saved.UserID)
	assert.Equal(t, "TR-1", svc.saved.TransmittalNumber)
}

func TestTransmittalHandler_ListFilters(t *testing.T) {
	svc := newFakeTransmittals()
	h := NewTransmittalHandler(svc, testLogger)

	rec := serveTransmittals(h, httptest.NewRequest(http.MethodGet,
		"/api/transmittals?status=sent&search=tower&date_from=2024-03-01&company_id=c1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TransmittalFilter{
		CompanyID: "c1",
		Search:    "tower",
		Status:    models.StatusSent,
		DateFrom:  "2024-03-01",
	}, svc.filter)
}

func TestTransmittalHandler_GetNotFound(t *testing.T) {
	h := NewTransmittalHandler(newFakeTransmittals(), testLogger)
	rec := serveTransmittals(h, httptest.NewRequest(http.MethodGet, "/api/transmittals/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransmittalHandler_UpdateTriState(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantNil     bool
	}{
		{"absent leaves notes alone", `{}`, false, true},
		{"null clears notes", `{"notes":null}`, true, true},
		{"value sets notes", `{"notes":"call back"}`, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeTransmittals()
			h := NewTransmittalHandler(svc, testLogger)

			rec := serveTransmittals(h, httptest.NewRequest(http.MethodPatch, "/api/transmittals/t1", strings.NewReader(tt.body)))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantPresent, svc.updated.Notes.Present)
			assert.Equal(t, tt.wantNil, svc.updated.Notes.Value == nil)
			assert.False(t, svc.updated.FollowUpDate.Present)
		})
	}
}

func TestTransmittalHandler_Export(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantCode    int
		wantType    string
		wantPrefix  string
		wantFileExt string
	}{
		{"csv", `{"ids":["t1"],"format":"csv"}`, http.StatusOK, "text/csv; charset=utf-8", "", ".csv"},
		{"pdf by default", `{"ids":["t1"]}`, http.StatusOK, "application/pdf", "%PDF-", ".pdf"},
		{"xlsx", `{"ids":["t1"],"format":"xlsx"}`, http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "PK", ".xlsx"},
		{"unknown format", `{"ids":["t1"],"format":"doc"}`, http.StatusBadRequest, "application/problem+json", "", ""},
		{"no ids", `{"format":"csv"}`, http.StatusBadRequest, "application/problem+json", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTransmittalHandler(newFakeTransmittals(), testLogger)
			h.now = func() time.Time { return time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC) }

			rec := serveTransmittals(h, httptest.NewRequest(http.MethodPost, "/api/transmittals/export", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			if tt.wantPrefix != "" {
				assert.True(t, strings.HasPrefix(rec.Body.String(), tt.wantPrefix))
			}
			if tt.wantFileExt != "" {
				assert.Contains(t, rec.Header().Get("Content-Disposition"), "2024-03-08"+tt.wantFileExt)
			}
		})
	}
}

func TestTransmittalHandler_RecordDownloads(t *testing.T) {
	h := NewTransmittalHandler(newFakeTransmittals(), testLogger)

	csv := serveTransmittals(h, httptest.NewRequest(http.MethodGet, "/api/transmittals/t1/csv", nil))
	require.Equal(t, http.StatusOK, csv.Code)
	assert.Equal(t, "QTY,Type of Document,Description,Remarks\n\"2\",\"Drawing\",\"Plan\",\"\"", csv.Body.String())
	assert.Contains(t, csv.Header().Get("Content-Disposition"), "Transmittal-TR-FP-20240307-0001-JDC.csv")

	first := serveTransmittals(h, httptest.NewRequest(http.MethodGet, "/api/transmittals/t1/pdf", nil))
	second := serveTransmittals(h, httptest.NewRequest(http.MethodGet, "/api/transmittals/t1/pdf", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())

	missing := serveTransmittals(h, httptest.NewRequest(http.MethodGet, "/api/transmittals/nope/pdf", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}
