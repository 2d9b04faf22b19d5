package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"transmittal/internal/domain/models"
	"transmittal/internal/domain/services"
	"transmittal/internal/httputil"
	"transmittal/internal/service/render"
)

// TransmittalHandler serves the cloud records.
type TransmittalHandler struct {
	svc    services.TransmittalService
	logger *slog.Logger
	now    func() time.Time
}

func NewTransmittalHandler(svc services.TransmittalService, logger *slog.Logger) *TransmittalHandler {
	return &TransmittalHandler{svc: svc, logger: logger, now: time.Now}
}

// GET /api/transmittals?company_id=&search=&status=&date_from=&date_to=
func (h *TransmittalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := models.TransmittalFilter{
		CompanyID: q.Get("company_id"),
		Search:    q.Get("search"),
		Status:    models.TransmittalStatus(q.Get("status")),
		DateFrom:  q.Get("date_from"),
		DateTo:    q.Get("date_to"),
	}
	records, err := h.svc.ListTransmittals(r.Context(), userID, filter)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, records)
}

// POST /api/transmittals
func (h *TransmittalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req services.SaveTransmittalRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = userID

	record, err := h.svc.SaveTransmittal(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, record)
}

// GET /api/transmittals/stats
func (h *TransmittalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.GetStats(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, stats)
}

type exportRequest struct {
	IDs    []string `json:"ids"`
	Format string   `json:"format"`
}

// Export bundles the selected records into one summary file.
// POST /api/transmittals/export
func (h *TransmittalHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req exportRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Format == "" {
		req.Format = "pdf"
	}
	if req.Format != "pdf" && req.Format != "xlsx" && req.Format != "csv" {
		httputil.RespondError(w, http.StatusBadRequest, "format must be one of pdf, xlsx, csv")
		return
	}
	if len(req.IDs) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "ids must not be empty")
		return
	}

	records, err := h.svc.ListTransmittalsByIDs(r.Context(), userID, req.IDs)
	if err != nil {
		handleError(w, err)
		return
	}

	now := h.now()
	var (
		buf         bytes.Buffer
		contentType string
	)
	switch req.Format {
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = render.RenderSummaryXLSX(&buf, records)
	case "csv":
		contentType = "text/csv; charset=utf-8"
		err = render.RenderHistoryCSV(&buf, records)
	default:
		contentType = "application/pdf"
		err = render.RenderSummaryPDF(&buf, records, now)
	}
	if err != nil {
		h.logger.Error("export failed", "format", req.Format, "records", len(records), "user_id", userID, "error", err)
		handleError(w, err)
		return
	}

	h.logger.Info("transmittals exported", "format", req.Format, "records", len(records), "user_id", userID)
	httputil.RespondFile(w, contentType, render.SummaryFilename(req.Format, now), buf.Bytes())
}

// GET /api/transmittals/{id}
func (h *TransmittalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	record, err := h.svc.GetTransmittal(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, record)
}

type updateTransmittalRequest struct {
	Details      *models.ProjectDetails    `json:"project_details"`
	Items        *[]models.TransmittalItem `json:"items"`
	Columns      *[]models.TableColumn     `json:"columns"`
	Notes        httputil.OptionalString   `json:"notes"`
	FollowUpDate httputil.OptionalString   `json:"follow_up_date"`
}

// PATCH /api/transmittals/{id}
func (h *TransmittalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req updateTransmittalRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.svc.UpdateTransmittal(r.Context(), r.PathValue("id"), userID, &services.UpdateTransmittalRequest{
		Details:      req.Details,
		Items:        req.Items,
		Columns:      req.Columns,
		Notes:        services.OptionalText(req.Notes),
		FollowUpDate: services.OptionalText(req.FollowUpDate),
	})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, record)
}

// DELETE /api/transmittals/{id}
func (h *TransmittalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTransmittal(r.Context(), r.PathValue("id"), userID); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH /api/transmittals/{id}/status
func (h *TransmittalHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req services.UpdateStatusRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, record)
}

// GET /api/transmittals/{id}/history
func (h *TransmittalHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	history, err := h.svc.GetHistory(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, history)
}

// GET /api/transmittals/{id}/pdf
func (h *TransmittalHandler) PDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	doc, err := h.document(r, userID)
	if err != nil {
		handleError(w, err)
		return
	}
	sendPDF(w, h.logger, userID, doc)
}

// GET /api/transmittals/{id}/csv
func (h *TransmittalHandler) CSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	doc, err := h.document(r, userID)
	if err != nil {
		handleError(w, err)
		return
	}
	sendCSV(w, doc)
}

// document reprints a record; its UpdatedAt keeps re-downloads byte-identical.
func (h *TransmittalHandler) document(r *http.Request, userID string) (*render.Document, error) {
	record, err := h.svc.GetTransmittal(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		return nil, err
	}
	columns := record.Columns
	if len(columns) == 0 {
		columns = models.DefaultColumns()
	}
	details := record.Details
	details.TransmittalNumber = record.TransmittalNumber
	return &render.Document{
		Details:     details,
		Items:       record.Items,
		Columns:     columns,
		GeneratedAt: record.UpdatedAt,
	}, nil
}
