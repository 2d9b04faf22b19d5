package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"transmittal/internal/domain/models"
	"transmittal/internal/httputil"
	"transmittal/internal/service/render"
)

// RenderHandler turns an unsaved form into a PDF or CSV download.
type RenderHandler struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewRenderHandler(logger *slog.Logger) *RenderHandler {
	return &RenderHandler{logger: logger, now: time.Now}
}

type renderRequest struct {
	Details models.ProjectDetails    `json:"project_details"`
	Items   []models.TransmittalItem `json:"items"`
	Columns []models.TableColumn     `json:"columns"`
}

func (req *renderRequest) document(at time.Time) *render.Document {
	columns := req.Columns
	if len(columns) == 0 {
		columns = models.DefaultColumns()
	}
	return &render.Document{
		Details:     req.Details,
		Items:       req.Items,
		Columns:     columns,
		GeneratedAt: at,
	}
}

// POST /api/render/pdf
func (h *RenderHandler) PDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req renderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sendPDF(w, h.logger, userID, req.document(h.now()))
}

// POST /api/render/csv
func (h *RenderHandler) CSV(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	var req renderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sendCSV(w, req.document(h.now()))
}

func sendPDF(w http.ResponseWriter, logger *slog.Logger, userID string, doc *render.Document) {
	var buf bytes.Buffer
	if err := render.RenderPDF(&buf, doc); err != nil {
		logger.Error("pdf render failed", "number", doc.Details.TransmittalNumber, "user_id", userID, "error", err)
		handleError(w, err)
		return
	}
	httputil.RespondFile(w, "application/pdf", render.PDFFilename(doc.Details.TransmittalNumber), buf.Bytes())
}

func sendCSV(w http.ResponseWriter, doc *render.Document) {
	var buf bytes.Buffer
	if err := render.RenderCSV(&buf, doc.Items, doc.Columns); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondFile(w, "text/csv; charset=utf-8", render.CSVFilename(doc.Details.TransmittalNumber), buf.Bytes())
}
