package handler

import (
	"log/slog"
	"net/http"

	"transmittal/internal/domain/services"
	"transmittal/internal/httputil"
)

// TemplateHandler handles template HTTP requests
type TemplateHandler struct {
	svc    services.TemplateService
	logger *slog.Logger
}

func NewTemplateHandler(svc services.TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{svc: svc, logger: logger}
}

// GET /api/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	templates, err := h.svc.ListTemplates(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, templates)
}

// POST /api/templates
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req services.CreateTemplateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = userID

	template, err := h.svc.CreateTemplate(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, template)
}

// DELETE /api/templates/{id}
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTemplate(r.Context(), r.PathValue("id"), userID); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
