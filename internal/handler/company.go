package handler

import (
	"log/slog"
	"net/http"

	"transmittal/internal/domain/services"
	"transmittal/internal/httputil"
)

// CompanyHandler handles company HTTP requests
type CompanyHandler struct {
	svc    services.CompanyService
	logger *slog.Logger
}

func NewCompanyHandler(svc services.CompanyService, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{svc: svc, logger: logger}
}

// GET /api/companies
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	companies, err := h.svc.ListCompanies(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, companies)
}

// POST /api/companies
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req services.CreateCompanyRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.OwnerID = userID

	company, err := h.svc.CreateCompany(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, company)
}

// DELETE /api/companies/{id}
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCompany(r.Context(), r.PathValue("id"), userID); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
