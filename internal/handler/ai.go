package handler

import (
	"log/slog"
	"net/http"

	"transmittal/internal/domain/models"
	"transmittal/internal/domain/services"
	"transmittal/internal/httputil"
)

// Keys used when the caller sends none of its own.
type DefaultKeys struct {
	Gemini string
	Google string
}

// AIHandler scans Drive folders and categorizes their files.
type AIHandler struct {
	newEnumerator services.EnumeratorFactory
	categorizer   services.Categorizer
	keys          DefaultKeys
	logger        *slog.Logger
}

func NewAIHandler(newEnumerator services.EnumeratorFactory, categorizer services.Categorizer, keys DefaultKeys, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		newEnumerator: newEnumerator,
		categorizer:   categorizer,
		keys:          keys,
		logger:        logger,
	}
}

type scanRequest struct {
	Folder         string `json:"folder"`
	ScanSubfolders bool   `json:"scan_subfolders"`
}

// POST /api/drive/scan
func (h *AIHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	var req scanRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := firstNonEmpty(r.Header.Get(GoogleKeyHeader), r.Header.Get(GeminiKeyHeader), h.keys.Google)
	enumerator, err := h.newEnumerator(r.Context(), key)
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := enumerator.ListFiles(r.Context(), req.Folder, req.ScanSubfolders)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

type categorizeRequest struct {
	Files       []models.DriveFile `json:"files"`
	ProjectName string             `json:"project_name"`
	Deep        bool               `json:"deep"`
}

// POST /api/categorize
func (h *AIHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	var req categorizeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.categorizer.Categorize(r.Context(), &services.CategorizeRequest{
		APIKey:      firstNonEmpty(r.Header.Get(GeminiKeyHeader), h.keys.Gemini),
		Files:       req.Files,
		ProjectName: req.ProjectName,
		Deep:        req.Deep,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"items": items})
}
