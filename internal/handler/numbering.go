package handler

import (
	"log/slog"
	"net/http"
	"time"

	"transmittal/internal/domain/services"
	"transmittal/internal/httputil"
	"transmittal/internal/service/numbering"
)

// NumberHandler issues transmittal numbers.
type NumberHandler struct {
	numbers  services.NumberAllocator
	profiles services.ProfileService
	logger   *slog.Logger
}

func NewNumberHandler(numbers services.NumberAllocator, profiles services.ProfileService, logger *slog.Logger) *NumberHandler {
	return &NumberHandler{numbers: numbers, profiles: profiles, logger: logger}
}

type numberResponse struct {
	TransmittalNumber string `json:"transmittal_number"`
	UserCode          string `json:"user_code"`
}

// Allocate never fails: store errors degrade to the ERR sentinel number.
// POST /api/transmittal-numbers
func (h *NumberHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	name := h.displayName(r, userID)
	number := h.numbers.NumberOrFallback(r.Context(), userID, name)
	httputil.RespondJSON(w, http.StatusCreated, numberResponse{
		TransmittalNumber: number,
		UserCode:          numbering.UserCode(name),
	})
}

// GET /api/transmittal-numbers/current
func (h *NumberHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	seq, err := h.numbers.CurrentSequence(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int{
		"year":             time.Now().UTC().Year(),
		"current_sequence": seq,
	})
}

// displayName prefers the stored profile name, then the token's full_name.
func (h *NumberHandler) displayName(r *http.Request, userID string) string {
	stored := ""
	if profile, err := h.profiles.GetProfile(r.Context(), userID); err != nil {
		h.logger.Warn("profile lookup failed, using token name", "user_id", userID, "error", err)
	} else if profile.FullName != nil {
		stored = *profile.FullName
	}
	return firstNonEmpty(stored, httputil.GetDisplayName(r), "User")
}
