package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

// GET /ab/user/{userID}
func (h *Handler) GetUserAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return
	}

	assignment, err := h.ab.GetOrAssign(r.Context(), userID)
	if err != nil {
		if domain.IsInvalidArgument(err) {
			writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, AssignmentResponse{Assignment: assignment})
}

// POST /ab/assign-all?models=1,2,3
func (h *Handler) AssignAll(w http.ResponseWriter, r *http.Request) {
	modelIDs, err := parseModelIDs(r.URL.Query().Get("models"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid models parameter")
		return
	}

	result, err := h.ab.AssignAllEven(r.Context(), modelIDs)
	if err != nil {
		if domain.IsInvalidArgument(err) {
			writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
			return
		}
		if domain.IsStoreUnavailable(err) {
			writeError(w, http.StatusServiceUnavailable, "store_unavailable",
				"Assignment store is temporarily unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parseModelIDs reads the comma-separated models query parameter,
// defaulting to the standard three-model set when absent.
func parseModelIDs(raw string) ([]int64, error) {
	if raw == "" {
		ids := make([]int64, 0, 3)
		for _, m := range domain.DefaultModels() {
			ids = append(ids, m.ID)
		}
		return ids, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, &domain.InvalidArgumentError{Msg: "invalid model id " + p}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
