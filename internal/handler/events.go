package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

type logEventRequest struct {
	UserID    int64             `json:"user_id"`
	ProductID string            `json:"product_id"`
	ModelID   int64             `json:"model_id"`
	EventType string            `json:"event_type"`
	Metadata  map[string]string `json:"metadata"`
}

// POST /events
func (h *Handler) LogEvent(w http.ResponseWriter, r *http.Request) {
	var req logEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	stored, err := h.events.Log(r.Context(), domain.RecommendationEvent{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		ModelID:   req.ModelID,
		EventType: req.EventType,
		Metadata:  req.Metadata,
	})
	if err != nil {
		if domain.IsInvalidArgument(err) {
			writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to log event")
		return
	}

	writeJSON(w, http.StatusOK, EventResponse{OK: true, Event: &stored})
}

// GET /events/model/{modelID}/counts
func (h *Handler) GetModelEventCounts(w http.ResponseWriter, r *http.Request) {
	modelID, err := strconv.ParseInt(chi.URLParam(r, "modelID"), 10, 64)
	if err != nil || modelID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid model_id parameter")
		return
	}

	counts, err := h.events.CountsByModel(r.Context(), modelID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to count events")
		return
	}

	if counts == nil {
		counts = []domain.EventCount{}
	}
	writeJSON(w, http.StatusOK, EventCountsResponse{OK: true, Counts: counts})
}

// GET /events/user/{userID}?limit=
func (h *Handler) GetUserEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return
	}

	limit, ok := limitQuery(r, 50, 200)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}

	events, err := h.events.RecentByUser(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch events")
		return
	}

	writeJSON(w, http.StatusOK, UserEventsResponse{OK: true, Events: events, Count: len(events)})
}

// GET /events/stats
func (h *Handler) GetEventStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.events.OverallStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, EventStatsResponse{OK: true, Stats: stats})
}
