package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

// GET /recommendations/{userID}?model=&limit=
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return
	}

	limit, ok := limitQuery(r, 0, 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}

	result, err := h.service.GetRecommendations(r.Context(), userID, limit, r.URL.Query().Get("model"))
	if err != nil {
		writeRecommendationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendationResponse(userID, result))
}

// GET /recommendations/{userID}/category
func (h *Handler) GetCategoryRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return
	}

	limit, ok := limitQuery(r, 0, 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}

	result, err := h.service.GetCategoryRecommendations(r.Context(), userID, limit)
	if err != nil {
		writeRecommendationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendationResponse(userID, result))
}

func recommendationResponse(userID int64, result *domain.RecommendationResult) RecommendationResponse {
	return RecommendationResponse{
		UserID:          userID,
		Model:           result.ModelName,
		Recommendations: result.Recommendations,
		Metadata: domain.RecommendationMeta{
			CacheHit:    result.CacheHit,
			Degraded:    result.Degraded,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Recommendations),
		},
	}
}

func writeRecommendationError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUnsupportedModel) {
		writeError(w, http.StatusBadRequest, "unsupported_model",
			"Unknown model (graph|collab|content|collaborative) expected")
		return
	}
	if domain.IsInvalidArgument(err) {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		writeError(w, http.StatusServiceUnavailable, "request_timeout",
			"Request timed out, please try again")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}
