package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookbarn/recommendation-engine/internal/ab"
	"github.com/bookbarn/recommendation-engine/internal/events"
	"github.com/bookbarn/recommendation-engine/internal/service"
)

type Handler struct {
	service *service.Service
	ab      *ab.Service
	events  *events.Service
}

func NewHandler(svc *service.Service, abSvc *ab.Service, eventSvc *events.Service) *Handler {
	return &Handler{service: svc, ab: abSvc, events: eventSvc}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// userIDParam parses the positive-integer user id path segment.
func userIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	return id, err == nil && id > 0
}

// limitQuery parses an optional bounded limit query parameter,
// returning fallback when absent.
func limitQuery(r *http.Request, fallback, max int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 || parsed > max {
		return 0, false
	}
	return parsed, true
}
