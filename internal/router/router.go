package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bookbarn/recommendation-engine/internal/handler"
)

func Setup(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Routes
	r.Get("/recommendations/{userID}", h.GetRecommendations)
	r.Get("/recommendations/{userID}/category", h.GetCategoryRecommendations)
	r.Get("/ab/user/{userID}", h.GetUserAssignment)
	r.Post("/ab/assign-all", h.AssignAll)
	r.Post("/events", h.LogEvent)
	r.Get("/events/model/{modelID}/counts", h.GetModelEventCounts)
	r.Get("/events/user/{userID}", h.GetUserEvents)
	r.Get("/events/stats", h.GetEventStats)
	r.Get("/health", healthCheck)

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
