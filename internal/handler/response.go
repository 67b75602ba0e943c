package handler

import "github.com/bookbarn/recommendation-engine/internal/domain"

type RecommendationResponse struct {
	UserID          int64                     `json:"user_id"`
	Model           string                    `json:"model"`
	Recommendations []domain.Candidate        `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type AssignmentResponse struct {
	Assignment *domain.ModelAssignment `json:"assignment"`
}

type EventResponse struct {
	OK    bool                        `json:"ok"`
	Event *domain.RecommendationEvent `json:"event"`
}

type EventCountsResponse struct {
	OK     bool                `json:"ok"`
	Counts []domain.EventCount `json:"counts"`
}

type UserEventsResponse struct {
	OK     bool                         `json:"ok"`
	Events []domain.RecommendationEvent `json:"events"`
	Count  int                          `json:"count"`
}

type EventStatsResponse struct {
	OK    bool               `json:"ok"`
	Stats *domain.EventStats `json:"stats"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
