package domain

import "time"

// Canonical model names as stored in recommendation_models.
const (
	ModelCollaborative = "collaborative"
	ModelContent       = "content"
	ModelGraph         = "graph"
)

type RecommendationModel struct {
	ID       int64  `json:"model_id"`
	Name     string `json:"model_name"`
	IsActive bool   `json:"is_active"`
}

// DefaultModels is the assignment pool used when the assignment store
// is unreachable and no model catalog can be read.
func DefaultModels() []RecommendationModel {
	return []RecommendationModel{
		{ID: 1, Name: ModelCollaborative, IsActive: true},
		{ID: 2, Name: ModelContent, IsActive: true},
		{ID: 3, Name: ModelGraph, IsActive: true},
	}
}

// ModelAssignment is a user's sticky A/B strategy choice. Degraded is
// set when the assignment was served from the in-memory fallback store
// and may not survive a restart.
type ModelAssignment struct {
	UserID     int64     `json:"user_id"`
	ModelID    int64     `json:"model_id"`
	ModelName  string    `json:"model_name"`
	AssignedAt time.Time `json:"assigned_at"`
	Degraded   bool      `json:"degraded,omitempty"`
}
