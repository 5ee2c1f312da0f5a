package dto

import "github.com/google/uuid"

type RoleResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IndustryID  *uuid.UUID `json:"industry_id,omitempty"`
	Custom      bool       `json:"custom"`
}

type RoleMatchResponse struct {
	Role  RoleResponse `json:"role"`
	Score float64      `json:"score"`
}

type MatchResultResponse struct {
	Matches       []RoleMatchResponse `json:"matches"`
	SuggestCustom bool                `json:"suggest_custom"`
}
