package dto

import (
	"time"

	"github.com/google/uuid"
)

type SessionStateResponse struct {
	CurrentPhase     string `json:"current_phase"`
	NextRequiredStep string `json:"next_required_step"`
	ResumeToken      string `json:"resume_token,omitempty"`
}

type PartnerSelectionResponse struct {
	PartnerID uuid.UUID `json:"partner_id"`
	Priority  int       `json:"priority"`
}

type ProfileResponse struct {
	UserID         uuid.UUID                  `json:"user_id"`
	Phase          string                     `json:"phase"`
	NativeLanguage *string                    `json:"native_language,omitempty"`
	IndustryID     *uuid.UUID                 `json:"industry_id,omitempty"`
	RoleID         *uuid.UUID                 `json:"role_id,omitempty"`
	Partners       []PartnerSelectionResponse `json:"partners,omitempty"`
	CompletedAt    *time.Time                 `json:"completed_at,omitempty"`
}

type SummaryPartnerResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Priority int       `json:"priority"`
}

type OnboardingSummaryResponse struct {
	UserID         uuid.UUID                `json:"user_id"`
	NativeLanguage string                   `json:"native_language"`
	Industry       IndustryResponse         `json:"industry"`
	Role           RoleResponse             `json:"role"`
	Partners       []SummaryPartnerResponse `json:"partners"`
	CompletedAt    time.Time                `json:"completed_at"`
}
