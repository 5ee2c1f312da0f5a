package dto

import "github.com/google/uuid"

type IndustryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type PartnerResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
