package handler

import (
	"fluentpro/internal/delivery/http/dto"
	"fluentpro/internal/delivery/http/middleware"
	"fluentpro/internal/pkg/response"
	"fluentpro/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type RoleHandler struct {
	uc usecase.RoleMatchingUsecase
}

type matchRolesRequest struct {
	JobTitle       string     `json:"job_title"`
	JobDescription string     `json:"job_description"`
	IndustryID     *uuid.UUID `json:"industry_id,omitempty"`
	Limit          int        `json:"limit,omitempty"`
}

func NewRoleHandler(uc usecase.RoleMatchingUsecase) *RoleHandler {
	return &RoleHandler{uc: uc}
}

func (h *RoleHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/roles")
	grp.Post("/match", h.Match)
}

func (h *RoleHandler) Match(c fiber.Ctx) error {
	if _, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID); !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req matchRolesRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.uc.MatchRoles(c.Context(), usecase.MatchInput{
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		IndustryID:     req.IndustryID,
		Limit:          req.Limit,
	})
	if err != nil {
		return mapOnboardingError(err)
	}

	out := dto.MatchResultResponse{
		Matches:       make([]dto.RoleMatchResponse, 0, len(res.Matches)),
		SuggestCustom: res.SuggestCustom,
	}
	for _, m := range res.Matches {
		out.Matches = append(out.Matches, dto.RoleMatchResponse{
			Role:  roleResponseFrom(m.Role),
			Score: m.Score,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
