package handler

import (
	"errors"

	"fluentpro/internal/delivery/http/dto"
	"fluentpro/internal/delivery/http/middleware"
	"fluentpro/internal/domain/onboarding"
	"fluentpro/internal/pkg/response"
	"fluentpro/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type OnboardingHandler struct {
	uc usecase.OnboardingUsecase
}

type selectLanguageRequest struct {
	Language string `json:"language"`
}

type selectIndustryRequest struct {
	Industry string `json:"industry"`
}

type selectRoleRequest struct {
	RoleID uuid.UUID `json:"role_id"`
}

type createCustomRoleRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IndustryID  uuid.UUID `json:"industry_id"`
}

type selectPartnersRequest struct {
	PartnerIDs []uuid.UUID `json:"partner_ids"`
}

func NewOnboardingHandler(uc usecase.OnboardingUsecase) *OnboardingHandler {
	return &OnboardingHandler{uc: uc}
}

func (h *OnboardingHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/onboarding")
	grp.Get("/session", h.Session)
	grp.Put("/language", h.SelectLanguage)
	grp.Put("/industry", h.SelectIndustry)
	grp.Put("/role", h.SelectRole)
	grp.Post("/role/custom", h.CreateCustomRole)
	grp.Put("/partners", h.SelectPartners)
	grp.Post("/complete", h.Complete)
}

func (h *OnboardingHandler) Session(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	state, err := h.uc.StartOrResume(c.Context(), userID)
	if err != nil {
		return mapOnboardingError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SessionStateResponse{
		CurrentPhase:     string(state.CurrentPhase),
		NextRequiredStep: state.NextRequiredStep,
		ResumeToken:      state.ResumeToken,
	})
}

func (h *OnboardingHandler) SelectLanguage(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req selectLanguageRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	profile, err := h.uc.SelectNativeLanguage(c.Context(), userID, req.Language)
	if err != nil {
		return mapOnboardingError(err)
	}
	return response.Success(c, fiber.StatusOK, "Native language selected", profileResponseFrom(profile))
}

func (h *OnboardingHandler) SelectIndustry(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req selectIndustryRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	profile, err := h.uc.SelectIndustry(c.Context(), userID, req.Industry)
	if err != nil {
		return mapOnboardingError(err)
	}
	return response.Success(c, fiber.StatusOK, "Industry selected", profileResponseFrom(profile))
}

func (h *OnboardingHandler) SelectRole(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req selectRoleRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	profile, err := h.uc.SelectRole(c.Context(), userID, req.RoleID)
	if err != nil {
		return mapOnboardingError(err)
	}
	return response.Success(c, fiber.StatusOK, "Role selected", profileResponseFrom(profile))
}

func (h *OnboardingHandler) CreateCustomRole(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req createCustomRoleRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	profile, err := h.uc.SelectCustomRole(c.Context(), userID, req.Title, req.Description, req.IndustryID)
	if err != nil {
		return mapOnboardingError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Custom role created and selected", profileResponseFrom(profile))
}

func (h *OnboardingHandler) SelectPartners(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req selectPartnersRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	profile, err := h.uc.SelectPartners(c.Context(), userID, req.PartnerIDs)
	if err != nil {
		return mapOnboardingError(err)
	}
	return response.Success(c, fiber.StatusOK, "Communication partners selected", profileResponseFrom(profile))
}

func (h *OnboardingHandler) Complete(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	summary, err := h.uc.Complete(c.Context(), userID)
	if err != nil {
		return mapOnboardingError(err)
	}

	out := dto.OnboardingSummaryResponse{
		UserID:         summary.UserID,
		NativeLanguage: summary.NativeLanguage,
		Industry:       dto.IndustryResponse{ID: summary.Industry.ID, Name: summary.Industry.Name},
		Role:           roleResponseFrom(summary.Role),
		Partners:       make([]dto.SummaryPartnerResponse, 0, len(summary.Partners)),
		CompletedAt:    summary.CompletedAt,
	}
	for _, p := range summary.Partners {
		out.Partners = append(out.Partners, dto.SummaryPartnerResponse{
			ID:       p.ID,
			Name:     p.Name,
			Priority: p.Priority,
		})
	}
	return response.Success(c, fiber.StatusOK, "Onboarding completed", out)
}

func profileResponseFrom(p onboarding.Profile) dto.ProfileResponse {
	out := dto.ProfileResponse{
		UserID:         p.UserID,
		Phase:          string(onboarding.ComputePhase(p)),
		NativeLanguage: p.NativeLanguage,
		IndustryID:     p.IndustryID,
		RoleID:         p.RoleID,
		CompletedAt:    p.CompletedAt,
	}
	for _, sel := range p.Partners {
		out.Partners = append(out.Partners, dto.PartnerSelectionResponse{
			PartnerID: sel.PartnerID,
			Priority:  sel.Priority,
		})
	}
	return out
}

func roleResponseFrom(r usecase.RoleItem) dto.RoleResponse {
	return dto.RoleResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		IndustryID:  r.IndustryID,
		Custom:      r.Custom,
	}
}

func mapOnboardingError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrBusinessRule):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrEmbeddingService), errors.Is(err, usecase.ErrIndexUnavailable):
		return middleware.NewAppError(fiber.StatusBadGateway, response.MessageBadGateway, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
