package handler

import (
	"fluentpro/internal/delivery/http/dto"
	"fluentpro/internal/pkg/response"
	"fluentpro/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type CatalogHandler struct {
	uc usecase.CatalogUsecase
}

func NewCatalogHandler(uc usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

func (h *CatalogHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/catalog")
	grp.Get("/industries", h.ListIndustries)
	grp.Get("/partners", h.ListPartners)
	grp.Get("/languages", h.ListLanguages)
}

func (h *CatalogHandler) ListIndustries(c fiber.Ctx) error {
	items, err := h.uc.ListIndustries(c.Context())
	if err != nil {
		return mapOnboardingError(err)
	}

	res := make([]dto.IndustryResponse, 0, len(items))
	for _, it := range items {
		res = append(res, dto.IndustryResponse{ID: it.ID, Name: it.Name})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *CatalogHandler) ListPartners(c fiber.Ctx) error {
	items, err := h.uc.ListPartners(c.Context())
	if err != nil {
		return mapOnboardingError(err)
	}

	res := make([]dto.PartnerResponse, 0, len(items))
	for _, it := range items {
		res = append(res, dto.PartnerResponse{ID: it.ID, Name: it.Name})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *CatalogHandler) ListLanguages(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.uc.ListLanguages())
}
