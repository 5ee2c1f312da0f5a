package usecase

import (
	"context"
	"fmt"
	"time"

	"fluentpro/internal/domain/onboarding"
	"fluentpro/internal/repository"
)

const (
	industriesCacheKey = "catalog:industries"
	partnersCacheKey   = "catalog:partners"
	catalogCacheTTL    = 10 * time.Minute
)

type CatalogUsecase interface {
	ListIndustries(ctx context.Context) ([]IndustryItem, error)
	ListPartners(ctx context.Context) ([]PartnerItem, error)
	ListLanguages() []string
}

type Catalog struct {
	industries repository.IndustryRepository
	partners   repository.PartnerRepository
	cache      Cache
}

func NewCatalogUsecase(industries repository.IndustryRepository, partners repository.PartnerRepository, cache Cache) *Catalog {
	return &Catalog{industries: industries, partners: partners, cache: cache}
}

func (u *Catalog) ListIndustries(ctx context.Context) ([]IndustryItem, error) {
	var cached []IndustryItem
	if u.cacheGet(ctx, industriesCacheKey, &cached) {
		return cached, nil
	}

	industries, err := u.industries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	out := make([]IndustryItem, 0, len(industries))
	for _, it := range industries {
		out = append(out, IndustryItem{ID: it.ID, Name: it.Name})
	}

	u.cacheSet(ctx, industriesCacheKey, out)
	return out, nil
}

func (u *Catalog) ListPartners(ctx context.Context) ([]PartnerItem, error) {
	var cached []PartnerItem
	if u.cacheGet(ctx, partnersCacheKey, &cached) {
		return cached, nil
	}

	partners, err := u.partners.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	out := make([]PartnerItem, 0, len(partners))
	for _, it := range partners {
		out = append(out, PartnerItem{ID: it.ID, Name: it.Name})
	}

	u.cacheSet(ctx, partnersCacheKey, out)
	return out, nil
}

func (u *Catalog) ListLanguages() []string {
	return onboarding.SupportedLanguages()
}

func (u *Catalog) cacheGet(ctx context.Context, key string, out any) bool {
	if u.cache == nil {
		return false
	}
	hit, err := u.cache.GetJSON(ctx, key, out)
	return err == nil && hit
}

func (u *Catalog) cacheSet(ctx context.Context, key string, value any) {
	if u.cache == nil {
		return
	}
	_ = u.cache.SetJSON(ctx, key, value, catalogCacheTTL)
}
