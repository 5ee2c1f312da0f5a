package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fluentpro/internal/domain/matching"
	"fluentpro/internal/pkg/logger"
	"fluentpro/internal/repository"

	"github.com/google/uuid"
)

const (
	matchOverfetchFactor = 2
	defaultMatchLimit    = 5
	maxMatchLimit        = 20
	externalMaxAttempts  = 3
	externalBackoffBase  = 200 * time.Millisecond
	matchCacheTTL        = 10 * time.Minute
)

// Embedder turns free text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RoleIndex is the semantic search surface over the role catalog.
type RoleIndex interface {
	Query(ctx context.Context, vector []float32, industryID *uuid.UUID, topK int) ([]matching.Match, error)
	Upsert(ctx context.Context, roleID uuid.UUID, vector []float32, industryID *uuid.UUID) error
}

// RoleIndexer accepts roles for best-effort asynchronous indexing.
type RoleIndexer interface {
	EnqueueRole(role repository.Role)
}

type MatchInput struct {
	JobTitle       string
	JobDescription string
	IndustryID     *uuid.UUID
	Limit          int
}

type RoleItem struct {
	ID          uuid.UUID
	Title       string
	Description string
	IndustryID  *uuid.UUID
	Custom      bool
}

type RoleMatchItem struct {
	Role  RoleItem
	Score float64
}

// MatchResult distinguishes "no qualifying candidates, create a custom role"
// from a service failure, which surfaces as an error instead.
type MatchResult struct {
	Matches       []RoleMatchItem
	SuggestCustom bool
}

type RoleMatchingUsecase interface {
	MatchRoles(ctx context.Context, in MatchInput) (MatchResult, error)
	CreateCustomRole(ctx context.Context, userID uuid.UUID, title, description string, industryID uuid.UUID) (RoleItem, error)
}

type RoleMatching struct {
	roles      repository.RoleRepository
	industries repository.IndustryRepository
	embedder   Embedder
	index      RoleIndex
	indexer    RoleIndexer
	cache      Cache
	log        *logger.Logger
}

func NewRoleMatchingUsecase(
	roles repository.RoleRepository,
	industries repository.IndustryRepository,
	embedder Embedder,
	index RoleIndex,
	indexer RoleIndexer,
	cache Cache,
	log *logger.Logger,
) *RoleMatching {
	if log == nil {
		log = logger.Nop()
	}
	return &RoleMatching{
		roles:      roles,
		industries: industries,
		embedder:   embedder,
		index:      index,
		indexer:    indexer,
		cache:      cache,
		log:        log.With("usecase", "role_matching"),
	}
}

func (u *RoleMatching) MatchRoles(ctx context.Context, in MatchInput) (MatchResult, error) {
	text := matchText(in.JobTitle, in.JobDescription)
	if text == "" {
		return MatchResult{}, ErrEmptyMatchQuery
	}
	if u.embedder == nil {
		return MatchResult{}, fmt.Errorf("%w: not configured", ErrEmbeddingService)
	}
	if u.index == nil {
		return MatchResult{}, fmt.Errorf("%w: not configured", ErrIndexUnavailable)
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	if limit > maxMatchLimit {
		limit = maxMatchLimit
	}

	cacheKey := MatchCacheKey(in.JobTitle, in.JobDescription, in.IndustryID, limit)
	if u.cache != nil {
		var cached MatchResult
		if hit, err := u.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	vector, err := u.embedWithRetry(ctx, text)
	if err != nil {
		return MatchResult{}, err
	}

	raw, err := u.queryWithRetry(ctx, vector, in.IndustryID, limit*matchOverfetchFactor)
	if err != nil {
		return MatchResult{}, err
	}

	ranked := matching.Rank(raw, matching.MinRelevanceScore, 0)

	ids := make([]uuid.UUID, 0, len(ranked))
	for _, m := range ranked {
		ids = append(ids, m.RoleID)
	}
	known, err := u.roles.FindByIDs(ctx, ids)
	if err != nil {
		return MatchResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	result := MatchResult{Matches: make([]RoleMatchItem, 0, limit)}
	for _, m := range ranked {
		role, ok := known[m.RoleID]
		if !ok {
			// The index is eventually consistent with the catalog; a
			// vector can outlive its role.
			continue
		}
		result.Matches = append(result.Matches, RoleMatchItem{Role: roleItemFrom(role), Score: m.Score})
		if len(result.Matches) == limit {
			break
		}
	}
	result.SuggestCustom = len(result.Matches) == 0

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, cacheKey, result, matchCacheTTL); err != nil {
			u.log.Warn("match cache write failed", "error", err)
		}
	}
	return result, nil
}

func (u *RoleMatching) CreateCustomRole(ctx context.Context, userID uuid.UUID, title, description string, industryID uuid.UUID) (RoleItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return RoleItem{}, ErrEmptyRoleTitle
	}
	if userID == uuid.Nil {
		return RoleItem{}, fmt.Errorf("%w: empty user id", ErrValidation)
	}

	var industryRef *uuid.UUID
	if industryID != uuid.Nil {
		industry, err := u.industries.FindByID(ctx, industryID)
		if err != nil {
			if errors.Is(err, repository.ErrIndustryNotFound) {
				return RoleItem{}, ErrUnknownIndustry
			}
			return RoleItem{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		industryRef = &industry.ID
	}

	role, err := u.roles.Create(ctx, repository.Role{
		Title:       title,
		Description: strings.TrimSpace(description),
		IndustryID:  industryRef,
		CreatedBy:   &userID,
	})
	if err != nil {
		return RoleItem{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// Indexing is best-effort and must never block or fail creation; the
	// role is selectable by id immediately either way.
	if u.indexer != nil {
		u.indexer.EnqueueRole(role)
	}

	if u.cache != nil {
		if err := u.cache.DeleteByPattern(ctx, MatchCachePattern); err != nil {
			u.log.Warn("match cache invalidation failed", "error", err)
		}
	}

	return roleItemFrom(role), nil
}

func (u *RoleMatching) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < externalMaxAttempts; attempt++ {
		vector, err := u.embedder.Embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingService, ctx.Err())
		case <-time.After(externalBackoffBase << attempt):
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrEmbeddingService, lastErr)
}

func (u *RoleMatching) queryWithRetry(ctx context.Context, vector []float32, industryID *uuid.UUID, topK int) ([]matching.Match, error) {
	var lastErr error
	for attempt := 0; attempt < externalMaxAttempts; attempt++ {
		raw, err := u.index.Query(ctx, vector, industryID, topK)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, ctx.Err())
		case <-time.After(externalBackoffBase << attempt):
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, lastErr)
}

func matchText(title, description string) string {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	switch {
	case title == "":
		return description
	case description == "":
		return title
	default:
		return title + "\n" + description
	}
}

func roleItemFrom(role repository.Role) RoleItem {
	return RoleItem{
		ID:          role.ID,
		Title:       role.Title,
		Description: role.Description,
		IndustryID:  role.IndustryID,
		Custom:      role.CreatedBy != nil,
	}
}
