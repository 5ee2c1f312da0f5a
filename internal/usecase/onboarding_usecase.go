package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fluentpro/internal/domain/onboarding"
	"fluentpro/internal/repository"

	"github.com/google/uuid"
)

const (
	casMaxAttempts     = 3
	storageMaxAttempts = 3
	storageBackoffBase = 100 * time.Millisecond
)

type SessionState struct {
	CurrentPhase     onboarding.Phase
	NextRequiredStep string
	ResumeToken      string
}

type IndustryItem struct {
	ID   uuid.UUID
	Name string
}

type PartnerItem struct {
	ID       uuid.UUID
	Name     string
	Priority int
}

type OnboardingSummary struct {
	UserID         uuid.UUID
	NativeLanguage string
	Industry       IndustryItem
	Role           RoleItem
	Partners       []PartnerItem
	CompletedAt    time.Time
}

// ResumeTokenIssuer mints the opaque token returned by StartOrResume.
type ResumeTokenIssuer interface {
	GenerateResumeToken(userID uuid.UUID) (string, error)
}

// ProgressNotifier is told about successful phase writes. Implementations must
// not block.
type ProgressNotifier interface {
	OnboardingAdvanced(userID uuid.UUID, phase onboarding.Phase)
}

// CustomRoleCreator is the slice of the role matching engine the onboarding
// flow needs for the create-and-select path.
type CustomRoleCreator interface {
	CreateCustomRole(ctx context.Context, userID uuid.UUID, title, description string, industryID uuid.UUID) (RoleItem, error)
}

type OnboardingUsecase interface {
	StartOrResume(ctx context.Context, userID uuid.UUID) (SessionState, error)
	SelectNativeLanguage(ctx context.Context, userID uuid.UUID, code string) (onboarding.Profile, error)
	SelectIndustry(ctx context.Context, userID uuid.UUID, idOrName string) (onboarding.Profile, error)
	SelectRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID) (onboarding.Profile, error)
	SelectCustomRole(ctx context.Context, userID uuid.UUID, title, description string, industryID uuid.UUID) (onboarding.Profile, error)
	SelectPartners(ctx context.Context, userID uuid.UUID, orderedPartnerIDs []uuid.UUID) (onboarding.Profile, error)
	Complete(ctx context.Context, userID uuid.UUID) (OnboardingSummary, error)
}

type Onboarding struct {
	profiles   repository.ProfileRepository
	industries repository.IndustryRepository
	partners   repository.PartnerRepository
	roles      repository.RoleRepository
	creator    CustomRoleCreator
	tokens     ResumeTokenIssuer
	notifier   ProgressNotifier
}

func NewOnboardingUsecase(
	profiles repository.ProfileRepository,
	industries repository.IndustryRepository,
	partners repository.PartnerRepository,
	roles repository.RoleRepository,
	creator CustomRoleCreator,
	tokens ResumeTokenIssuer,
	notifier ProgressNotifier,
) *Onboarding {
	return &Onboarding{
		profiles:   profiles,
		industries: industries,
		partners:   partners,
		roles:      roles,
		creator:    creator,
		tokens:     tokens,
		notifier:   notifier,
	}
}

func (u *Onboarding) StartOrResume(ctx context.Context, userID uuid.UUID) (SessionState, error) {
	profile, err := u.getProfile(ctx, userID)
	if err != nil {
		return SessionState{}, err
	}

	phase := onboarding.ComputePhase(profile)
	state := SessionState{
		CurrentPhase:     phase,
		NextRequiredStep: onboarding.NextStep(phase),
	}

	if u.tokens != nil {
		tok, err := u.tokens.GenerateResumeToken(userID)
		if err != nil {
			return SessionState{}, fmt.Errorf("%w: resume token: %v", ErrStorage, err)
		}
		state.ResumeToken = tok
	}
	return state, nil
}

func (u *Onboarding) SelectNativeLanguage(ctx context.Context, userID uuid.UUID, code string) (onboarding.Profile, error) {
	code = onboarding.NormalizeLanguage(code)
	if !onboarding.IsSupportedLanguage(code) {
		return onboarding.Profile{}, ErrUnsupportedLanguage
	}

	return u.casWrite(ctx, userID, func(p onboarding.Profile) (onboarding.Profile, error) {
		return u.profiles.SetNativeLanguage(ctx, userID, code, p.Version)
	})
}

func (u *Onboarding) SelectIndustry(ctx context.Context, userID uuid.UUID, idOrName string) (onboarding.Profile, error) {
	industry, err := u.resolveIndustry(ctx, idOrName)
	if err != nil {
		return onboarding.Profile{}, err
	}

	return u.casWrite(ctx, userID, func(p onboarding.Profile) (onboarding.Profile, error) {
		if !onboarding.ComputePhase(p).AtLeast(onboarding.PhaseLanguageSelected) {
			return onboarding.Profile{}, ErrPhaseOrder
		}
		return u.profiles.SetIndustry(ctx, userID, industry.ID, p.Version)
	})
}

func (u *Onboarding) SelectRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID) (onboarding.Profile, error) {
	if roleID == uuid.Nil {
		return onboarding.Profile{}, fmt.Errorf("%w: empty role id", ErrValidation)
	}
	if _, err := u.roles.FindByID(ctx, roleID); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return onboarding.Profile{}, ErrRoleMissing
		}
		return onboarding.Profile{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return u.casWrite(ctx, userID, func(p onboarding.Profile) (onboarding.Profile, error) {
		if !onboarding.ComputePhase(p).AtLeast(onboarding.PhaseIndustrySelected) {
			return onboarding.Profile{}, ErrPhaseOrder
		}
		return u.profiles.SetRole(ctx, userID, roleID, p.Version)
	})
}

func (u *Onboarding) SelectCustomRole(ctx context.Context, userID uuid.UUID, title, description string, industryID uuid.UUID) (onboarding.Profile, error) {
	if u.creator == nil {
		return onboarding.Profile{}, fmt.Errorf("%w: role creation unavailable", ErrStorage)
	}

	// Gate before creating so an out-of-order request does not leave an
	// orphaned custom role behind.
	profile, err := u.getProfile(ctx, userID)
	if err != nil {
		return onboarding.Profile{}, err
	}
	if !onboarding.ComputePhase(profile).AtLeast(onboarding.PhaseIndustrySelected) {
		return onboarding.Profile{}, ErrPhaseOrder
	}

	role, err := u.creator.CreateCustomRole(ctx, userID, title, description, industryID)
	if err != nil {
		return onboarding.Profile{}, err
	}

	return u.casWrite(ctx, userID, func(p onboarding.Profile) (onboarding.Profile, error) {
		if !onboarding.ComputePhase(p).AtLeast(onboarding.PhaseIndustrySelected) {
			return onboarding.Profile{}, ErrPhaseOrder
		}
		return u.profiles.SetRole(ctx, userID, role.ID, p.Version)
	})
}

func (u *Onboarding) SelectPartners(ctx context.Context, userID uuid.UUID, orderedPartnerIDs []uuid.UUID) (onboarding.Profile, error) {
	if len(orderedPartnerIDs) == 0 {
		return onboarding.Profile{}, ErrEmptyPartnerList
	}
	seen := make(map[uuid.UUID]struct{}, len(orderedPartnerIDs))
	for _, id := range orderedPartnerIDs {
		if id == uuid.Nil {
			return onboarding.Profile{}, ErrUnknownPartner
		}
		if _, dup := seen[id]; dup {
			return onboarding.Profile{}, ErrDuplicatePartner
		}
		seen[id] = struct{}{}
	}

	active, err := u.partners.ActiveSet(ctx, orderedPartnerIDs)
	if err != nil {
		return onboarding.Profile{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	for _, id := range orderedPartnerIDs {
		if !active[id] {
			return onboarding.Profile{}, ErrUnknownPartner
		}
	}

	return u.casWrite(ctx, userID, func(p onboarding.Profile) (onboarding.Profile, error) {
		if !onboarding.ComputePhase(p).AtLeast(onboarding.PhaseRoleSelected) {
			return onboarding.Profile{}, ErrPhaseOrder
		}
		return u.profiles.ReplacePartners(ctx, userID, orderedPartnerIDs, p.Version)
	})
}

func (u *Onboarding) Complete(ctx context.Context, userID uuid.UUID) (OnboardingSummary, error) {
	profile, err := u.profiles.Complete(ctx, userID, func(p onboarding.Profile) error {
		if p.CompletedAt != nil {
			return ErrAlreadyCompleted
		}
		if p.NativeLanguage == nil || strings.TrimSpace(*p.NativeLanguage) == "" ||
			p.IndustryID == nil || p.RoleID == nil || len(p.Partners) == 0 {
			return ErrIncompletePrerequisites
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrBusinessRule):
			return OnboardingSummary{}, err
		case errors.Is(err, repository.ErrProfileNotFound):
			return OnboardingSummary{}, ErrProfileMissing
		default:
			return OnboardingSummary{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	summary, err := u.buildSummary(ctx, profile)
	if err != nil {
		return OnboardingSummary{}, err
	}

	if u.notifier != nil {
		u.notifier.OnboardingAdvanced(userID, onboarding.PhaseCompleted)
	}
	return summary, nil
}

// buildSummary hydrates catalog names for the snapshot read atomically inside
// the Complete transaction. Catalog rows are immutable once referenced, so
// these lookups need no extra coordination.
func (u *Onboarding) buildSummary(ctx context.Context, p onboarding.Profile) (OnboardingSummary, error) {
	out := OnboardingSummary{UserID: p.UserID}
	if p.NativeLanguage != nil {
		out.NativeLanguage = *p.NativeLanguage
	}
	if p.CompletedAt != nil {
		out.CompletedAt = *p.CompletedAt
	}

	if p.IndustryID != nil {
		industry, err := u.industries.FindByID(ctx, *p.IndustryID)
		if err != nil {
			return OnboardingSummary{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		out.Industry = IndustryItem{ID: industry.ID, Name: industry.Name}
	}

	if p.RoleID != nil {
		role, err := u.roles.FindByID(ctx, *p.RoleID)
		if err != nil {
			return OnboardingSummary{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		out.Role = roleItemFrom(role)
	}

	if len(p.Partners) > 0 {
		active, err := u.partners.ListActive(ctx)
		if err != nil {
			return OnboardingSummary{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		names := make(map[uuid.UUID]string, len(active))
		for _, partner := range active {
			names[partner.ID] = partner.Name
		}
		for _, sel := range p.Partners {
			out.Partners = append(out.Partners, PartnerItem{
				ID:       sel.PartnerID,
				Name:     names[sel.PartnerID],
				Priority: sel.Priority,
			})
		}
	}

	return out, nil
}

func (u *Onboarding) resolveIndustry(ctx context.Context, idOrName string) (repository.Industry, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return repository.Industry{}, ErrUnknownIndustry
	}

	if id, err := uuid.Parse(idOrName); err == nil {
		industry, err := u.industries.FindByID(ctx, id)
		if err == nil {
			return industry, nil
		}
		if !errors.Is(err, repository.ErrIndustryNotFound) {
			return repository.Industry{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	industry, err := u.industries.FindByName(ctx, idOrName)
	if err != nil {
		if errors.Is(err, repository.ErrIndustryNotFound) {
			return repository.Industry{}, ErrUnknownIndustry
		}
		return repository.Industry{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return industry, nil
}

func (u *Onboarding) getProfile(ctx context.Context, userID uuid.UUID) (onboarding.Profile, error) {
	profile, err := u.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return onboarding.Profile{}, ErrProfileMissing
		}
		return onboarding.Profile{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return profile, nil
}

// casWrite runs one phase write under optimistic concurrency: read the
// profile, let write validate against it and compare-and-set on its version,
// and retry on conflict. Transient storage failures retry with backoff;
// validation and business-rule failures return as-is.
func (u *Onboarding) casWrite(ctx context.Context, userID uuid.UUID, write func(p onboarding.Profile) (onboarding.Profile, error)) (onboarding.Profile, error) {
	var lastErr error
	for attempt := 0; attempt < casMaxAttempts; attempt++ {
		profile, err := u.getProfile(ctx, userID)
		if err != nil {
			return onboarding.Profile{}, err
		}

		updated, err := u.writeWithStorageRetry(ctx, profile, write)
		if err == nil {
			if u.notifier != nil {
				u.notifier.OnboardingAdvanced(userID, onboarding.ComputePhase(updated))
			}
			return updated, nil
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			lastErr = err
			continue
		}
		return onboarding.Profile{}, err
	}
	return onboarding.Profile{}, fmt.Errorf("%w: %v", ErrStorage, lastErr)
}

func (u *Onboarding) writeWithStorageRetry(ctx context.Context, profile onboarding.Profile, write func(p onboarding.Profile) (onboarding.Profile, error)) (onboarding.Profile, error) {
	var lastErr error
	for attempt := 0; attempt < storageMaxAttempts; attempt++ {
		updated, err := write(profile)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrBusinessRule) ||
			errors.Is(err, repository.ErrVersionConflict) {
			return onboarding.Profile{}, err
		}
		if errors.Is(err, repository.ErrProfileNotFound) {
			return onboarding.Profile{}, ErrProfileMissing
		}

		lastErr = err
		select {
		case <-ctx.Done():
			return onboarding.Profile{}, fmt.Errorf("%w: %v", ErrStorage, ctx.Err())
		case <-time.After(storageBackoffBase << attempt):
		}
	}
	return onboarding.Profile{}, fmt.Errorf("%w: %v", ErrStorage, lastErr)
}
