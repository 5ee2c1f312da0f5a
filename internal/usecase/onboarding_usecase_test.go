package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fluentpro/internal/domain/onboarding"
	"fluentpro/internal/repository"

	"github.com/google/uuid"
)

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*onboarding.Profile

	// conflictsLeft forces a version conflict on that many CAS writes to
	// exercise the retry loop.
	conflictsLeft int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uuid.UUID]*onboarding.Profile{}}
}

func (f *fakeProfileRepo) seed(userID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[userID] = &onboarding.Profile{UserID: userID, Version: 1}
}

func (f *fakeProfileRepo) Get(_ context.Context, userID uuid.UUID) (onboarding.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return onboarding.Profile{}, repository.ErrProfileNotFound
	}
	return clone(*p), nil
}

func (f *fakeProfileRepo) cas(userID uuid.UUID, expected int64, mutate func(*onboarding.Profile)) (onboarding.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return onboarding.Profile{}, repository.ErrProfileNotFound
	}
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return onboarding.Profile{}, repository.ErrVersionConflict
	}
	if p.Version != expected {
		return onboarding.Profile{}, repository.ErrVersionConflict
	}
	mutate(p)
	p.Version++
	p.UpdatedAt = time.Now()
	return clone(*p), nil
}

func (f *fakeProfileRepo) SetNativeLanguage(_ context.Context, userID uuid.UUID, code string, expected int64) (onboarding.Profile, error) {
	return f.cas(userID, expected, func(p *onboarding.Profile) { p.NativeLanguage = &code })
}

func (f *fakeProfileRepo) SetIndustry(_ context.Context, userID uuid.UUID, industryID uuid.UUID, expected int64) (onboarding.Profile, error) {
	return f.cas(userID, expected, func(p *onboarding.Profile) { p.IndustryID = &industryID })
}

func (f *fakeProfileRepo) SetRole(_ context.Context, userID uuid.UUID, roleID uuid.UUID, expected int64) (onboarding.Profile, error) {
	return f.cas(userID, expected, func(p *onboarding.Profile) { p.RoleID = &roleID })
}

func (f *fakeProfileRepo) ReplacePartners(_ context.Context, userID uuid.UUID, partnerIDs []uuid.UUID, expected int64) (onboarding.Profile, error) {
	return f.cas(userID, expected, func(p *onboarding.Profile) {
		p.Partners = p.Partners[:0]
		for i, id := range partnerIDs {
			p.Partners = append(p.Partners, onboarding.PartnerSelection{PartnerID: id, Priority: i + 1})
		}
	})
}

func (f *fakeProfileRepo) Complete(_ context.Context, userID uuid.UUID, check func(onboarding.Profile) error) (onboarding.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return onboarding.Profile{}, repository.ErrProfileNotFound
	}
	if err := check(clone(*p)); err != nil {
		return onboarding.Profile{}, err
	}
	now := time.Now().UTC()
	p.CompletedAt = &now
	p.Version++
	return clone(*p), nil
}

func clone(p onboarding.Profile) onboarding.Profile {
	out := p
	out.Partners = append([]onboarding.PartnerSelection(nil), p.Partners...)
	return out
}

type fakeIndustryRepo struct {
	items map[uuid.UUID]repository.Industry
}

func (f fakeIndustryRepo) FindByID(_ context.Context, id uuid.UUID) (repository.Industry, error) {
	it, ok := f.items[id]
	if !ok {
		return repository.Industry{}, repository.ErrIndustryNotFound
	}
	return it, nil
}

func (f fakeIndustryRepo) FindByName(_ context.Context, name string) (repository.Industry, error) {
	for _, it := range f.items {
		if it.Name == name {
			return it, nil
		}
	}
	return repository.Industry{}, repository.ErrIndustryNotFound
}

func (f fakeIndustryRepo) List(context.Context) ([]repository.Industry, error) {
	out := make([]repository.Industry, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	return out, nil
}

type fakePartnerRepo struct {
	active map[uuid.UUID]repository.Partner
}

func (f fakePartnerRepo) ListActive(context.Context) ([]repository.Partner, error) {
	out := make([]repository.Partner, 0, len(f.active))
	for _, p := range f.active {
		out = append(out, p)
	}
	return out, nil
}

func (f fakePartnerRepo) ActiveSet(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	for _, id := range ids {
		if _, ok := f.active[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]repository.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{items: map[uuid.UUID]repository.Role{}}
}

func (f *fakeRoleRepo) FindByID(_ context.Context, id uuid.UUID) (repository.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return repository.Role{}, repository.ErrRoleNotFound
	}
	return r, nil
}

func (f *fakeRoleRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]repository.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID]repository.Role{}
	for _, id := range ids {
		if r, ok := f.items[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (f *fakeRoleRepo) Create(_ context.Context, role repository.Role) (repository.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	f.items[role.ID] = role
	return role, nil
}

func (f *fakeRoleRepo) UpsertSystemRole(_ context.Context, title, description string, industryID *uuid.UUID) (repository.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role := repository.Role{ID: uuid.New(), Title: title, Description: description, IndustryID: industryID}
	f.items[role.ID] = role
	return role, nil
}

func (f *fakeRoleRepo) MarkEmbedded(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return repository.ErrRoleNotFound
	}
	r.EmbeddedAt = &at
	f.items[id] = r
	return nil
}

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) GenerateResumeToken(uuid.UUID) (string, error) { return "resume-token", nil }

type recordingNotifier struct {
	mu     sync.Mutex
	phases []onboarding.Phase
}

func (n *recordingNotifier) OnboardingAdvanced(_ uuid.UUID, phase onboarding.Phase) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.phases = append(n.phases, phase)
}

type onboardingFixture struct {
	uc       *Onboarding
	profiles *fakeProfileRepo
	roles    *fakeRoleRepo
	notifier *recordingNotifier

	userID     uuid.UUID
	industryID uuid.UUID
	roleID     uuid.UUID
	partnerIDs []uuid.UUID
}

func newOnboardingFixture(t *testing.T) *onboardingFixture {
	t.Helper()

	userID := uuid.New()
	industryID := uuid.New()
	roleID := uuid.New()
	partnerA, partnerB := uuid.New(), uuid.New()

	profiles := newFakeProfileRepo()
	profiles.seed(userID)

	roles := newFakeRoleRepo()
	roles.items[roleID] = repository.Role{ID: roleID, Title: "Relationship Manager", IndustryID: &industryID}

	industries := fakeIndustryRepo{items: map[uuid.UUID]repository.Industry{
		industryID: {ID: industryID, Name: "Banking & Finance"},
	}}
	partners := fakePartnerRepo{active: map[uuid.UUID]repository.Partner{
		partnerA: {ID: partnerA, Name: "Clients", IsActive: true},
		partnerB: {ID: partnerB, Name: "Suppliers", IsActive: true},
	}}

	notifier := &recordingNotifier{}
	matching := NewRoleMatchingUsecase(roles, industries, nil, nil, nil, nil, nil)
	uc := NewOnboardingUsecase(profiles, industries, partners, roles, matching, fakeTokenIssuer{}, notifier)

	return &onboardingFixture{
		uc:         uc,
		profiles:   profiles,
		roles:      roles,
		notifier:   notifier,
		userID:     userID,
		industryID: industryID,
		roleID:     roleID,
		partnerIDs: []uuid.UUID{partnerA, partnerB},
	}
}

func (fx *onboardingFixture) advanceTo(t *testing.T, phase onboarding.Phase) {
	t.Helper()
	ctx := context.Background()

	steps := []struct {
		phase onboarding.Phase
		run   func() error
	}{
		{onboarding.PhaseLanguageSelected, func() error {
			_, err := fx.uc.SelectNativeLanguage(ctx, fx.userID, "english")
			return err
		}},
		{onboarding.PhaseIndustrySelected, func() error {
			_, err := fx.uc.SelectIndustry(ctx, fx.userID, fx.industryID.String())
			return err
		}},
		{onboarding.PhaseRoleSelected, func() error {
			_, err := fx.uc.SelectRole(ctx, fx.userID, fx.roleID)
			return err
		}},
		{onboarding.PhasePartnersSelected, func() error {
			_, err := fx.uc.SelectPartners(ctx, fx.userID, fx.partnerIDs)
			return err
		}},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			t.Fatalf("advancing to %s: %v", s.phase, err)
		}
		if s.phase == phase {
			return
		}
	}
}

func TestStartOrResume_NewUser(t *testing.T) {
	fx := newOnboardingFixture(t)

	state, err := fx.uc.StartOrResume(context.Background(), fx.userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if state.CurrentPhase != onboarding.PhaseNotStarted {
		t.Fatalf("phase = %s", state.CurrentPhase)
	}
	if state.NextRequiredStep != onboarding.StepSelectNativeLanguage {
		t.Fatalf("next step = %s", state.NextRequiredStep)
	}
	if state.ResumeToken == "" {
		t.Fatal("expected resume token")
	}
}

func TestStartOrResume_ResumesMidFlow(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhaseIndustrySelected)

	state, err := fx.uc.StartOrResume(context.Background(), fx.userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if state.CurrentPhase != onboarding.PhaseIndustrySelected {
		t.Fatalf("phase = %s", state.CurrentPhase)
	}
	if state.NextRequiredStep != onboarding.StepSelectRole {
		t.Fatalf("next step = %s", state.NextRequiredStep)
	}
}

func TestStartOrResume_UnknownUser(t *testing.T) {
	fx := newOnboardingFixture(t)
	_, err := fx.uc.StartOrResume(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSelectNativeLanguage_Unsupported(t *testing.T) {
	fx := newOnboardingFixture(t)
	_, err := fx.uc.SelectNativeLanguage(context.Background(), fx.userID, "latin")
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("unsupported language should be a validation error")
	}
}

func TestSelectNativeLanguage_NormalizesInput(t *testing.T) {
	fx := newOnboardingFixture(t)
	profile, err := fx.uc.SelectNativeLanguage(context.Background(), fx.userID, "  English ")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if profile.NativeLanguage == nil || *profile.NativeLanguage != "english" {
		t.Fatalf("language not normalized: %v", profile.NativeLanguage)
	}
}

func TestSelectIndustry_OutOfOrder(t *testing.T) {
	fx := newOnboardingFixture(t)
	_, err := fx.uc.SelectIndustry(context.Background(), fx.userID, fx.industryID.String())
	if !errors.Is(err, ErrPhaseOrder) {
		t.Fatalf("expected ErrPhaseOrder, got %v", err)
	}
	if !errors.Is(err, ErrBusinessRule) {
		t.Fatal("phase order violation should be a business rule error")
	}
}

func TestSelectIndustry_ByName(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhaseLanguageSelected)

	profile, err := fx.uc.SelectIndustry(context.Background(), fx.userID, "Banking & Finance")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if profile.IndustryID == nil || *profile.IndustryID != fx.industryID {
		t.Fatal("industry not set")
	}
}

func TestSelectIndustry_Unknown(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhaseLanguageSelected)

	_, err := fx.uc.SelectIndustry(context.Background(), fx.userID, "Space Mining")
	if !errors.Is(err, ErrUnknownIndustry) {
		t.Fatalf("expected ErrUnknownIndustry, got %v", err)
	}
}

func TestSelectRole_UnknownRole(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhaseIndustrySelected)

	_, err := fx.uc.SelectRole(context.Background(), fx.userID, uuid.New())
	if !errors.Is(err, ErrRoleMissing) {
		t.Fatalf("expected ErrRoleMissing, got %v", err)
	}
}

func TestSelectRole_BeforeIndustry(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhaseLanguageSelected)

	_, err := fx.uc.SelectRole(context.Background(), fx.userID, fx.roleID)
	if !errors.Is(err, ErrPhaseOrder) {
		t.Fatalf("expected ErrPhaseOrder, got %v", err)
	}
}

func TestSelectCustomRole_CreatesAndSelects(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhaseIndustrySelected)

	profile, err := fx.uc.SelectCustomRole(context.Background(), fx.userID, "Trade Finance Specialist", "Handles letters of credit", fx.industryID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if profile.RoleID == nil {
		t.Fatal("role not set")
	}
	role, err := fx.roles.FindByID(context.Background(), *profile.RoleID)
	if err != nil {
		t.Fatalf("created role not found: %v", err)
	}
	if role.CreatedBy == nil || *role.CreatedBy != fx.userID {
		t.Fatal("custom role should record its creator")
	}
}

func TestSelectCustomRole_OutOfOrderLeavesNoOrphan(t *testing.T) {
	fx := newOnboardingFixture(t)

	_, err := fx.uc.SelectCustomRole(context.Background(), fx.userID, "Trade Finance Specialist", "", fx.industryID)
	if !errors.Is(err, ErrPhaseOrder) {
		t.Fatalf("expected ErrPhaseOrder, got %v", err)
	}

	fx.roles.mu.Lock()
	n := len(fx.roles.items)
	fx.roles.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected only the seeded role, got %d roles", n)
	}
}

func TestSelectPartners_Validation(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhaseRoleSelected)
	ctx := context.Background()

	if _, err := fx.uc.SelectPartners(ctx, fx.userID, nil); !errors.Is(err, ErrEmptyPartnerList) {
		t.Fatalf("empty list: expected ErrEmptyPartnerList, got %v", err)
	}

	dup := fx.partnerIDs[0]
	if _, err := fx.uc.SelectPartners(ctx, fx.userID, []uuid.UUID{dup, dup}); !errors.Is(err, ErrDuplicatePartner) {
		t.Fatalf("duplicate: expected ErrDuplicatePartner, got %v", err)
	}

	if _, err := fx.uc.SelectPartners(ctx, fx.userID, []uuid.UUID{uuid.New()}); !errors.Is(err, ErrUnknownPartner) {
		t.Fatalf("unknown: expected ErrUnknownPartner, got %v", err)
	}
}

func TestSelectPartners_ReplacesFullList(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhaseRoleSelected)
	ctx := context.Background()

	if _, err := fx.uc.SelectPartners(ctx, fx.userID, fx.partnerIDs); err != nil {
		t.Fatalf("first selection: %v", err)
	}

	// Re-selecting with a single partner replaces the whole list and
	// renumbers priorities from 1.
	profile, err := fx.uc.SelectPartners(ctx, fx.userID, fx.partnerIDs[1:2])
	if err != nil {
		t.Fatalf("second selection: %v", err)
	}
	if len(profile.Partners) != 1 {
		t.Fatalf("expected 1 partner, got %d", len(profile.Partners))
	}
	if profile.Partners[0].PartnerID != fx.partnerIDs[1] || profile.Partners[0].Priority != 1 {
		t.Fatalf("unexpected selection: %+v", profile.Partners[0])
	}
}

func TestComplete_MissingPrerequisites(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhaseRoleSelected)

	_, err := fx.uc.Complete(context.Background(), fx.userID)
	if !errors.Is(err, ErrIncompletePrerequisites) {
		t.Fatalf("expected ErrIncompletePrerequisites, got %v", err)
	}
}

func TestComplete_Succeeds(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhasePartnersSelected)

	summary, err := fx.uc.Complete(context.Background(), fx.userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if summary.NativeLanguage != "english" {
		t.Fatalf("summary language = %q", summary.NativeLanguage)
	}
	if summary.Industry.Name != "Banking & Finance" {
		t.Fatalf("summary industry = %q", summary.Industry.Name)
	}
	if summary.Role.Title != "Relationship Manager" {
		t.Fatalf("summary role = %q", summary.Role.Title)
	}
	if len(summary.Partners) != 2 {
		t.Fatalf("summary partners = %d", len(summary.Partners))
	}
	if summary.CompletedAt.IsZero() {
		t.Fatal("completed_at not set")
	}
}

func TestComplete_Idempotence(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhasePartnersSelected)
	ctx := context.Background()

	if _, err := fx.uc.Complete(ctx, fx.userID); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	_, err := fx.uc.Complete(ctx, fx.userID)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestCasWrite_RetriesOnVersionConflict(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.profiles.conflictsLeft = 2

	profile, err := fx.uc.SelectNativeLanguage(context.Background(), fx.userID, "english")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if profile.NativeLanguage == nil {
		t.Fatal("language not set after retries")
	}
}

func TestCasWrite_GivesUpAfterMaxConflicts(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.profiles.conflictsLeft = casMaxAttempts

	_, err := fx.uc.SelectNativeLanguage(context.Background(), fx.userID, "english")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage after exhausted retries, got %v", err)
	}
}

func TestConcurrentLanguageSelection_OneVersionPerWrite(t *testing.T) {
	fx := newOnboardingFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = fx.uc.SelectNativeLanguage(ctx, fx.userID, "english")
		}()
	}
	wg.Wait()

	profile, err := fx.profiles.Get(ctx, fx.userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if profile.NativeLanguage == nil || *profile.NativeLanguage != "english" {
		t.Fatal("language not set")
	}
	if onboarding.ComputePhase(profile) != onboarding.PhaseLanguageSelected {
		t.Fatalf("phase = %s", onboarding.ComputePhase(profile))
	}
}

func TestProgressNotifications(t *testing.T) {
	fx := newOnboardingFixture(t)
	fx.advanceTo(t, onboarding.PhasePartnersSelected)
	if _, err := fx.uc.Complete(context.Background(), fx.userID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	fx.notifier.mu.Lock()
	defer fx.notifier.mu.Unlock()
	want := []onboarding.Phase{
		onboarding.PhaseLanguageSelected,
		onboarding.PhaseIndustrySelected,
		onboarding.PhaseRoleSelected,
		onboarding.PhasePartnersSelected,
		onboarding.PhaseCompleted,
	}
	if len(fx.notifier.phases) != len(want) {
		t.Fatalf("notified %d times, want %d", len(fx.notifier.phases), len(want))
	}
	for i := range want {
		if fx.notifier.phases[i] != want[i] {
			t.Fatalf("notification %d = %s, want %s", i, fx.notifier.phases[i], want[i])
		}
	}
}
