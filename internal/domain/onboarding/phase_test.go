package onboarding

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func strPtr(s string) *string        { return &s }
func idPtr(id uuid.UUID) *uuid.UUID  { return &id }
func timePtr(t time.Time) *time.Time { return &t }

func TestComputePhase_Progression(t *testing.T) {
	industry := uuid.New()
	role := uuid.New()
	partner := uuid.New()

	cases := []struct {
		name    string
		profile Profile
		want    Phase
	}{
		{"empty", Profile{}, PhaseNotStarted},
		{"blank language", Profile{NativeLanguage: strPtr("  ")}, PhaseNotStarted},
		{"language only", Profile{NativeLanguage: strPtr("english")}, PhaseLanguageSelected},
		{"language and industry", Profile{NativeLanguage: strPtr("english"), IndustryID: idPtr(industry)}, PhaseIndustrySelected},
		{"through role", Profile{NativeLanguage: strPtr("english"), IndustryID: idPtr(industry), RoleID: idPtr(role)}, PhaseRoleSelected},
		{"through partners", Profile{
			NativeLanguage: strPtr("english"),
			IndustryID:     idPtr(industry),
			RoleID:         idPtr(role),
			Partners:       []PartnerSelection{{PartnerID: partner, Priority: 1}},
		}, PhasePartnersSelected},
		{"completed", Profile{CompletedAt: timePtr(time.Now())}, PhaseCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputePhase(tc.profile); got != tc.want {
				t.Fatalf("ComputePhase = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestComputePhase_InconsistentPrefixDegrades(t *testing.T) {
	// Role without industry must not count as ROLE_SELECTED.
	p := Profile{
		NativeLanguage: strPtr("english"),
		RoleID:         idPtr(uuid.New()),
	}
	if got := ComputePhase(p); got != PhaseLanguageSelected {
		t.Fatalf("ComputePhase = %s, want %s", got, PhaseLanguageSelected)
	}

	// Industry without language degrades all the way down.
	p = Profile{IndustryID: idPtr(uuid.New())}
	if got := ComputePhase(p); got != PhaseNotStarted {
		t.Fatalf("ComputePhase = %s, want %s", got, PhaseNotStarted)
	}
}

func TestNextStep(t *testing.T) {
	cases := []struct {
		phase Phase
		want  string
	}{
		{PhaseNotStarted, StepSelectNativeLanguage},
		{PhaseLanguageSelected, StepSelectIndustry},
		{PhaseIndustrySelected, StepSelectRole},
		{PhaseRoleSelected, StepSelectPartners},
		{PhasePartnersSelected, StepComplete},
		{PhaseCompleted, StepDone},
	}
	for _, tc := range cases {
		if got := NextStep(tc.phase); got != tc.want {
			t.Fatalf("NextStep(%s) = %s, want %s", tc.phase, got, tc.want)
		}
	}
}

func TestAtLeast(t *testing.T) {
	if !PhaseRoleSelected.AtLeast(PhaseIndustrySelected) {
		t.Fatal("ROLE_SELECTED should be at least INDUSTRY_SELECTED")
	}
	if PhaseLanguageSelected.AtLeast(PhaseRoleSelected) {
		t.Fatal("LANGUAGE_SELECTED should not be at least ROLE_SELECTED")
	}
	if !PhaseCompleted.AtLeast(PhaseCompleted) {
		t.Fatal("COMPLETED should be at least itself")
	}
}

func TestNormalizeLanguage(t *testing.T) {
	if got := NormalizeLanguage("  English "); got != "english" {
		t.Fatalf("NormalizeLanguage = %q", got)
	}
	if !IsSupportedLanguage("cantonese") {
		t.Fatal("cantonese should be supported")
	}
	if IsSupportedLanguage("klingon") {
		t.Fatal("klingon should not be supported")
	}
}
