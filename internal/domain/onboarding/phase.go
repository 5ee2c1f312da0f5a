package onboarding

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseNotStarted       Phase = "NOT_STARTED"
	PhaseLanguageSelected Phase = "LANGUAGE_SELECTED"
	PhaseIndustrySelected Phase = "INDUSTRY_SELECTED"
	PhaseRoleSelected     Phase = "ROLE_SELECTED"
	PhasePartnersSelected Phase = "PARTNERS_SELECTED"
	PhaseCompleted        Phase = "COMPLETED"
)

const (
	StepSelectNativeLanguage = "select_native_language"
	StepSelectIndustry       = "select_industry"
	StepSelectRole           = "select_role"
	StepSelectPartners       = "select_partners"
	StepComplete             = "complete"
	StepDone                 = "done"
)

type PartnerSelection struct {
	PartnerID uuid.UUID
	Priority  int
}

// Profile is the onboarding slice of a user as read from storage. The current
// phase is never trusted from a stored enum; it is recomputed from populated
// fields so a partial write can never report a phase ahead of its data.
type Profile struct {
	UserID         uuid.UUID
	NativeLanguage *string
	IndustryID     *uuid.UUID
	RoleID         *uuid.UUID
	Partners       []PartnerSelection
	CompletedAt    *time.Time
	Version        int64
	UpdatedAt      time.Time
}

// ComputePhase derives the current phase from populated fields. A field only
// counts once every earlier field is also populated, so an inconsistent
// crash-recovery state degrades to the deepest consistent prefix.
func ComputePhase(p Profile) Phase {
	if p.CompletedAt != nil {
		return PhaseCompleted
	}
	hasLanguage := p.NativeLanguage != nil && strings.TrimSpace(*p.NativeLanguage) != ""
	hasIndustry := hasLanguage && p.IndustryID != nil && *p.IndustryID != uuid.Nil
	hasRole := hasIndustry && p.RoleID != nil && *p.RoleID != uuid.Nil
	hasPartners := hasRole && len(p.Partners) > 0

	switch {
	case hasPartners:
		return PhasePartnersSelected
	case hasRole:
		return PhaseRoleSelected
	case hasIndustry:
		return PhaseIndustrySelected
	case hasLanguage:
		return PhaseLanguageSelected
	default:
		return PhaseNotStarted
	}
}

// NextStep names the next required onboarding step for a phase.
func NextStep(phase Phase) string {
	switch phase {
	case PhaseNotStarted:
		return StepSelectNativeLanguage
	case PhaseLanguageSelected:
		return StepSelectIndustry
	case PhaseIndustrySelected:
		return StepSelectRole
	case PhaseRoleSelected:
		return StepSelectPartners
	case PhasePartnersSelected:
		return StepComplete
	default:
		return StepDone
	}
}

// AtLeast reports whether phase has reached want in the fixed progression.
func (p Phase) AtLeast(want Phase) bool {
	return phaseRank(p) >= phaseRank(want)
}

func phaseRank(p Phase) int {
	switch p {
	case PhaseLanguageSelected:
		return 1
	case PhaseIndustrySelected:
		return 2
	case PhaseRoleSelected:
		return 3
	case PhasePartnersSelected:
		return 4
	case PhaseCompleted:
		return 5
	default:
		return 0
	}
}
