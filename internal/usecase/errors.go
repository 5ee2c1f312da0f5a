package usecase

import (
	"errors"
	"fmt"
)

// Error categories. Handlers map these to HTTP statuses; specific causes below
// wrap a category so errors.Is answers for both.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrBusinessRule     = errors.New("business rule violation")
	ErrStorage          = errors.New("storage unavailable")
	ErrEmbeddingService = errors.New("embedding service unavailable")
	ErrIndexUnavailable = errors.New("search index unavailable")
)

var (
	ErrUnsupportedLanguage = fmt.Errorf("%w: unsupported native language", ErrValidation)
	ErrUnknownIndustry     = fmt.Errorf("%w: unknown industry", ErrValidation)
	ErrEmptyPartnerList    = fmt.Errorf("%w: partner list is empty", ErrValidation)
	ErrUnknownPartner      = fmt.Errorf("%w: unknown or inactive partner", ErrValidation)
	ErrDuplicatePartner    = fmt.Errorf("%w: duplicate partner in list", ErrValidation)
	ErrEmptyRoleTitle      = fmt.Errorf("%w: role title is empty", ErrValidation)
	ErrEmptyMatchQuery     = fmt.Errorf("%w: job title and description are empty", ErrValidation)

	ErrProfileMissing = fmt.Errorf("%w: onboarding profile", ErrNotFound)
	ErrRoleMissing    = fmt.Errorf("%w: role", ErrNotFound)

	ErrPhaseOrder              = fmt.Errorf("%w: onboarding step out of order", ErrBusinessRule)
	ErrIncompletePrerequisites = fmt.Errorf("%w: incomplete prerequisites", ErrBusinessRule)
	ErrAlreadyCompleted        = fmt.Errorf("%w: onboarding already completed", ErrBusinessRule)
)
