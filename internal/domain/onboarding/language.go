package onboarding

import "strings"

var supportedNativeLanguages = map[string]struct{}{
	"english":   {},
	"cantonese": {},
	"mandarin":  {},
	"spanish":   {},
	"french":    {},
	"japanese":  {},
	"korean":    {},
}

// NormalizeLanguage lowercases and trims a language code.
func NormalizeLanguage(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// IsSupportedLanguage reports whether code belongs to the closed enum of
// native languages the onboarding flow accepts.
func IsSupportedLanguage(code string) bool {
	_, ok := supportedNativeLanguages[NormalizeLanguage(code)]
	return ok
}

// SupportedLanguages returns the accepted codes, order unspecified.
func SupportedLanguages() []string {
	out := make([]string, 0, len(supportedNativeLanguages))
	for code := range supportedNativeLanguages {
		out = append(out, code)
	}
	return out
}
