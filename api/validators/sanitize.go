package validators

import "strings"

// SanitizeString trims surrounding whitespace. Length limits are enforced
// by struct validation before this runs.
func SanitizeString(input string) string {
	return strings.TrimSpace(input)
}

// SanitizeOptional trims a pointer value, mapping blank input to nil.
func SanitizeOptional(input *string) *string {
	if input == nil {
		return nil
	}
	clean := SanitizeString(*input)
	if clean == "" {
		return nil
	}
	return &clean
}
