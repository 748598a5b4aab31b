package profile

import "strings"

// Completion is the result of evaluating a profile against the canonical
// required-field schema.
type Completion struct {
	Percentage int
	Missing    []Field
}

// Complete reports whether the percentage meets the given submission
// threshold.
func (c Completion) Complete(threshold int) bool {
	return c.Percentage >= threshold
}

// Evaluate computes the completion percentage and the ordered list of missing
// required fields. A field is missing when absent or an empty string after
// trimming. Pure and deterministic: Missing follows RequiredFields order so
// assertions and client rendering are stable.
func Evaluate(p *StudentProfile) Completion {
	var missing []Field
	for _, f := range RequiredFields {
		if strings.TrimSpace(p.requiredValue(f)) == "" {
			missing = append(missing, f)
		}
	}

	total := len(RequiredFields)
	filled := total - len(missing)
	// Round half up.
	percentage := (100*filled + total/2) / total

	return Completion{Percentage: percentage, Missing: missing}
}

// FieldNames renders a missing-field list as strings for error details and
// JSON responses.
func FieldNames(fields []Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, string(f))
	}
	return names
}
