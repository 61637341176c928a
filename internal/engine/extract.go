// Package engine implements the signup conversation state machine and its
// rule-based extraction and classification layers.
package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldKind identifies the pattern an extractor should look for in free text.
type FieldKind string

// Field kind constants for extraction.
const (
	FieldNRIC        FieldKind = "nric"
	FieldPostalCode  FieldKind = "postalCode"
	FieldMobile      FieldKind = "mobile"
	FieldEmail       FieldKind = "email"
	FieldDateOfBirth FieldKind = "dateOfBirth"
	FieldUnitNumber  FieldKind = "unitNumber"
	// FieldFreeText returns the trimmed whole message if non-empty.
	FieldFreeText FieldKind = "freeText"
)

var (
	nricExtractRegex   = regexp.MustCompile(`(?i)[STFG]\d{7}[A-Z]`)
	postalExtractRegex = regexp.MustCompile(`\d{6}`)
	mobileExtractRegex = regexp.MustCompile(`[89]\d{7}`)
	emailExtractRegex  = regexp.MustCompile(`[^\s@]+@[^\s@]+\.[^\s@]+`)
	dateDMYRegex       = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{4}`)
	dateYMDRegex       = regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2}`)
	unitExtractRegex   = regexp.MustCompile(`\d{2}-\d{3,4}`)
)

// Extract scans free text for the first substring matching the requested field
// kind and returns it, normalized where the kind calls for it. It never
// performs domain validation: a pattern-shaped but impossible date still
// extracts, and rejecting it is the validator's job.
func Extract(kind FieldKind, text string) (string, bool) {
	trimmed := strings.TrimSpace(text)

	switch kind {
	case FieldNRIC:
		if m := nricExtractRegex.FindString(trimmed); m != "" {
			return strings.ToUpper(m), true
		}
	case FieldPostalCode:
		if m := postalExtractRegex.FindString(trimmed); m != "" {
			return m, true
		}
	case FieldMobile:
		if m := mobileExtractRegex.FindString(trimmed); m != "" {
			return m, true
		}
	case FieldEmail:
		if m := emailExtractRegex.FindString(trimmed); m != "" {
			return m, true
		}
	case FieldDateOfBirth:
		return extractDate(trimmed)
	case FieldUnitNumber:
		if m := unitExtractRegex.FindString(trimmed); m != "" {
			return m, true
		}
	default:
		if trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

// extractDate accepts either DD-MM-YYYY or YYYY-MM-DD order with "-" or "/"
// separators and normalizes to zero-padded DD-MM-YYYY. The year-first form is
// checked first so its four-digit year is not misread as a day.
func extractDate(text string) (string, bool) {
	if m := dateYMDRegex.FindString(text); m != "" {
		parts := splitDate(m)
		return fmt.Sprintf("%s-%s-%s", pad2(parts[2]), pad2(parts[1]), parts[0]), true
	}
	if m := dateDMYRegex.FindString(text); m != "" {
		parts := splitDate(m)
		return fmt.Sprintf("%s-%s-%s", pad2(parts[0]), pad2(parts[1]), parts[2]), true
	}
	return "", false
}

func splitDate(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' })
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
