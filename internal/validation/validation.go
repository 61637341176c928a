// Package validation provides pure per-field checks for signup data.
//
// Each validator inspects a single candidate value against that field's format
// and domain rules and returns nil on success or a ValidationError phrased for
// direct display to the user. Validators never mutate state and never extract.
package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/tuaspower/signupflow/internal/models"
)

// Date layout constants.
const (
	// DateLayout is the storage layout for dates collected in conversation (DD-MM-YYYY).
	DateLayout = "02-01-2006"
	// DisplayDateLayout is the human-readable layout used in generated messages.
	DisplayDateLayout = "02 Jan 2006"
)

var (
	nricRegex       = regexp.MustCompile(`^[STFG]\d{7}[A-Z]$`)
	postalCodeRegex = regexp.MustCompile(`^\d{6}$`)
	mobileRegex     = regexp.MustCompile(`^[89]\d{7}$`)
	emailRegex      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	dobRegex        = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	unitRegex       = regexp.MustCompile(`^\d{2}-\d{3,4}$`)
	nameRegex       = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// NRIC validates a Singapore identity number (one of S/T/F/G, 7 digits, checksum letter).
func NRIC(nric string) *models.ValidationError {
	if nric == "" {
		return &models.ValidationError{Field: "nric", Message: "NRIC is required"}
	}
	if !nricRegex.MatchString(strings.ToUpper(nric)) {
		return &models.ValidationError{Field: "nric", Message: "Please provide a valid NRIC format (e.g., S1234567A)"}
	}
	return nil
}

// PostalCode validates a 6-digit Singapore postal code.
func PostalCode(postalCode string) *models.ValidationError {
	if postalCode == "" {
		return &models.ValidationError{Field: "postalCode", Message: "Postal code is required"}
	}
	if !postalCodeRegex.MatchString(postalCode) {
		return &models.ValidationError{Field: "postalCode", Message: "Please provide a valid 6-digit Singapore postal code"}
	}
	return nil
}

// Mobile validates an 8-digit mobile number starting with 8 or 9.
func Mobile(mobile string) *models.ValidationError {
	if mobile == "" {
		return &models.ValidationError{Field: "mobile", Message: "Mobile number is required"}
	}
	if !mobileRegex.MatchString(mobile) {
		return &models.ValidationError{Field: "mobile", Message: "Please provide a valid 8-digit mobile number starting with 8 or 9"}
	}
	return nil
}

// Email validates a conservative local@domain.tld shape.
func Email(email string) *models.ValidationError {
	if email == "" {
		return &models.ValidationError{Field: "email", Message: "Email address is required"}
	}
	if !emailRegex.MatchString(email) {
		return &models.ValidationError{Field: "email", Message: "Please provide a valid email address"}
	}
	return nil
}

// DateOfBirth validates a DD-MM-YYYY date string: real calendar date (no
// silently overflowing months or days), not in the future, and not more than
// 100 years in the past.
func DateOfBirth(dateOfBirth string) *models.ValidationError {
	if dateOfBirth == "" {
		return &models.ValidationError{Field: "dateOfBirth", Message: "Date of birth is required"}
	}
	if !dobRegex.MatchString(dateOfBirth) {
		return &models.ValidationError{Field: "dateOfBirth", Message: "Please provide date in DD-MM-YYYY format"}
	}

	date, err := time.Parse(DateLayout, dateOfBirth)
	if err != nil {
		// time.Parse rejects overflowing components such as 31-02-1990.
		return &models.ValidationError{Field: "dateOfBirth", Message: "Please provide a valid date"}
	}

	now := time.Now()
	if date.After(now) {
		return &models.ValidationError{Field: "dateOfBirth", Message: "Date of birth cannot be in the future"}
	}
	if date.Before(now.AddDate(-100, 0, 0)) {
		return &models.ValidationError{Field: "dateOfBirth", Message: "Please provide a valid date of birth"}
	}
	return nil
}

// FullName validates a full name: length >= 2, letters and spaces only.
// Deliberately narrow policy: no hyphens, apostrophes, or accented characters.
func FullName(name string) *models.ValidationError {
	if name == "" {
		return &models.ValidationError{Field: "fullName", Message: "Full name is required"}
	}
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 || !nameRegex.MatchString(trimmed) {
		return &models.ValidationError{Field: "fullName", Message: "Please provide a valid full name (letters and spaces only)"}
	}
	return nil
}

// UnitNumber validates a unit number in XX-XXX or XX-XXXX format.
func UnitNumber(unitNumber string) *models.ValidationError {
	if unitNumber == "" {
		return &models.ValidationError{Field: "unitNumber", Message: "Unit number is required"}
	}
	if !unitRegex.MatchString(unitNumber) {
		return &models.ValidationError{Field: "unitNumber", Message: "Please provide unit number in format XX-XXX or XX-XXXX (e.g., 01-123)"}
	}
	return nil
}

// Required validates that a free-text value is non-empty after trimming.
func Required(value, fieldName string) *models.ValidationError {
	if strings.TrimSpace(value) == "" {
		return &models.ValidationError{Field: fieldName, Message: fieldName + " is required"}
	}
	return nil
}

// MaskNRIC reduces a full NRIC to its masked form: "***" plus the last four
// characters, uppercased. Values shorter than four characters pass through.
func MaskNRIC(nric string) string {
	if len(nric) < 4 {
		return nric
	}
	return "***" + strings.ToUpper(nric[len(nric)-4:])
}

// WorkingDaysFrom walks forward from the given day, counting only weekdays,
// and returns the date that many working days ahead. Weekends are skipped;
// counting is inclusive forward day-by-day.
func WorkingDaysFrom(from time.Time, workingDays int) time.Time {
	current := from
	added := 0
	for added < workingDays {
		current = current.AddDate(0, 0, 1)
		if wd := current.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return current
}

// StartDateFromContractEnd returns the calendar day after the given
// DD-MM-YYYY contract end date.
func StartDateFromContractEnd(contractEndDate string) (time.Time, error) {
	end, err := time.Parse(DateLayout, contractEndDate)
	if err != nil {
		return time.Time{}, err
	}
	return end.AddDate(0, 0, 1), nil
}

// FormatDate renders a date in the display layout used in assistant messages.
func FormatDate(date time.Time) string {
	return date.Format(DisplayDateLayout)
}
