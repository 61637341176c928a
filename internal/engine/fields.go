package engine

import (
	"strings"

	"github.com/tuaspower/signupflow/internal/models"
	"github.com/tuaspower/signupflow/internal/validation"
)

// fieldStep describes one entry in a multi-field stage's fixed fill order:
// which extractor kind to run, how to tell whether the field is already set,
// and how to validate-and-write a candidate. The next required field is always
// the first step whose value is unset, which makes the fill-order contract
// explicit rather than implied by conditional nesting.
type fieldStep struct {
	field string
	kind  FieldKind
	isSet func(rec *models.ApplicationRecord) bool
	apply func(rec *models.ApplicationRecord, value string) *models.ValidationError
	// missing is reported when extraction finds no candidate of the kind.
	missing string
}

// fillNextField runs the first unset step against the utterance. Extraction
// misses and validation failures both leave the record unchanged and return
// the single error to surface for this turn.
func fillNextField(rec *models.ApplicationRecord, steps []fieldStep, utterance string) *models.ValidationError {
	for _, step := range steps {
		if step.isSet(rec) {
			continue
		}
		candidate, found := Extract(step.kind, utterance)
		if !found {
			return &models.ValidationError{Field: step.field, Message: step.missing}
		}
		return step.apply(rec, candidate)
	}
	return nil
}

// allStepsSet reports whether every step's field has been filled.
func allStepsSet(rec *models.ApplicationRecord, steps []fieldStep) bool {
	for _, step := range steps {
		if !step.isSet(rec) {
			return false
		}
	}
	return true
}

// personalSteps is the fixed fill order for PERSONAL_DETAILS:
// name, identity, date of birth, mobile, email, holder flag.
var personalSteps = []fieldStep{
	{
		field: "fullName",
		kind:  FieldFreeText,
		isSet: func(r *models.ApplicationRecord) bool { return r.AccountHolder.FullName != "" },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			if verr := validation.FullName(v); verr != nil {
				return verr
			}
			r.AccountHolder.FullName = strings.TrimSpace(v)
			return nil
		},
		missing: "Full name is required",
	},
	{
		field: "nric",
		kind:  FieldNRIC,
		isSet: func(r *models.ApplicationRecord) bool { return r.AccountHolder.NRICLast4 != "" },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			if verr := validation.NRIC(v); verr != nil {
				return verr
			}
			// Only the masked form is ever stored.
			r.AccountHolder.NRICLast4 = validation.MaskNRIC(v)
			return nil
		},
		missing: "Please provide a valid NRIC format (e.g., S1234567A)",
	},
	{
		field: "dateOfBirth",
		kind:  FieldDateOfBirth,
		isSet: func(r *models.ApplicationRecord) bool { return r.AccountHolder.DateOfBirth != "" },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			if verr := validation.DateOfBirth(v); verr != nil {
				return verr
			}
			r.AccountHolder.DateOfBirth = v
			return nil
		},
		missing: "Please provide date in DD-MM-YYYY format",
	},
	{
		field: "mobile",
		kind:  FieldMobile,
		isSet: func(r *models.ApplicationRecord) bool { return r.AccountHolder.Mobile != "" },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			if verr := validation.Mobile(v); verr != nil {
				return verr
			}
			r.AccountHolder.Mobile = v
			return nil
		},
		missing: "Please provide a valid 8-digit mobile number starting with 8 or 9",
	},
	{
		field: "email",
		kind:  FieldEmail,
		isSet: func(r *models.ApplicationRecord) bool { return r.AccountHolder.Email != "" },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			if verr := validation.Email(v); verr != nil {
				return verr
			}
			r.AccountHolder.Email = v
			return nil
		},
		missing: "Please provide a valid email address",
	},
	{
		field: "isAccountHolder",
		kind:  FieldFreeText,
		isSet: func(r *models.ApplicationRecord) bool { return r.AccountHolder.IsAccountHolder != nil },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			answer, rest, ok := parseYesNo(v)
			if !ok {
				return &models.ValidationError{Field: "isAccountHolder", Message: "Please reply yes or no"}
			}
			r.AccountHolder.IsAccountHolder = &answer
			if !answer && rest != "" {
				r.AccountHolder.AltHolderName = rest
			}
			return nil
		},
		missing: "Please reply yes or no",
	},
}

// premiseSteps is the fixed fill order for PREMISE_DETAILS:
// postal code, unit, block, building name, street, premise type, mailing flag.
var premiseSteps = []fieldStep{
	{
		field: "postalCode",
		kind:  FieldPostalCode,
		isSet: func(r *models.ApplicationRecord) bool { return r.Premise.PostalCode != "" },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			if verr := validation.PostalCode(v); verr != nil {
				return verr
			}
			r.Premise.PostalCode = v
			return nil
		},
		missing: "Please provide a valid 6-digit postal code",
	},
	{
		field: "unitNumber",
		kind:  FieldUnitNumber,
		isSet: func(r *models.ApplicationRecord) bool { return r.Premise.UnitNumber != "" },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			if verr := validation.UnitNumber(v); verr != nil {
				return verr
			}
			r.Premise.UnitNumber = v
			return nil
		},
		missing: "Please provide unit number in format XX-XXX (e.g., 01-123)",
	},
	{
		field: "blockNumber",
		kind:  FieldFreeText,
		isSet: func(r *models.ApplicationRecord) bool { return r.Premise.BlockNumber != "" },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			if verr := validation.Required(v, "Block number"); verr != nil {
				return verr
			}
			r.Premise.BlockNumber = strings.TrimSpace(v)
			return nil
		},
		missing: "Block number is required",
	},
	{
		field: "buildingName",
		kind:  FieldFreeText,
		isSet: func(r *models.ApplicationRecord) bool { return r.Premise.BuildingName != nil },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			// "none" stores the explicit empty sentinel, distinct from unanswered.
			name := strings.TrimSpace(v)
			if strings.EqualFold(name, "none") {
				name = ""
			}
			r.Premise.BuildingName = &name
			return nil
		},
		missing: "Building name is required (reply \"none\" if there is none)",
	},
	{
		field: "streetName",
		kind:  FieldFreeText,
		isSet: func(r *models.ApplicationRecord) bool { return r.Premise.StreetName != "" },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			if verr := validation.Required(v, "Street name"); verr != nil {
				return verr
			}
			r.Premise.StreetName = strings.TrimSpace(v)
			return nil
		},
		missing: "Street name is required",
	},
	{
		field: "premiseType",
		kind:  FieldFreeText,
		isSet: func(r *models.ApplicationRecord) bool { return r.Premise.PremiseType != "" },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			lower := strings.ToLower(v)
			switch {
			case strings.Contains(lower, "owner"):
				r.Premise.PremiseType = models.PremiseOwner
			case strings.Contains(lower, "tenant"):
				r.Premise.PremiseType = models.PremiseTenant
			default:
				return &models.ValidationError{Field: "premiseType", Message: "Please reply Owner or Tenant"}
			}
			return nil
		},
		missing: "Please reply Owner or Tenant",
	},
	{
		field: "mailingAddressSame",
		kind:  FieldFreeText,
		isSet: func(r *models.ApplicationRecord) bool { return r.Premise.MailingAddressSame != nil },
		apply: func(r *models.ApplicationRecord, v string) *models.ValidationError {
			answer, rest, ok := parseYesNo(v)
			if !ok {
				return &models.ValidationError{Field: "mailingAddressSame", Message: "Please reply yes or no"}
			}
			r.Premise.MailingAddressSame = &answer
			if !answer && rest != "" {
				r.Premise.MailingAddress = rest
			}
			return nil
		},
		missing: "Please reply yes or no",
	},
}

// parseYesNo classifies a yes/no answer and returns any trailing free text
// after the leading yes/no token (used for "no, <alternate detail>" answers).
func parseYesNo(message string) (answer bool, rest string, ok bool) {
	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "yes"):
		return true, strings.TrimLeft(trimmed[3:], " ,.-:"), true
	case strings.HasPrefix(lower, "no"):
		return false, strings.TrimLeft(trimmed[2:], " ,.-:"), true
	case strings.Contains(lower, "yes"):
		return true, "", true
	case strings.Contains(lower, "no"):
		return false, "", true
	}
	return false, "", false
}
