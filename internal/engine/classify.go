package engine

import (
	"strconv"
	"strings"

	"github.com/tuaspower/signupflow/internal/models"
)

// CustomerTypeResult carries a recognized customer type and, when a specific
// retailer name was matched, that retailer.
type CustomerTypeResult struct {
	Type     models.CustomerType
	Retailer string
}

// DetectCustomerType classifies the customer's current provider from an
// utterance. A known retailer name wins outright; otherwise a standalone
// "1"/"sp"/"singapore power" selects the SP default supply and a standalone
// "2"/"another"/"retailer" selects the retailer path. The menu digits are
// matched as whole tokens so digits inside dates or numbers do not trigger
// them.
func DetectCustomerType(message string) (CustomerTypeResult, bool) {
	lower := strings.ToLower(message)

	for _, retailer := range Retailers {
		if strings.Contains(lower, strings.ToLower(retailer)) {
			return CustomerTypeResult{Type: models.CustomerTypeRetailer, Retailer: retailer}, true
		}
	}
	if hasToken(lower, "1") || strings.Contains(lower, "sp") || strings.Contains(lower, "singapore power") {
		return CustomerTypeResult{Type: models.CustomerTypeSP}, true
	}
	if hasToken(lower, "2") || strings.Contains(lower, "another") || strings.Contains(lower, "retailer") {
		return CustomerTypeResult{Type: models.CustomerTypeRetailer}, true
	}
	return CustomerTypeResult{}, false
}

// hasToken reports whether the token appears as a standalone word in the
// lowercased message, ignoring surrounding punctuation.
func hasToken(lower, token string) bool {
	for _, field := range strings.Fields(lower) {
		if strings.Trim(field, ".,!?:;") == token {
			return true
		}
	}
	return false
}

// DetectEdgeCase classifies a disqualifying condition from an utterance.
// Triggers are checked in fixed priority order: solar panels, PayU scheme,
// existing customer, referral code request. First match wins.
func DetectEdgeCase(message string) (models.RejectionReason, bool) {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "solar") || strings.Contains(lower, "panel") {
		return models.RejectionSolarPanels, true
	}
	if strings.Contains(lower, "payu") || strings.Contains(lower, "pay u") || strings.Contains(lower, "pay-u") {
		return models.RejectionPayUScheme, true
	}
	if strings.Contains(lower, "already") && (strings.Contains(lower, "tuas") || strings.Contains(lower, "customer")) {
		return models.RejectionExistingCustomer, true
	}
	if strings.Contains(lower, "referral") && strings.Contains(lower, "code") {
		return models.RejectionReferralCode, true
	}
	return "", false
}

// DetectPlanInterest classifies interest in a plan family from an utterance.
func DetectPlanInterest(message string) (models.PlanType, bool) {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "fix") || strings.Contains(lower, "fixed") || strings.Contains(lower, "lock") {
		return models.PlanTypePowerFIX, true
	}
	if strings.Contains(lower, "dot") || strings.Contains(lower, "discount") || strings.Contains(lower, "%") {
		return models.PlanTypePowerDOT, true
	}
	return "", false
}

// DetectPlanSelection classifies a specific plan choice. A duration number
// combined with a family keyword selects that plan; a bare number defaults to
// the fixed-rate plan of that duration. Durations are checked 24, 36, 12, 6
// so the longer numbers are not shadowed by their substrings.
func DetectPlanSelection(message string) (models.Plan, bool) {
	lower := strings.ToLower(message)

	fixKeyword := strings.Contains(lower, "fix") || strings.Contains(lower, "month")
	dotKeyword := strings.Contains(lower, "dot") || strings.Contains(lower, "discount")

	for _, duration := range []int{24, 36, 12, 6} {
		if strings.Contains(lower, strconv.Itoa(duration)) && fixKeyword {
			return FindPlan(models.PlanTypePowerFIX, duration)
		}
	}
	for _, duration := range []int{24, 12} {
		if strings.Contains(lower, strconv.Itoa(duration)) && dotKeyword {
			return FindPlan(models.PlanTypePowerDOT, duration)
		}
	}

	// Bare number with no family keyword defaults to the fixed-rate plan.
	switch strings.TrimSpace(lower) {
	case "6":
		return FindPlan(models.PlanTypePowerFIX, 6)
	case "12":
		return FindPlan(models.PlanTypePowerFIX, 12)
	case "24":
		return FindPlan(models.PlanTypePowerFIX, 24)
	case "36":
		return FindPlan(models.PlanTypePowerFIX, 36)
	}
	return models.Plan{}, false
}

// ContainsNegation reports whether an utterance contains a "no"/"not" style
// negation. The edge case gate treats this as "no disqualifying conditions".
func ContainsNegation(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "no") || strings.Contains(lower, "not")
}

// IsAffirmative reports whether an utterance reads as agreement.
func IsAffirmative(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "yes") || strings.Contains(lower, "correct") || strings.Contains(lower, "confirm")
}
