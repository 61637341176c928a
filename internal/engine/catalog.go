package engine

import "github.com/tuaspower/signupflow/internal/models"

// Plans is the current campaign's plan catalog (rates as of July 2025).
var Plans = []models.Plan{
	{Type: models.PlanTypePowerFIX, DurationMonths: 6, RateBeforeGST: 0.2500, RateWithGST: 0.2700},
	{Type: models.PlanTypePowerFIX, DurationMonths: 12, RateBeforeGST: 0.2655, RateWithGST: 0.2867},
	{Type: models.PlanTypePowerFIX, DurationMonths: 24, RateBeforeGST: 0.2420, RateWithGST: 0.2768, BillRebate: 100, IsHotPick: true},
	{Type: models.PlanTypePowerFIX, DurationMonths: 36, RateBeforeGST: 0.2542, RateWithGST: 0.2747, BillRebate: 160, IsRecommended: true},
	{Type: models.PlanTypePowerDOT, DurationMonths: 12, DiscountPercent: 3},
	{Type: models.PlanTypePowerDOT, DurationMonths: 24, DiscountPercent: 5},
}

// Retailers lists known competing retailers recognized during customer type
// identification.
var Retailers = []string{
	"Geneco",
	"Senoko Energy",
	"Pacific Light",
	"Keppel Electric",
	"Sembcorp Power",
	"Union Power",
	"Sunseap",
	"iSwitch",
	"Ohm Energy",
	"Red Dot Power",
}

// FindPlan returns the catalog plan matching the given type and duration.
func FindPlan(planType models.PlanType, durationMonths int) (models.Plan, bool) {
	for _, p := range Plans {
		if p.Type == planType && p.DurationMonths == durationMonths {
			return p, true
		}
	}
	return models.Plan{}, false
}
