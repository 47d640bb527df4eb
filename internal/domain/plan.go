/**
 * @description
 * Static plan catalog: plan identifiers mapped to monthly pricing, plus the
 * duration discount schedule used to compute enrollment amounts.
 */
package domain

import "errors"

var (
	ErrUnknownPlan         = errors.New("unknown plan")
	ErrUnsupportedDuration = errors.New("unsupported plan duration")
)

// Plan describes one purchasable health plan.
type Plan struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MonthlyAmount int64  `json:"monthly_amount"` // minor units
	Currency      string `json:"currency"`
}

var planCatalog = map[string]Plan{
	"basic":   {ID: "basic", Name: "Basic Care", MonthlyAmount: 350000, Currency: "NGN"},
	"family":  {ID: "family", Name: "Family Care", MonthlyAmount: 900000, Currency: "NGN"},
	"premium": {ID: "premium", Name: "Premium Care", MonthlyAmount: 1500000, Currency: "NGN"},
}

// Discount percentage applied per supported duration, in whole percent.
var durationDiscounts = map[int]int64{
	1:  0,
	3:  5,
	6:  10,
	12: 15,
}

// PlanByID looks up a plan in the catalog.
func PlanByID(id string) (Plan, bool) {
	plan, ok := planCatalog[id]
	return plan, ok
}

// Plans returns the full catalog for display.
func Plans() []Plan {
	out := make([]Plan, 0, len(planCatalog))
	for _, p := range planCatalog {
		out = append(out, p)
	}
	return out
}

// PriceFor computes the total enrollment amount for a plan over the given
// duration, applying the duration discount.
func PriceFor(planID string, months int) (int64, error) {
	plan, ok := planCatalog[planID]
	if !ok {
		return 0, ErrUnknownPlan
	}

	discount, ok := durationDiscounts[months]
	if !ok {
		return 0, ErrUnsupportedDuration
	}

	gross := plan.MonthlyAmount * int64(months)
	return gross * (100 - discount) / 100, nil
}
