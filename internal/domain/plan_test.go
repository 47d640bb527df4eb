package domain

import (
	"errors"
	"testing"
)

func TestPriceFor(t *testing.T) {
	testCases := []struct {
		name     string
		planID   string
		months   int
		expected int64
		err      error
	}{
		{name: "basic monthly has no discount", planID: "basic", months: 1, expected: 350000},
		{name: "basic quarterly discounts 5 percent", planID: "basic", months: 3, expected: 997500},
		{name: "family half year discounts 10 percent", planID: "family", months: 6, expected: 4860000},
		{name: "premium annual discounts 15 percent", planID: "premium", months: 12, expected: 15300000},
		{name: "unknown plan", planID: "platinum", months: 1, err: ErrUnknownPlan},
		{name: "unsupported duration", planID: "basic", months: 5, err: ErrUnsupportedDuration},
		{name: "zero duration", planID: "basic", months: 0, err: ErrUnsupportedDuration},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			amount, err := PriceFor(tc.planID, tc.months)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PriceFor returned error: %v", err)
			}
			if amount != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, amount)
			}
		})
	}
}

func TestPlanByID(t *testing.T) {
	plan, ok := PlanByID("family")
	if !ok {
		t.Fatal("expected the family plan in the catalog")
	}
	if plan.MonthlyAmount != 900000 || plan.Currency != "NGN" {
		t.Fatalf("unexpected plan: %+v", plan)
	}

	if _, ok := PlanByID("platinum"); ok {
		t.Fatal("expected no platinum plan in the catalog")
	}
}

func TestPlansReturnsFullCatalog(t *testing.T) {
	plans := Plans()
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
}
