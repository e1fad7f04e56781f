package services

import (
	"math"
	"testing"

	"echoplan/internal/models"
	"echoplan/internal/testutil"
)

func samplePlan() *models.Plan {
	return testutil.NewPlan("Sample").
		Group("Necessities", 50, "Housing", "Groceries").
		Item("rent", "Rent", models.ItemTypeRecurring, 90000).
		Group("Wants", 30, "Fun").
		Item("cinema", "Cinema", models.ItemTypeBudget, 4000).
		Item("salary", "Salary", models.ItemTypeIncome, 250000).
		Group("Savings", 40, "Future").
		Item("etf", "ETF", models.ItemTypeInvestment, 30000).
		Item("loan", "Loan", models.ItemTypeDebt, 15000).
		Build()
}

func TestAllItems(t *testing.T) {
	items := AllItems(samplePlan())
	want := []string{"rent", "cinema", "salary", "etf", "loan"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, items[i].ID)
		}
	}
}

func TestTotals(t *testing.T) {
	plan := samplePlan()

	t.Run("rollup_equivalence", func(t *testing.T) {
		var sum int64
		for i := range plan.Groups {
			sum += GroupTotalBudgeted(&plan.Groups[i])
		}
		if got := TotalBudgeted(plan); got != sum {
			t.Errorf("expected plan total %d to equal group sum %d", got, sum)
		}
		if sum != 139000 {
			t.Errorf("expected 139000, got %d", sum)
		}
	})

	t.Run("income_not_spending", func(t *testing.T) {
		if got := GroupTotalBudgeted(&plan.Groups[1]); got != 4000 {
			t.Errorf("expected wants total 4000, got %d", got)
		}
		if got := TotalIncome(plan); got != 250000 {
			t.Errorf("expected income 250000, got %d", got)
		}
	})

	t.Run("apply_totals", func(t *testing.T) {
		ApplyTotals(plan)
		if plan.TotalIncomeMinor != 250000 || plan.TotalExpensesMinor != 139000 || plan.SurplusMinor != 111000 {
			t.Errorf("unexpected totals %d/%d/%d", plan.TotalIncomeMinor, plan.TotalExpensesMinor, plan.SurplusMinor)
		}
	})

	t.Run("targets_over_100_tolerated", func(t *testing.T) {
		if got := TargetPercentSum(plan); got != 120 {
			t.Errorf("expected 120, got %v", got)
		}
		testutil.AssertNoError(t, ValidatePlan(plan))
	})

	t.Run("group_rollups", func(t *testing.T) {
		rollups := GroupRollups(plan)
		if len(rollups) != 3 {
			t.Fatalf("expected 3 rollups, got %d", len(rollups))
		}
		if rollups[0].BudgetedMinor != 90000 || rollups[0].ShareOfIncome != 36 {
			t.Errorf("unexpected necessities rollup %+v", rollups[0])
		}
	})

	t.Run("rollups_without_income", func(t *testing.T) {
		p := testutil.HouseholdPlan()
		if r := GroupRollups(p); r[0].ShareOfIncome != 0 {
			t.Errorf("expected 0 share without income, got %v", r[0].ShareOfIncome)
		}
	})
}

func TestValidatePlan(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		testutil.AssertNoError(t, ValidatePlan(testutil.HouseholdPlan()))
	})

	t.Run("duplicate_item_id", func(t *testing.T) {
		plan := testutil.NewPlan("Dup").
			Group("G", 10, "A", "B").
			Item("same", "One", models.ItemTypeBudget, 1).
			Group("H", 10, "C").
			Item("same", "Two", models.ItemTypeBudget, 1).
			Build()
		testutil.AssertAppError(t, ValidatePlan(plan), "DUPLICATE_ITEM_ID")
	})

	t.Run("negative_target", func(t *testing.T) {
		plan := testutil.HouseholdPlan()
		plan.Groups[0].TargetPercent = -1
		testutil.AssertAppError(t, ValidatePlan(plan), "VALIDATION_ERROR")
	})

	t.Run("nan_target", func(t *testing.T) {
		plan := testutil.HouseholdPlan()
		plan.Groups[0].TargetPercent = math.NaN()
		testutil.AssertAppError(t, ValidatePlan(plan), "VALIDATION_ERROR")
	})

	t.Run("unknown_item_type", func(t *testing.T) {
		plan := testutil.HouseholdPlan()
		plan.Groups[0].Categories[0].Items[0].Type = "savings"
		testutil.AssertAppError(t, ValidatePlan(plan), "VALIDATION_ERROR")
	})

	t.Run("negative_baseline", func(t *testing.T) {
		plan := testutil.HouseholdPlan()
		plan.Groups[0].Categories[0].Items[0].BudgetedMinor = -100
		testutil.AssertAppError(t, ValidatePlan(plan), "VALIDATION_ERROR")
	})

	t.Run("bad_currency", func(t *testing.T) {
		plan := testutil.HouseholdPlan()
		plan.CurrencyCode = "EURO"
		testutil.AssertAppError(t, ValidatePlan(plan), "VALIDATION_ERROR")
	})
}
