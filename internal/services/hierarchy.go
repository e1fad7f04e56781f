package services

import (
	"fmt"
	"math"

	apperrors "echoplan/internal/errors"
	"echoplan/internal/models"
	"echoplan/internal/validator"
)

// GroupRollup is the per-group summary shown by scalar widgets.
type GroupRollup struct {
	GroupID       string  `json:"group_id"`
	Name          string  `json:"name"`
	TargetPercent float64 `json:"target_percent"`
	BudgetedMinor int64   `json:"budgeted_minor"`
	// ShareOfIncome is BudgetedMinor as a percentage of plan income, 0 without income.
	ShareOfIncome float64 `json:"share_of_income"`
}

// AllItems flattens the plan hierarchy in display order.
func AllItems(plan *models.Plan) []models.Item {
	var items []models.Item
	for _, g := range plan.Groups {
		for _, c := range g.Categories {
			items = append(items, c.Items...)
		}
	}
	return items
}

// GroupTotalBudgeted sums the baseline of every spending item in the group.
func GroupTotalBudgeted(group *models.CategoryGroup) int64 {
	var total int64
	for _, c := range group.Categories {
		total += CategoryTotalBudgeted(&c)
	}
	return total
}

// CategoryTotalBudgeted sums the baseline of every spending item in the category.
func CategoryTotalBudgeted(category *models.Category) int64 {
	var total int64
	for _, it := range category.Items {
		if it.Type.IsSpending() {
			total += it.BudgetedMinor
		}
	}
	return total
}

// TotalBudgeted sums GroupTotalBudgeted across the plan.
func TotalBudgeted(plan *models.Plan) int64 {
	var total int64
	for i := range plan.Groups {
		total += GroupTotalBudgeted(&plan.Groups[i])
	}
	return total
}

// TotalIncome sums the baseline of income items.
func TotalIncome(plan *models.Plan) int64 {
	var total int64
	for _, it := range AllItems(plan) {
		if !it.Type.IsSpending() {
			total += it.BudgetedMinor
		}
	}
	return total
}

// ApplyTotals recomputes the plan's income, expense and surplus figures.
func ApplyTotals(plan *models.Plan) {
	plan.TotalIncomeMinor = TotalIncome(plan)
	plan.TotalExpensesMinor = TotalBudgeted(plan)
	plan.SurplusMinor = plan.TotalIncomeMinor - plan.TotalExpensesMinor
}

// TargetPercentSum adds up the group targets. Values above 100 are allowed.
func TargetPercentSum(plan *models.Plan) float64 {
	var sum float64
	for _, g := range plan.Groups {
		sum += g.TargetPercent
	}
	return sum
}

// GroupRollups returns one summary per group in display order.
func GroupRollups(plan *models.Plan) []GroupRollup {
	income := TotalIncome(plan)
	rollups := make([]GroupRollup, 0, len(plan.Groups))
	for i := range plan.Groups {
		g := &plan.Groups[i]
		budgeted := GroupTotalBudgeted(g)
		rollups = append(rollups, GroupRollup{
			GroupID:       g.ID,
			Name:          g.Name,
			TargetPercent: g.TargetPercent,
			BudgetedMinor: budgeted,
			ShareOfIncome: percentOf(budgeted, income),
		})
	}
	return rollups
}

// ValidatePlan checks the structural invariants of a plan snapshot: field
// constraints, unique item identifiers and finite, non-negative targets.
func ValidatePlan(plan *models.Plan) error {
	if plan == nil {
		return apperrors.Validationf("plan is required")
	}
	for _, g := range plan.Groups {
		if math.IsNaN(g.TargetPercent) || math.IsInf(g.TargetPercent, 0) {
			return apperrors.Validationf(fmt.Sprintf("group %q target percent must be a finite number", g.Name))
		}
		if g.TargetPercent < 0 {
			return apperrors.Validationf(fmt.Sprintf("group %q target percent must not be negative", g.Name))
		}
	}
	if err := validator.Struct(plan); err != nil {
		return err
	}

	seen := make(map[string]struct{})
	for _, it := range AllItems(plan) {
		if it.ID == "" {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			return apperrors.WithMessage(apperrors.ErrDuplicateItemID,
				fmt.Sprintf("item id %q appears more than once in plan %q", it.ID, plan.Name))
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}

// percentOf returns part/whole*100, or 0 when whole is not positive.
func percentOf(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}
