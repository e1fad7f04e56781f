package services

import (
	"fmt"

	apperrors "echoplan/internal/errors"
	"echoplan/internal/models"
)

// ReconciledItem is one spending item's budgeted-vs-actual state.
type ReconciledItem struct {
	PeriodItemID  string          `json:"period_item_id"`
	ItemID        string          `json:"item_id"`
	Name          string          `json:"name"`
	Type          models.ItemType `json:"type"`
	BudgetedMinor int64           `json:"budgeted_minor"`
	ActualMinor   int64           `json:"actual_minor"`
	UsagePercent  float64         `json:"usage_percent"`
	Status        Status          `json:"status"`
	Editable      bool            `json:"editable"`
	Balance
}

// TabTotal aggregates items shown on one tab.
type TabTotal struct {
	BudgetedMinor int64 `json:"budgeted_minor"`
	ActualMinor   int64 `json:"actual_minor"`
	Items         int   `json:"items"`
}

// Reconciliation merges a period's budgeted amounts with its actuals.
type Reconciliation struct {
	PeriodID string `json:"period_id"`
	PlanID   string `json:"plan_id"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`

	TotalBudgeted int64   `json:"total_budgeted"`
	TotalActual   int64   `json:"total_actual"`
	UsagePercent  float64 `json:"usage_percent"`
	Status        Status  `json:"status"`
	Balance

	// Income items are reported here and never in PerItem.
	IncomeBudgeted int64 `json:"income_budgeted"`
	IncomeActual   int64 `json:"income_actual"`

	PerItem []ReconciledItem              `json:"per_item"`
	ByTab   map[models.TargetTab]TabTotal `json:"by_tab"`
}

// Reconcile classifies every spending item of period and the period as a
// whole. It performs no I/O. Negative amounts are rejected.
func Reconcile(period *models.MonthlyPeriod) (*Reconciliation, error) {
	if period == nil {
		return nil, apperrors.Validationf("period is required")
	}

	rec := &Reconciliation{
		PeriodID: period.ID,
		PlanID:   period.PlanID,
		Year:     period.Year,
		Month:    period.Month,
		PerItem:  make([]ReconciledItem, 0, len(period.Items)),
		ByTab:    make(map[models.TargetTab]TabTotal),
	}

	for i := range period.Items {
		pi := &period.Items[i]
		if pi.BudgetedMinor < 0 || pi.ActualMinor < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrNegativeAmount,
				fmt.Sprintf("item %q has a negative amount (budgeted %d, actual %d)", pi.ItemName, pi.BudgetedMinor, pi.ActualMinor))
		}
		if !pi.ItemType.Valid() {
			return nil, apperrors.Validationf(fmt.Sprintf("item %q has unknown type %q", pi.ItemName, pi.ItemType))
		}

		tab := rec.ByTab[pi.ItemType.Tab()]
		tab.BudgetedMinor += pi.BudgetedMinor
		tab.ActualMinor += pi.ActualMinor
		tab.Items++
		rec.ByTab[pi.ItemType.Tab()] = tab

		if !pi.ItemType.IsSpending() {
			rec.IncomeBudgeted += pi.BudgetedMinor
			rec.IncomeActual += pi.ActualMinor
			continue
		}

		rec.TotalBudgeted += pi.BudgetedMinor
		rec.TotalActual += pi.ActualMinor
		rec.PerItem = append(rec.PerItem, ReconciledItem{
			PeriodItemID:  pi.ID,
			ItemID:        pi.ItemID,
			Name:          pi.ItemName,
			Type:          pi.ItemType,
			BudgetedMinor: pi.BudgetedMinor,
			ActualMinor:   pi.ActualMinor,
			UsagePercent:  UsagePercent(pi.ActualMinor, pi.BudgetedMinor),
			Status:        ItemThresholds.Classify(pi.ActualMinor, pi.BudgetedMinor),
			Editable:      pi.Editable(),
			Balance:       BalanceOf(pi.BudgetedMinor, pi.ActualMinor),
		})
	}

	rec.UsagePercent = UsagePercent(rec.TotalActual, rec.TotalBudgeted)
	rec.Status = AggregateThresholds.Classify(rec.TotalActual, rec.TotalBudgeted)
	rec.Balance = BalanceOf(rec.TotalBudgeted, rec.TotalActual)
	return rec, nil
}

// GroupProgress is a category group's reconciliation for one period.
type GroupProgress struct {
	GroupID       string  `json:"group_id"`
	Name          string  `json:"name"`
	TargetPercent float64 `json:"target_percent"`
	BudgetedMinor int64   `json:"budgeted_minor"`
	ActualMinor   int64   `json:"actual_minor"`
	UsagePercent  float64 `json:"usage_percent"`
	ShareOfIncome float64 `json:"share_of_income"`
	Status        Status  `json:"status"`
	Balance
}

// UnassignedGroupName labels period items whose plan item no longer exists.
const UnassignedGroupName = "Unassigned"

// GroupProgressFor rolls a period up to the plan's groups using the
// aggregate thresholds. Items removed from the plan since the period was
// created are collected under an "Unassigned" entry at the end.
func GroupProgressFor(plan *models.Plan, period *models.MonthlyPeriod) ([]GroupProgress, error) {
	rec, err := Reconcile(period)
	if err != nil {
		return nil, err
	}

	groupOf := make(map[string]int)
	for gi, g := range plan.Groups {
		for _, c := range g.Categories {
			for _, it := range c.Items {
				groupOf[it.ID] = gi
			}
		}
	}

	progress := make([]GroupProgress, len(plan.Groups))
	for gi, g := range plan.Groups {
		progress[gi] = GroupProgress{GroupID: g.ID, Name: g.Name, TargetPercent: g.TargetPercent}
	}
	var unassigned *GroupProgress

	for _, ri := range rec.PerItem {
		var gp *GroupProgress
		if gi, ok := groupOf[ri.ItemID]; ok {
			gp = &progress[gi]
		} else {
			if unassigned == nil {
				unassigned = &GroupProgress{Name: UnassignedGroupName}
			}
			gp = unassigned
		}
		gp.BudgetedMinor += ri.BudgetedMinor
		gp.ActualMinor += ri.ActualMinor
	}
	if unassigned != nil {
		progress = append(progress, *unassigned)
	}

	for i := range progress {
		gp := &progress[i]
		gp.UsagePercent = UsagePercent(gp.ActualMinor, gp.BudgetedMinor)
		gp.ShareOfIncome = percentOf(gp.BudgetedMinor, rec.IncomeBudgeted)
		gp.Status = AggregateThresholds.Classify(gp.ActualMinor, gp.BudgetedMinor)
		gp.Balance = BalanceOf(gp.BudgetedMinor, gp.ActualMinor)
	}
	return progress, nil
}
