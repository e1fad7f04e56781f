package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"echoplan/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// HouseholdPlan returns an unsaved plan with one group "Necessities" (target
// 50%), category "Groceries" and a single budget item "Supermarket" budgeted at
// 40000 minor units. IDs are fixed so tests can refer to them.
func HouseholdPlan() *models.Plan {
	return &models.Plan{
		Base:         models.Base{ID: "household-1"},
		UserID:       "user-1",
		Name:         "Household",
		CurrencyCode: "EUR",
		SourceType:   models.PlanSourceManual,
		Status:       models.PlanStatusDraft,
		Groups: []models.CategoryGroup{
			{
				Base:          models.Base{ID: "grp-necessities"},
				Name:          "Necessities",
				TargetPercent: 50,
				Categories: []models.Category{
					{
						Base: models.Base{ID: "cat-groceries"},
						Name: "Groceries",
						Items: []models.Item{
							{
								Base:          models.Base{ID: "item-supermarket"},
								Name:          "Supermarket",
								Type:          models.ItemTypeBudget,
								BudgetedMinor: 40000,
							},
						},
					},
				},
			},
		},
	}
}

// PlanBuilder assembles plans with generated IDs for tests.
type PlanBuilder struct {
	plan *models.Plan
}

// NewPlan starts a plan with a unique ID.
func NewPlan(name string) *PlanBuilder {
	n := nextID()
	return &PlanBuilder{plan: &models.Plan{
		Base:         models.Base{ID: fmt.Sprintf("plan-%d", n)},
		UserID:       "user-1",
		Name:         name,
		CurrencyCode: "EUR",
		SourceType:   models.PlanSourceManual,
		Status:       models.PlanStatusDraft,
	}}
}

// Group appends a category group with one category per name in categories.
func (b *PlanBuilder) Group(name string, targetPercent float64, categories ...string) *PlanBuilder {
	g := models.CategoryGroup{
		Base:          models.Base{ID: fmt.Sprintf("grp-%d", nextID())},
		Name:          name,
		TargetPercent: targetPercent,
	}
	for _, c := range categories {
		g.Categories = append(g.Categories, models.Category{
			Base: models.Base{ID: fmt.Sprintf("cat-%d", nextID())},
			Name: c,
		})
	}
	b.plan.Groups = append(b.plan.Groups, g)
	return b
}

// Item appends an item to the last category of the last group.
func (b *PlanBuilder) Item(id, name string, itemType models.ItemType, budgeted int64) *PlanBuilder {
	g := &b.plan.Groups[len(b.plan.Groups)-1]
	c := &g.Categories[len(g.Categories)-1]
	c.Items = append(c.Items, models.Item{
		Base:          models.Base{ID: id},
		Name:          name,
		Type:          itemType,
		BudgetedMinor: budgeted,
	})
	return b
}

// Build returns the assembled plan.
func (b *PlanBuilder) Build() *models.Plan {
	return b.plan
}

// SavePlan persists plan with its full hierarchy.
func SavePlan(t *testing.T, db *gorm.DB, plan *models.Plan) *models.Plan {
	t.Helper()

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create test plan: %v", err)
	}
	return plan
}

// CreateTestPeriod persists a period with the given items.
func CreateTestPeriod(t *testing.T, db *gorm.DB, planID string, year, month int, items ...models.PeriodItem) *models.MonthlyPeriod {
	t.Helper()

	period := &models.MonthlyPeriod{PlanID: planID, Year: year, Month: month, Items: items}
	if err := db.Create(period).Error; err != nil {
		t.Fatalf("failed to create test period: %v", err)
	}
	return period
}
