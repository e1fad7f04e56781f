package models

import "echoplan/internal/calendar"

// MonthlyPeriod is one calendar month's materialization of a plan's items.
// At most one period exists per (plan, year, month).
type MonthlyPeriod struct {
	Base
	PlanID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_period_key" json:"plan_id"`
	Year   int    `gorm:"not null;uniqueIndex:idx_period_key" json:"year"`
	Month  int    `gorm:"not null;uniqueIndex:idx_period_key" json:"month"`

	// WasCreated is true only on the call that created the period.
	WasCreated bool `gorm:"-" json:"was_created"`

	// Relationships
	Items []PeriodItem `gorm:"foreignKey:PeriodID;constraint:OnDelete:CASCADE" json:"items"`
}

// PeriodItem is one item's budgeted and actual state within one period.
// ItemID is a weak reference: the name and type are snapshotted so history
// survives the item being removed from the plan.
type PeriodItem struct {
	Base
	PeriodID      string   `gorm:"type:varchar(36);index;not null" json:"period_id"`
	ItemID        string   `gorm:"type:varchar(36);index;not null" json:"item_id"`
	ItemName      string   `gorm:"not null" json:"item_name"`
	ItemType      ItemType `gorm:"not null" json:"item_type"`
	BudgetedMinor int64    `gorm:"not null;default:0" json:"budgeted_minor"`
	ActualMinor   int64    `gorm:"not null;default:0" json:"actual_minor"`
	Formula       *string  `json:"formula,omitempty"`
	SortOrder     int      `gorm:"not null;default:0" json:"sort_order"`
}

// PeriodKey identifies a period independently of its generated ID.
type PeriodKey struct {
	PlanID string
	calendar.YearMonth
}

// Key returns the (plan, year, month) key of p.
func (p *MonthlyPeriod) Key() PeriodKey {
	return PeriodKey{PlanID: p.PlanID, YearMonth: calendar.YearMonth{Year: p.Year, Month: p.Month}}
}

// YearMonth returns the month p covers.
func (p *MonthlyPeriod) YearMonth() calendar.YearMonth {
	return calendar.YearMonth{Year: p.Year, Month: p.Month}
}

// BudgetValue returns the budgeted amount as a Stored or Formula value.
func (pi *PeriodItem) BudgetValue() Value {
	return NewValue(pi.BudgetedMinor, pi.Formula)
}

// Editable reports whether the budgeted amount may be changed by the user.
func (pi *PeriodItem) Editable() bool {
	return pi.BudgetValue().Editable()
}

// Clone returns a deep copy of p.
func (p *MonthlyPeriod) Clone() *MonthlyPeriod {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Items = make([]PeriodItem, len(p.Items))
	for i, item := range p.Items {
		cp.Items[i] = item
		if item.Formula != nil {
			f := *item.Formula
			cp.Items[i].Formula = &f
		}
	}
	return &cp
}

// ItemByItemID returns the period item for the given plan item.
func (p *MonthlyPeriod) ItemByItemID(itemID string) (*PeriodItem, bool) {
	for i := range p.Items {
		if p.Items[i].ItemID == itemID {
			return &p.Items[i], true
		}
	}
	return nil, false
}

// ItemByID returns the period item with the given period item ID.
func (p *MonthlyPeriod) ItemByID(periodItemID string) (*PeriodItem, bool) {
	for i := range p.Items {
		if p.Items[i].ID == periodItemID {
			return &p.Items[i], true
		}
	}
	return nil, false
}

// WithBudgetsFrom returns a copy of p whose budgeted amounts are taken from
// source. Actual amounts are left as they are in p. Source items with no
// counterpart in p (removed from the plan since) are skipped and their item
// IDs returned. p itself is not modified.
func (p *MonthlyPeriod) WithBudgetsFrom(source *MonthlyPeriod) (*MonthlyPeriod, []string) {
	out := p.Clone()
	var skipped []string
	for _, src := range source.Items {
		dst, ok := out.ItemByItemID(src.ItemID)
		if !ok {
			skipped = append(skipped, src.ItemID)
			continue
		}
		dst.BudgetedMinor = src.BudgetedMinor
	}
	return out, skipped
}
