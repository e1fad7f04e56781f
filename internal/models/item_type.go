package models

import "fmt"

// ItemType is the closed set of budget line kinds. It drives which tab an
// item appears on and how it contributes to plan totals.
type ItemType string

const (
	ItemTypeBudget     ItemType = "budget"
	ItemTypeRecurring  ItemType = "recurring"
	ItemTypeGoal       ItemType = "goal"
	ItemTypeIncome     ItemType = "income"
	ItemTypeInvestment ItemType = "investment"
	ItemTypeDebt       ItemType = "debt"
)

// ItemTypes lists every item type in display order.
func ItemTypes() []ItemType {
	return []ItemType{
		ItemTypeBudget,
		ItemTypeRecurring,
		ItemTypeGoal,
		ItemTypeIncome,
		ItemTypeInvestment,
		ItemTypeDebt,
	}
}

// ParseItemType converts s into an ItemType, rejecting unknown values.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown item type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeBudget, ItemTypeRecurring, ItemTypeGoal, ItemTypeIncome, ItemTypeInvestment, ItemTypeDebt:
		return true
	}
	return false
}

// IsSpending reports whether t counts towards budget consumption.
func (t ItemType) IsSpending() bool {
	return t != ItemTypeIncome
}

// ItemBehavior is the mathematical role of an item type.
type ItemBehavior string

const (
	ItemBehaviorOutflow   ItemBehavior = "outflow"
	ItemBehaviorInflow    ItemBehavior = "inflow"
	ItemBehaviorAsset     ItemBehavior = "asset"
	ItemBehaviorLiability ItemBehavior = "liability"
)

// Behavior returns how the item type affects the surplus.
func (t ItemType) Behavior() ItemBehavior {
	switch t {
	case ItemTypeIncome:
		return ItemBehaviorInflow
	case ItemTypeGoal, ItemTypeInvestment:
		return ItemBehaviorAsset
	case ItemTypeDebt:
		return ItemBehaviorLiability
	case ItemTypeBudget, ItemTypeRecurring:
		return ItemBehaviorOutflow
	}
	return ItemBehaviorOutflow
}

// TargetTab is the view that lists items of a given type.
type TargetTab string

const (
	TargetTabBudgets     TargetTab = "budgets"
	TargetTabRecurring   TargetTab = "recurring"
	TargetTabGoals       TargetTab = "goals"
	TargetTabIncome      TargetTab = "income"
	TargetTabPortfolio   TargetTab = "portfolio"
	TargetTabLiabilities TargetTab = "liabilities"
)

// Tab returns the view an item type is placed on.
func (t ItemType) Tab() TargetTab {
	switch t {
	case ItemTypeBudget:
		return TargetTabBudgets
	case ItemTypeRecurring:
		return TargetTabRecurring
	case ItemTypeGoal:
		return TargetTabGoals
	case ItemTypeIncome:
		return TargetTabIncome
	case ItemTypeInvestment:
		return TargetTabPortfolio
	case ItemTypeDebt:
		return TargetTabLiabilities
	}
	return TargetTabBudgets
}
