package models

// PlanSourceType represents where a plan came from
type PlanSourceType string

const (
	PlanSourceManual      PlanSourceType = "manual"
	PlanSourceSpreadsheet PlanSourceType = "imported-spreadsheet"
	PlanSourceTemplate    PlanSourceType = "template"
)

// PlanStatus represents the lifecycle state of a plan
type PlanStatus string

const (
	PlanStatusDraft    PlanStatus = "draft"
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
)

// Plan is the root aggregate of a user's budget.
type Plan struct {
	Base
	UserID             string         `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Name               string         `gorm:"not null" json:"name" validate:"required,max=120"`
	Description        *string        `json:"description,omitempty"`
	CurrencyCode       string         `gorm:"type:varchar(3);not null" json:"currency_code" validate:"required,iso4217"`
	SourceType         PlanSourceType `gorm:"not null;default:manual" json:"source_type" validate:"required,plan_source"`
	Status             PlanStatus     `gorm:"not null;default:draft;index" json:"status" validate:"required,plan_status"`
	TotalIncomeMinor   int64          `gorm:"not null;default:0" json:"total_income_minor"`
	TotalExpensesMinor int64          `gorm:"not null;default:0" json:"total_expenses_minor"`
	SurplusMinor       int64          `gorm:"not null;default:0" json:"surplus_minor"`

	// Relationships
	Groups []CategoryGroup `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"groups" validate:"dive"`
}

// CategoryGroup is a budget bucket such as "Necessities".
type CategoryGroup struct {
	Base
	PlanID string  `gorm:"type:varchar(36);index;not null" json:"plan_id"`
	Name   string  `gorm:"not null" json:"name" validate:"required,max=120"`
	Color  *string `json:"color,omitempty" validate:"omitempty,hex_color"`
	// TargetPercent is advisory; totals above 100 across groups are tolerated.
	TargetPercent float64 `gorm:"not null;default:0" json:"target_percent" validate:"gte=0"`
	SortOrder     int     `gorm:"not null;default:0" json:"sort_order"`

	// Relationships
	Categories []Category `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"categories" validate:"dive"`
}

// Category groups items within a category group, e.g. "Groceries".
type Category struct {
	Base
	GroupID   string  `gorm:"type:varchar(36);index;not null" json:"group_id"`
	Name      string  `gorm:"not null" json:"name" validate:"required,max=120"`
	Icon      *string `json:"icon,omitempty"`
	SortOrder int     `gorm:"not null;default:0" json:"sort_order"`

	// Relationships
	Items []Item `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"items" validate:"dive"`
}

// Item is a leaf budget line.
type Item struct {
	Base
	CategoryID    string   `gorm:"type:varchar(36);index;not null" json:"category_id"`
	Name          string   `gorm:"not null" json:"name" validate:"required,max=120"`
	Type          ItemType `gorm:"not null;default:budget" json:"type" validate:"required,item_type"`
	BudgetedMinor int64    `gorm:"not null;default:0" json:"budgeted_minor" validate:"gte=0"`
	// Formula marks the baseline as derived (e.g. a spreadsheet total).
	Formula   *string `json:"formula,omitempty"`
	SortOrder int     `gorm:"not null;default:0" json:"sort_order"`
}
