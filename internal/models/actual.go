package models

// ItemActual is one item's actual spend for one month as reported by the
// finance feed. The local store uses it to serve actuals offline.
type ItemActual struct {
	Base
	PlanID      string `gorm:"type:varchar(36);not null;uniqueIndex:idx_actual_key" json:"plan_id"`
	ItemID      string `gorm:"type:varchar(36);not null;uniqueIndex:idx_actual_key" json:"item_id"`
	Year        int    `gorm:"not null;uniqueIndex:idx_actual_key" json:"year"`
	Month       int    `gorm:"not null;uniqueIndex:idx_actual_key" json:"month"`
	ActualMinor int64  `gorm:"not null;default:0" json:"actual_minor"`
}

// Setting is a scoped key/value pair, e.g. the active plan of a user.
type Setting struct {
	Key   string `gorm:"primaryKey;size:191" json:"key"`
	Value string `gorm:"not null" json:"value"`
}
