package models

// Value is a budgeted figure as the grid sees it: either stored by the user
// or derived from a formula. Editability is a property of the variant.
type Value interface {
	// Minor returns the amount in minor currency units.
	Minor() int64
	// Editable reports whether a user may overwrite the value.
	Editable() bool
	isValue()
}

// Stored is a user-entered amount.
type Stored struct {
	Amount int64
}

func (s Stored) Minor() int64   { return s.Amount }
func (s Stored) Editable() bool { return true }
func (Stored) isValue()         {}

// Formula is a derived amount with the expression that produced it.
type Formula struct {
	Expression string
	Cached     int64
}

func (f Formula) Minor() int64   { return f.Cached }
func (f Formula) Editable() bool { return false }
func (Formula) isValue()         {}

// NewValue builds the variant from a persisted amount and optional formula text.
func NewValue(minor int64, formula *string) Value {
	if formula != nil && *formula != "" {
		return Formula{Expression: *formula, Cached: minor}
	}
	return Stored{Amount: minor}
}
