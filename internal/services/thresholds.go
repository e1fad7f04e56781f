package services

import "math"

// Status is the health classification of a budgeted-vs-actual ratio.
type Status string

const (
	StatusSuccess Status = "success"
	StatusNormal  Status = "normal"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// Severity orders statuses from healthiest (0) to worst (3).
func (s Status) Severity() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusNormal:
		return 1
	case StatusWarning:
		return 2
	case StatusDanger:
		return 3
	}
	return 1
}

// Band limits in basis points of the budget (10000 = 100%). A ratio equal to
// a limit falls into the lower band.
const (
	ItemSuccessMaxBP = 6000
	ItemNormalMaxBP  = 8500
	ItemWarningMaxBP = 10000

	AggregateSuccessMaxBP = 6000
	AggregateNormalMaxBP  = 9000
	AggregateWarningMaxBP = 10000

	fullBP = 10000
)

// Thresholds is one classification table.
type Thresholds struct {
	SuccessMaxBP int64
	NormalMaxBP  int64
	WarningMaxBP int64
}

// ItemThresholds classifies individual items and category rows.
var ItemThresholds = Thresholds{
	SuccessMaxBP: ItemSuccessMaxBP,
	NormalMaxBP:  ItemNormalMaxBP,
	WarningMaxBP: ItemWarningMaxBP,
}

// AggregateThresholds classifies period and group totals.
var AggregateThresholds = Thresholds{
	SuccessMaxBP: AggregateSuccessMaxBP,
	NormalMaxBP:  AggregateNormalMaxBP,
	WarningMaxBP: AggregateWarningMaxBP,
}

// maxExactMinor is the largest amount for which amount*fullBP cannot overflow int64.
const maxExactMinor = math.MaxInt64 / fullBP

// Classify returns the status of actual against budgeted. A zero budget is
// treated as ratio 0 and therefore never warns on its own.
func (t Thresholds) Classify(actual, budgeted int64) Status {
	if budgeted <= 0 || actual <= 0 {
		return StatusSuccess
	}
	switch {
	case t.within(actual, budgeted, t.SuccessMaxBP):
		return StatusSuccess
	case t.within(actual, budgeted, t.NormalMaxBP):
		return StatusNormal
	case t.within(actual, budgeted, t.WarningMaxBP):
		return StatusWarning
	default:
		return StatusDanger
	}
}

// ClassifyRatio classifies a precomputed ratio (1.0 = fully used). Non-finite
// ratios fall back to StatusNormal.
func (t Thresholds) ClassifyRatio(r float64) Status {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return StatusNormal
	}
	bp := r * fullBP
	switch {
	case bp <= float64(t.SuccessMaxBP):
		return StatusSuccess
	case bp <= float64(t.NormalMaxBP):
		return StatusNormal
	case bp <= float64(t.WarningMaxBP):
		return StatusWarning
	default:
		return StatusDanger
	}
}

// within reports actual/budgeted <= bp/fullBP using integer arithmetic when it
// cannot overflow.
func (t Thresholds) within(actual, budgeted, bp int64) bool {
	if actual <= maxExactMinor && budgeted <= maxExactMinor {
		return actual*fullBP <= budgeted*bp
	}
	return float64(actual)/float64(budgeted) <= float64(bp)/fullBP
}

// Ratio returns actual/budgeted, or 0 when budgeted is not positive.
func Ratio(actual, budgeted int64) float64 {
	if budgeted <= 0 {
		return 0
	}
	return float64(actual) / float64(budgeted)
}

// UsagePercent returns actual/budgeted*100, or 0 when budgeted is not positive.
func UsagePercent(actual, budgeted int64) float64 {
	return percentOf(actual, budgeted)
}

// Balance reports the unspent or overspent part of a budget. Exactly one of
// Remaining and Over is non-zero unless the budget is met exactly.
type Balance struct {
	RemainingMinor int64 `json:"remaining_minor"`
	OverMinor      int64 `json:"over_minor"`
}

// IsOver reports whether actual exceeded the budget.
func (b Balance) IsOver() bool { return b.OverMinor > 0 }

// BalanceOf computes the balance of budgeted minus actual.
func BalanceOf(budgeted, actual int64) Balance {
	diff := budgeted - actual
	if diff < 0 {
		return Balance{OverMinor: -diff}
	}
	return Balance{RemainingMinor: diff}
}
