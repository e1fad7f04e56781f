package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"echoplan/internal/calendar"
	apperrors "echoplan/internal/errors"
	"echoplan/internal/models"
)

// CellKind is the presentation role of a grid cell.
type CellKind string

const (
	CellKindHeader     CellKind = "header"
	CellKindCategory   CellKind = "category"
	CellKindValue      CellKind = "value"
	CellKindPercentage CellKind = "percentage"
	CellKindTotal      CellKind = "total"
)

// RowKind is the role of a projected row.
type RowKind string

const (
	RowKindGroup      RowKind = "group"
	RowKindCategory   RowKind = "category"
	RowKindItem       RowKind = "item"
	RowKindTotal      RowKind = "total"
	RowKindPercentage RowKind = "percentage"
)

// Row IDs of the synthetic rows produced by BuildPlanRows.
const (
	TotalRowID = "total"
	SpentRowID = "spent"
)

// PercentBasis says how a row's percentage is derived from its cells.
type PercentBasis string

const (
	// BasisNone keeps the projected percentage as given.
	BasisNone PercentBasis = ""
	// BasisUsage is actual over value.
	BasisUsage PercentBasis = "usage"
	// BasisIncome is value over the month's income rows.
	BasisIncome PercentBasis = "income"
)

// MonthlyValue is one row's figure for one month. A nil Value projects as a
// stored zero; a nil Percentage as 0.
type MonthlyValue struct {
	Value      models.Value
	Actual     int64
	Percentage *float64
}

// RowSpec describes one grid row. Values is keyed by month token ("2025-03").
type RowSpec struct {
	ID     string
	Label  string
	Kind   RowKind
	Depth  int
	Values map[string]MonthlyValue
	// TargetPercent parameterizes the threshold status. Nil means none.
	TargetPercent *float64
	Basis         PercentBasis
	// Income rows feed the denominator of BasisIncome rows.
	Income bool
}

// GridCell is one projected (row, month) cell. Cells are rebuilt on every
// projection and carry no identity of their own.
type GridCell struct {
	RowID      string   `json:"row_id"`
	Column     string   `json:"column"`
	Label      string   `json:"label,omitempty"`
	Value      int64    `json:"value"`
	Actual     int64    `json:"actual"`
	Percentage float64  `json:"percentage"`
	Kind       CellKind `json:"kind"`
	Editable   bool     `json:"editable"`
	IsFormula  bool     `json:"is_formula"`
	Formula    string   `json:"formula,omitempty"`
	Status     Status   `json:"status,omitempty"`
}

// GridRow is a projected row: a label cell followed by one cell per month.
type GridRow struct {
	RowID         string       `json:"row_id"`
	Label         string       `json:"label"`
	Kind          RowKind      `json:"kind"`
	Depth         int          `json:"depth"`
	TargetPercent *float64     `json:"target_percent,omitempty"`
	Basis         PercentBasis `json:"basis,omitempty"`
	Income        bool         `json:"income,omitempty"`
	Cells         []GridCell   `json:"cells"`
}

// Grid is a rows by months matrix.
type Grid struct {
	Months []string   `json:"months"`
	Header []GridCell `json:"header"`
	Rows   []GridRow  `json:"rows"`
}

// Row returns the row with the given ID.
func (g *Grid) Row(rowID string) (*GridRow, bool) {
	for i := range g.Rows {
		if g.Rows[i].RowID == rowID {
			return &g.Rows[i], true
		}
	}
	return nil, false
}

// Cell returns the month cell of rowID for month.
func (g *Grid) Cell(rowID, month string) (*GridCell, bool) {
	row, ok := g.Row(rowID)
	if !ok {
		return nil, false
	}
	for i := range row.Cells {
		if row.Cells[i].Column == month {
			return &row.Cells[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	cp := &Grid{
		Months: append([]string(nil), g.Months...),
		Header: append([]GridCell(nil), g.Header...),
		Rows:   make([]GridRow, len(g.Rows)),
	}
	for i, r := range g.Rows {
		r.Cells = append([]GridCell(nil), r.Cells...)
		cp.Rows[i] = r
	}
	return cp
}

// ProjectGrid builds the grid for rows over months. It never modifies rows.
func ProjectGrid(rows []RowSpec, months []string) (*Grid, error) {
	for _, m := range months {
		if _, err := calendar.ParseToken(m); err != nil {
			return nil, err
		}
	}
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			return nil, apperrors.Validationf("grid row id is required")
		}
		if _, dup := seen[r.ID]; dup {
			return nil, apperrors.Validationf(fmt.Sprintf("grid row id %q appears more than once", r.ID))
		}
		seen[r.ID] = struct{}{}
	}

	grid := &Grid{
		Months: append([]string(nil), months...),
		Header: make([]GridCell, 0, len(months)+1),
		Rows:   make([]GridRow, 0, len(rows)),
	}
	grid.Header = append(grid.Header, GridCell{Kind: CellKindHeader})
	for _, m := range months {
		grid.Header = append(grid.Header, GridCell{Column: m, Label: m, Kind: CellKindHeader})
	}

	for _, r := range rows {
		row := GridRow{
			RowID:         r.ID,
			Label:         r.Label,
			Kind:          r.Kind,
			Depth:         r.Depth,
			TargetPercent: r.TargetPercent,
			Basis:         r.Basis,
			Income:        r.Income,
			Cells:         make([]GridCell, 0, len(months)+1),
		}
		row.Cells = append(row.Cells, GridCell{RowID: r.ID, Label: r.Label, Kind: CellKindCategory})
		for _, m := range months {
			row.Cells = append(row.Cells, projectCell(r, m))
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid, nil
}

func projectCell(r RowSpec, month string) GridCell {
	mv := r.Values[month]
	var value models.Value = models.Stored{}
	if mv.Value != nil {
		value = mv.Value
	}
	var pct float64
	if mv.Percentage != nil {
		pct = finitePercent(*mv.Percentage)
	}

	cell := GridCell{
		RowID:      r.ID,
		Column:     month,
		Value:      value.Minor(),
		Actual:     mv.Actual,
		Percentage: pct,
		Kind:       cellKind(r.Kind),
		Editable:   r.Kind != RowKindTotal && value.Editable(),
		Status:     cellStatus(pct, r.TargetPercent),
	}
	if f, ok := value.(models.Formula); ok {
		cell.IsFormula = true
		cell.Formula = f.Expression
	}
	return cell
}

func cellKind(k RowKind) CellKind {
	switch k {
	case RowKindTotal:
		return CellKindTotal
	case RowKindPercentage:
		return CellKindPercentage
	default:
		return CellKindValue
	}
}

func finitePercent(pct float64) float64 {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return pct
}

// cellStatus classifies pct against the row target with the per-item table.
func cellStatus(pct float64, target *float64) Status {
	if target == nil || *target <= 0 || math.IsNaN(*target) || math.IsInf(*target, 0) {
		return StatusNormal
	}
	return ItemThresholds.ClassifyRatio(pct / *target)
}

// BuildPlanRows lays out plan as grid rows: one row per group and category
// with read-only SUM formulas, one editable row per item, then a total row
// and a spent-percentage row. periods supplies the per-month figures; months
// without a period project as zero.
func BuildPlanRows(plan *models.Plan, periods []*models.MonthlyPeriod) []RowSpec {
	byMonth := make(map[string]*models.MonthlyPeriod, len(periods))
	for _, p := range periods {
		if p != nil {
			byMonth[p.YearMonth().Token()] = p
		}
	}

	hundred := 100.0
	var rows []RowSpec
	var groupRowIDs []string

	for gi := range plan.Groups {
		g := &plan.Groups[gi]
		groupRow := RowSpec{ID: "group:" + g.ID, Label: g.Name, Kind: RowKindGroup, Basis: BasisIncome, Values: map[string]MonthlyValue{}}
		if g.TargetPercent > 0 {
			target := g.TargetPercent
			groupRow.TargetPercent = &target
		}
		groupIdx := len(rows)
		rows = append(rows, groupRow)
		groupRowIDs = append(groupRowIDs, groupRow.ID)

		var catRowIDs []string
		var catIdxs []int
		for ci := range g.Categories {
			c := &g.Categories[ci]
			catRow := RowSpec{ID: "category:" + c.ID, Label: c.Name, Kind: RowKindCategory, Depth: 1, TargetPercent: &hundred, Basis: BasisUsage, Values: map[string]MonthlyValue{}}
			catIdx := len(rows)
			catIdxs = append(catIdxs, catIdx)
			rows = append(rows, catRow)
			catRowIDs = append(catRowIDs, catRow.ID)

			var spendIDs []string
			for _, it := range c.Items {
				itemRow := RowSpec{ID: it.ID, Label: it.Name, Kind: RowKindItem, Depth: 2, Basis: BasisUsage, Income: !it.Type.IsSpending(), Values: map[string]MonthlyValue{}}
				if it.Type.IsSpending() {
					itemRow.TargetPercent = &hundred
					spendIDs = append(spendIDs, it.ID)
				}
				for month, p := range byMonth {
					pi, ok := p.ItemByItemID(it.ID)
					if !ok {
						continue
					}
					pct := UsagePercent(pi.ActualMinor, pi.BudgetedMinor)
					itemRow.Values[month] = MonthlyValue{Value: pi.BudgetValue(), Actual: pi.ActualMinor, Percentage: &pct}
				}
				rows = append(rows, itemRow)
			}

			expr := sumFormula(spendIDs)
			for month, p := range byMonth {
				budgeted, actual := sumItems(p, spendIDs)
				pct := UsagePercent(actual, budgeted)
				rows[catIdx].Values[month] = MonthlyValue{Value: models.Formula{Expression: expr, Cached: budgeted}, Actual: actual, Percentage: &pct}
			}
		}

		expr := sumFormula(catRowIDs)
		for month, p := range byMonth {
			budgeted := GroupPeriodBudgeted(g, p)
			share := percentOf(budgeted, periodIncome(p))
			var actual int64
			for _, idx := range catIdxs {
				actual += rows[idx].Values[month].Actual
			}
			rows[groupIdx].Values[month] = MonthlyValue{Value: models.Formula{Expression: expr, Cached: budgeted}, Actual: actual, Percentage: &share}
		}
	}

	total := RowSpec{ID: TotalRowID, Label: "Total", Kind: RowKindTotal, TargetPercent: &hundred, Basis: BasisUsage, Values: map[string]MonthlyValue{}}
	spent := RowSpec{ID: SpentRowID, Label: "Spent", Kind: RowKindPercentage, TargetPercent: &hundred, Values: map[string]MonthlyValue{}}
	totalExpr := sumFormula(groupRowIDs)
	for month, p := range byMonth {
		budgeted, actual := periodSpending(p)
		pct := UsagePercent(actual, budgeted)
		total.Values[month] = MonthlyValue{Value: models.Formula{Expression: totalExpr, Cached: budgeted}, Actual: actual, Percentage: &pct}
		spent.Values[month] = MonthlyValue{Value: models.Formula{Expression: actualFormula(TotalRowID), Cached: actual}, Actual: actual, Percentage: &pct}
	}
	return append(rows, total, spent)
}

// GroupPeriodBudgeted sums the period budgets of the group's spending items.
func GroupPeriodBudgeted(g *models.CategoryGroup, p *models.MonthlyPeriod) int64 {
	var total int64
	for _, c := range g.Categories {
		for _, it := range c.Items {
			if !it.Type.IsSpending() {
				continue
			}
			if pi, ok := p.ItemByItemID(it.ID); ok {
				total += pi.BudgetedMinor
			}
		}
	}
	return total
}

// ParseSumFormula returns the row IDs referenced by a SUM(...) expression.
func ParseSumFormula(expr string) ([]string, bool) {
	if !strings.HasPrefix(expr, "SUM(") || !strings.HasSuffix(expr, ")") {
		return nil, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(expr, "SUM("), ")")
	if inner == "" {
		return []string{}, true
	}
	return strings.Split(inner, ","), true
}

func sumFormula(ids []string) string {
	return "SUM(" + strings.Join(ids, ",") + ")"
}

func actualFormula(id string) string {
	return "ACTUAL(" + id + ")"
}

// parseActualFormula returns the row referenced by an ACTUAL(row) expression.
func parseActualFormula(expr string) (string, bool) {
	if !strings.HasPrefix(expr, "ACTUAL(") || !strings.HasSuffix(expr, ")") {
		return "", false
	}
	ref := strings.TrimSuffix(strings.TrimPrefix(expr, "ACTUAL("), ")")
	return ref, ref != ""
}

func formulaRefs(expr string) []string {
	if refs, ok := ParseSumFormula(expr); ok {
		return refs
	}
	if ref, ok := parseActualFormula(expr); ok {
		return []string{ref}
	}
	return nil
}

func sumItems(p *models.MonthlyPeriod, itemIDs []string) (budgeted, actual int64) {
	for _, id := range itemIDs {
		if pi, ok := p.ItemByItemID(id); ok {
			budgeted += pi.BudgetedMinor
			actual += pi.ActualMinor
		}
	}
	return budgeted, actual
}

func periodSpending(p *models.MonthlyPeriod) (budgeted, actual int64) {
	for _, pi := range p.Items {
		if pi.ItemType.IsSpending() {
			budgeted += pi.BudgetedMinor
			actual += pi.ActualMinor
		}
	}
	return budgeted, actual
}

func periodIncome(p *models.MonthlyPeriod) int64 {
	var total int64
	for _, pi := range p.Items {
		if !pi.ItemType.IsSpending() {
			total += pi.BudgetedMinor
		}
	}
	return total
}

// Refresh recomputes the cells of month derived from rowID: SUM and ACTUAL
// formulas that reference it directly or through other formulas, their
// percentages and statuses, and the income shares when rowID is an income
// row. A formula with a reference outside the grid keeps its cached value.
func (g *Grid) Refresh(rowID, month string) {
	dirty := map[string]bool{rowID: true}
	if row, ok := g.Row(rowID); ok && row.Income {
		for _, r := range g.Rows {
			if r.Basis == BasisIncome {
				dirty[r.RowID] = true
			}
		}
	}
	for grew := true; grew; {
		grew = false
		for _, r := range g.Rows {
			if dirty[r.RowID] {
				continue
			}
			cell, ok := g.Cell(r.RowID, month)
			if !ok || !cell.IsFormula {
				continue
			}
			for _, ref := range formulaRefs(cell.Formula) {
				if dirty[ref] {
					dirty[r.RowID] = true
					grew = true
					break
				}
			}
		}
	}

	income := g.income(month)
	done := make(map[string]bool, len(dirty))
	var eval func(id string)
	eval = func(id string) {
		if done[id] || !dirty[id] {
			return
		}
		done[id] = true
		row, ok := g.Row(id)
		if !ok {
			return
		}
		cell, ok := g.Cell(id, month)
		if !ok {
			return
		}
		if cell.IsFormula {
			for _, ref := range formulaRefs(cell.Formula) {
				eval(ref)
			}
			g.evalFormula(cell, month)
		}
		switch row.Basis {
		case BasisUsage:
			cell.Percentage = finitePercent(UsagePercent(cell.Actual, cell.Value))
		case BasisIncome:
			cell.Percentage = finitePercent(percentOf(cell.Value, income))
		}
		cell.Status = cellStatus(cell.Percentage, row.TargetPercent)
	}
	for _, r := range g.Rows {
		eval(r.RowID)
	}
}

func (g *Grid) evalFormula(cell *GridCell, month string) {
	if refs, ok := ParseSumFormula(cell.Formula); ok {
		var value, actual int64
		for _, ref := range refs {
			c, ok := g.Cell(ref, month)
			if !ok {
				return
			}
			value += c.Value
			actual += c.Actual
		}
		cell.Value, cell.Actual = value, actual
		return
	}
	if ref, ok := parseActualFormula(cell.Formula); ok {
		if c, ok := g.Cell(ref, month); ok {
			cell.Value, cell.Actual, cell.Percentage = c.Actual, c.Actual, c.Percentage
		}
	}
}

func (g *Grid) income(month string) int64 {
	var total int64
	for _, r := range g.Rows {
		if !r.Income {
			continue
		}
		if c, ok := g.Cell(r.RowID, month); ok {
			total += c.Value
		}
	}
	return total
}

type cellKey struct {
	rowID string
	month string
}

// cellEdits tracks the in-flight edits of one cell and the value the edit
// callback last accepted for it.
type cellEdits struct {
	confirmed int64
	pending   int
}

// GridEditor applies optimistic edits to a projected grid. An edit shows up
// immediately, together with the cells derived from it. Once no edit of a
// cell is in flight the cell shows the last value the callback accepted, so
// a failed edit reverts to the last confirmed value.
type GridEditor struct {
	mu    sync.Mutex
	grid  *Grid
	edit  EditFunc
	cells map[cellKey]*cellEdits
}

// NewGridEditor creates a GridEditor over a copy of grid.
func NewGridEditor(grid *Grid, edit EditFunc) *GridEditor {
	return &GridEditor{grid: grid.Clone(), edit: edit, cells: make(map[cellKey]*cellEdits)}
}

// Grid returns a snapshot of the current local projection.
func (e *GridEditor) Grid() *Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Clone()
}

// Edit sets the cell at (rowID, month) to newValue and pushes it through the
// edit callback. Callbacks completing in a different order than their edits
// were made are taken to have reached the source of truth in completion
// order.
func (e *GridEditor) Edit(ctx context.Context, rowID, month string, newValue int64) error {
	if newValue < 0 {
		return apperrors.WithMessage(apperrors.ErrNegativeAmount,
			fmt.Sprintf("value must not be negative, got %d", newValue))
	}

	key := cellKey{rowID: rowID, month: month}
	e.mu.Lock()
	cell, ok := e.grid.Cell(rowID, month)
	if !ok {
		e.mu.Unlock()
		return apperrors.WithMessage(apperrors.ErrCellNotFound, fmt.Sprintf("no cell for row %q in %s", rowID, month))
	}
	if !cell.Editable {
		e.mu.Unlock()
		return apperrors.WithMessage(apperrors.ErrCellNotEditable, fmt.Sprintf("cell for row %q in %s is read-only", rowID, month))
	}
	state, ok := e.cells[key]
	if !ok {
		state = &cellEdits{confirmed: cell.Value}
		e.cells[key] = state
	}
	state.pending++
	e.set(cell, newValue)
	e.mu.Unlock()

	err := e.edit(ctx, rowID, month, newValue)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		state.confirmed = newValue
	}
	state.pending--
	if state.pending == 0 {
		delete(e.cells, key)
		if cell, ok := e.grid.Cell(rowID, month); ok {
			e.set(cell, state.confirmed)
		}
	}
	return err
}

// set must be called with e.mu held.
func (e *GridEditor) set(cell *GridCell, value int64) {
	if cell.Value == value {
		return
	}
	cell.Value = value
	e.grid.Refresh(cell.RowID, cell.Column)
}
