package cli

import (
	"fmt"
	"strings"

	"echoplan/internal/models"
	"echoplan/internal/pagination"
	"echoplan/internal/services"
)

// RenderReconciliation renders the per-item table followed by totals.
func RenderReconciliation(rec *services.Reconciliation, currency string) string {
	rows := make([][]string, 0, len(rec.PerItem)+4)
	for _, it := range rec.PerItem {
		rows = append(rows, []string{
			it.Name,
			FormatAmount(it.BudgetedMinor, currency),
			FormatAmount(it.ActualMinor, currency),
			FormatPercent(it.UsagePercent),
			formatBalance(it.Balance, currency),
			RenderStatus(it.Status),
		})
	}
	rows = append(rows, Separator, []string{
		"Total",
		FormatAmount(rec.TotalBudgeted, currency),
		FormatAmount(rec.TotalActual, currency),
		FormatPercent(rec.UsagePercent),
		formatBalance(rec.Balance, currency),
		RenderStatus(rec.Status),
	})
	if rec.IncomeBudgeted > 0 || rec.IncomeActual > 0 {
		rows = append(rows, []string{
			"Income",
			FormatAmount(rec.IncomeBudgeted, currency),
			FormatAmount(rec.IncomeActual, currency),
			"", "", "",
		})
	}

	return RenderTable(Table{
		Title:   fmt.Sprintf("Reconciliation %04d-%02d", rec.Year, rec.Month),
		Headers: []string{"Item", "Budgeted", "Actual", "Used", "Balance", "Status"},
		Rows:    rows,
	})
}

// RenderTabTotals renders the per-tab totals of rec in display order.
func RenderTabTotals(rec *services.Reconciliation, currency string) string {
	var rows [][]string
	seen := make(map[models.TargetTab]bool)
	for _, t := range models.ItemTypes() {
		tab := t.Tab()
		total, ok := rec.ByTab[tab]
		if !ok || seen[tab] {
			continue
		}
		seen[tab] = true
		rows = append(rows, []string{
			string(tab),
			FormatAmount(total.BudgetedMinor, currency),
			FormatAmount(total.ActualMinor, currency),
			fmt.Sprintf("%d", total.Items),
		})
	}
	return RenderTable(Table{
		Title:   "By tab",
		Headers: []string{"Tab", "Budgeted", "Actual", "Items"},
		Rows:    rows,
	})
}

// RenderGroupProgress renders one row per group with a usage bar.
func RenderGroupProgress(groups []services.GroupProgress, currency string) string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		target := "-"
		if g.TargetPercent > 0 {
			target = FormatPercent(g.TargetPercent)
		}
		rows = append(rows, []string{
			g.Name,
			FormatAmount(g.BudgetedMinor, currency),
			FormatAmount(g.ActualMinor, currency),
			RenderProgressBar(g.UsagePercent, 12, g.Status) + " " + FormatPercent(g.UsagePercent),
			FormatPercent(g.ShareOfIncome),
			target,
		})
	}
	return RenderTable(Table{
		Title:   "Groups",
		Headers: []string{"Group", "Budgeted", "Actual", "Used", "Of income", "Target"},
		Rows:    rows,
	})
}

// RenderGrid renders a projected grid. Formula cells are marked with "=",
// and percentage rows show their percentage instead of an amount.
func RenderGrid(grid *services.Grid, currency string) string {
	headers := make([]string, 0, len(grid.Months)+1)
	headers = append(headers, "")
	headers = append(headers, grid.Months...)

	rows := make([][]string, 0, len(grid.Rows)+1)
	for _, r := range grid.Rows {
		if r.Kind == services.RowKindTotal {
			rows = append(rows, Separator)
		}
		row := make([]string, 0, len(r.Cells))
		row = append(row, strings.Repeat("  ", r.Depth)+r.Label)
		for _, c := range r.Cells {
			if c.Column == "" {
				continue
			}
			row = append(row, formatGridCell(c, currency))
		}
		rows = append(rows, row)
	}

	return RenderTable(Table{Headers: headers, Rows: rows})
}

func formatGridCell(c services.GridCell, currency string) string {
	if c.Kind == services.CellKindPercentage {
		return statusText(c.Status, FormatPercent(c.Percentage))
	}
	text := FormatAmount(c.Value, currency)
	if c.IsFormula {
		text = "=" + text
	}
	return statusText(c.Status, text)
}

func statusText(s services.Status, text string) string {
	if style, ok := statusStyles[s]; ok && s != services.StatusNormal {
		return style.Render(text)
	}
	return text
}

// RenderPlans lists plans, marking the active selection with "*".
func RenderPlans(plans []models.Plan, activeID string) string {
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		marker := ""
		if p.ID == activeID {
			marker = "*"
		}
		rows = append(rows, []string{
			marker + p.Name,
			p.ID,
			string(p.Status),
			p.CurrencyCode,
			FormatAmount(p.TotalIncomeMinor, p.CurrencyCode),
			FormatAmount(p.TotalExpensesMinor, p.CurrencyCode),
			FormatAmount(p.SurplusMinor, p.CurrencyCode),
		})
	}
	return RenderTable(Table{
		Title:   "Plans",
		Headers: []string{"Name", "ID", "Status", "Currency", "Income", "Expenses", "Surplus"},
		Rows:    rows,
	})
}

// RenderPeriod lists the items of one period.
func RenderPeriod(p *models.MonthlyPeriod, currency string) string {
	rows := make([][]string, 0, len(p.Items))
	for _, it := range p.Items {
		budgeted := FormatAmount(it.BudgetedMinor, currency)
		if !it.Editable() {
			budgeted = "=" + budgeted
		}
		rows = append(rows, []string{
			it.ItemName,
			it.ID,
			string(it.ItemType),
			budgeted,
			FormatAmount(it.ActualMinor, currency),
		})
	}
	title := fmt.Sprintf("Period %s", p.YearMonth().Token())
	if p.WasCreated {
		title += " (new)"
	}
	return RenderTable(Table{
		Title:   title,
		Headers: []string{"Item", "Period item ID", "Type", "Budgeted", "Actual"},
		Rows:    rows,
	})
}

// RenderPeriods renders one page of period history.
func RenderPeriods(page pagination.PageResponse[models.MonthlyPeriod]) string {
	rows := make([][]string, 0, len(page.Data))
	for _, p := range page.Data {
		rows = append(rows, []string{p.YearMonth().Token(), p.ID, fmt.Sprintf("%d", len(p.Items))})
	}
	out := RenderTable(Table{
		Title:   "Periods",
		Headers: []string{"Month", "ID", "Items"},
		Rows:    rows,
	})
	return out + mutedStyle.Render(fmt.Sprintf("  page %d of %d (%d periods)", page.Page, max(page.TotalPages, 1), page.TotalItems)) + "\n"
}

func formatBalance(b services.Balance, currency string) string {
	if b.IsOver() {
		return "-" + FormatAmount(b.OverMinor, currency)
	}
	return FormatAmount(b.RemainingMinor, currency)
}
