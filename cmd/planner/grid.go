package main

import (
	"fmt"
	"os"

	"echoplan/internal/calendar"
	"echoplan/internal/cli"
	"echoplan/internal/export"
	"echoplan/internal/models"
	"echoplan/internal/services"

	"github.com/spf13/cobra"
)

var (
	flagStart  string
	flagMonths int
	flagXLSX   string
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Show the plan as a months-by-rows grid",
	RunE:  runGrid,
}

func init() {
	gridCmd.Flags().StringVar(&flagStart, "start", "", "First month as YYYY-MM (default: current month)")
	gridCmd.Flags().IntVar(&flagMonths, "months", 0, "Number of months (default: GRID_MONTHS)")
	gridCmd.Flags().StringVar(&flagXLSX, "xlsx", "", "Also write the grid to this xlsx file")
	rootCmd.AddCommand(gridCmd)
}

func runGrid(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	start, err := parseMonth(flagStart)
	if err != nil {
		return err
	}
	count := flagMonths
	if count <= 0 {
		count = app.cfg.GridMonths
	}
	plan, err := app.currentPlan(ctx)
	if err != nil {
		return err
	}

	months := calendar.Columns(start, count)
	periods := make([]*models.MonthlyPeriod, 0, len(months))
	for ym := start; len(periods) < len(months); ym = ym.Next() {
		period, err := app.periodWithActuals(ctx, plan.ID, ym)
		if err != nil {
			return err
		}
		periods = append(periods, period)
	}

	grid, err := services.ProjectGrid(services.BuildPlanRows(plan, periods), months)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), cli.RenderGrid(grid, plan.CurrencyCode))

	if flagXLSX == "" {
		return nil
	}
	f, err := os.Create(flagXLSX)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", flagXLSX, err)
	}
	if err := export.WriteXLSX(grid, f, plan.CurrencyCode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", flagXLSX)
	return nil
}
