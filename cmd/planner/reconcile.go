package main

import (
	"fmt"

	"echoplan/internal/cli"
	"echoplan/internal/services"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare a month's budgets with actual spending",
	RunE:  runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&flagMonth, "month", "", "Month as YYYY-MM (default: current month)")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	ym, err := parseMonth(flagMonth)
	if err != nil {
		return err
	}
	plan, err := app.currentPlan(ctx)
	if err != nil {
		return err
	}
	period, err := app.periodWithActuals(ctx, plan.ID, ym)
	if err != nil {
		return err
	}

	rec, err := services.Reconcile(period)
	if err != nil {
		return err
	}
	groups, err := services.GroupProgressFor(plan, period)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("%s  %s", plan.Name, ym.Token())))
	fmt.Fprint(out, cli.RenderReconciliation(rec, plan.CurrencyCode))
	fmt.Fprint(out, cli.RenderGroupProgress(groups, plan.CurrencyCode))
	fmt.Fprint(out, cli.RenderTabTotals(rec, plan.CurrencyCode))
	return nil
}
