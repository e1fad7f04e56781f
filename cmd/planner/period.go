package main

import (
	"fmt"
	"strings"

	"echoplan/internal/cli"
	"echoplan/internal/money"
	"echoplan/internal/pagination"

	"github.com/spf13/cobra"
)

var (
	flagMonth    string
	flagFrom     string
	flagPage     int
	flagPageSize int
)

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Work with monthly periods of the active plan",
}

var periodGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show a month's period, creating it from the plan if needed",
	RunE:  runPeriodGet,
}

var periodCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy budgeted amounts from a period into another month",
	RunE:  runPeriodCopy,
}

var periodSetCmd = &cobra.Command{
	Use:   "set <period-item-id> <amount>",
	Short: "Set the budgeted amount of a period item",
	Args:  cobra.ExactArgs(2),
	RunE:  runPeriodSet,
}

var periodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the periods of the active plan, newest first",
	RunE:  runPeriodList,
}

func init() {
	periodGetCmd.Flags().StringVar(&flagMonth, "month", "", "Month as YYYY-MM (default: current month)")
	periodCopyCmd.Flags().StringVar(&flagMonth, "month", "", "Target month as YYYY-MM (default: current month)")
	periodCopyCmd.Flags().StringVar(&flagFrom, "from", "", "Source period ID")
	_ = periodCopyCmd.MarkFlagRequired("from")
	periodListCmd.Flags().IntVar(&flagPage, "page", 1, "Page number")
	periodListCmd.Flags().IntVar(&flagPageSize, "page-size", pagination.DefaultPageSize, "Periods per page")

	periodCmd.AddCommand(periodGetCmd, periodCopyCmd, periodSetCmd, periodListCmd)
	rootCmd.AddCommand(periodCmd)
}

func runPeriodGet(cmd *cobra.Command, _ []string) error {
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
	fmt.Fprint(cmd.OutOrStdout(), cli.RenderPeriod(period, plan.CurrencyCode))
	return nil
}

func runPeriodCopy(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	ym, err := parseMonth(flagMonth)
	if err != nil {
		return err
	}
	plan, err := app.currentPlan(ctx)
	if err != nil {
		return err
	}

	result, err := app.periods.CopyForward(ctx, flagFrom, plan.ID, ym.Year, ym.Month)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Copied %d item(s) into %s\n", len(result.Items), ym.Token())
	if len(result.Skipped) > 0 {
		fmt.Fprintf(out, "  Skipped (not in %s): %s\n", ym.Token(), strings.Join(result.Skipped, ", "))
	}
	fmt.Fprint(out, cli.RenderPeriod(result.Period, plan.CurrencyCode))
	return nil
}

func runPeriodSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	plan, err := app.currentPlan(ctx)
	if err != nil {
		return err
	}
	amount, err := money.Parse(args[1], plan.CurrencyCode)
	if err != nil {
		return err
	}

	item, err := app.periods.UpdatePeriodItem(ctx, args[0], amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s budgeted at %s\n", item.ItemName, money.Display(item.BudgetedMinor, plan.CurrencyCode))
	return nil
}

func runPeriodList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	planID, err := app.planID()
	if err != nil {
		return err
	}

	page, err := app.periods.ListPeriods(ctx, planID, pagination.PageRequest{Page: flagPage, PageSize: flagPageSize})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), cli.RenderPeriods(*page))
	return nil
}
