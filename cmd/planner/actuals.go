package main

import (
	"fmt"

	"echoplan/internal/money"

	"github.com/spf13/cobra"
)

var actualsCmd = &cobra.Command{
	Use:   "actuals",
	Short: "Record actual spending for the local finance feed",
}

var actualsRecordCmd = &cobra.Command{
	Use:   "record <item-id> <amount>",
	Short: "Record an item's actual spending for a month",
	Args:  cobra.ExactArgs(2),
	RunE:  runActualsRecord,
}

func init() {
	actualsRecordCmd.Flags().StringVar(&flagMonth, "month", "", "Month as YYYY-MM (default: current month)")

	actualsCmd.AddCommand(actualsRecordCmd)
	rootCmd.AddCommand(actualsCmd)
}

func runActualsRecord(cmd *cobra.Command, args []string) error {
	if err := app.requireLocal("actuals record"); err != nil {
		return err
	}
	ctx := cmd.Context()
	ym, err := parseMonth(flagMonth)
	if err != nil {
		return err
	}
	plan, err := app.currentPlan(ctx)
	if err != nil {
		return err
	}
	amount, err := money.Parse(args[1], plan.CurrencyCode)
	if err != nil {
		return err
	}

	if err := app.actuals.RecordActual(ctx, plan.ID, args[0], ym.Year, ym.Month, amount); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %s in %s\n", money.Display(amount, plan.CurrencyCode), args[0], ym.Token())
	return nil
}
