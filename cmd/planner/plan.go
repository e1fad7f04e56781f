package main

import (
	"encoding/json"
	"fmt"
	"os"

	"echoplan/internal/cli"
	apperrors "echoplan/internal/errors"
	"echoplan/internal/models"
	"echoplan/internal/services"

	"github.com/spf13/cobra"
)

var flagPlanFile string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create, list and select budget plans",
}

var planCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a plan from a JSON file",
	RunE:  runPlanCreate,
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your plans",
	RunE:  runPlanList,
}

var planUseCmd = &cobra.Command{
	Use:   "use <plan-id>",
	Short: "Make a plan the active plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanUse,
}

var planCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active plan and its group roll-ups",
	RunE:  runPlanCurrent,
}

func init() {
	planCreateCmd.Flags().StringVarP(&flagPlanFile, "file", "f", "", "Plan JSON file")
	_ = planCreateCmd.MarkFlagRequired("file")

	planCmd.AddCommand(planCreateCmd, planListCmd, planUseCmd, planCurrentCmd)
	rootCmd.AddCommand(planCmd)
}

// loadPlanFile reads a plan hierarchy from a JSON file.
func loadPlanFile(path string) (*models.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	var plan models.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrValidation, "plan file is not valid JSON"), err)
	}
	return &plan, nil
}

func runPlanCreate(cmd *cobra.Command, _ []string) error {
	if err := app.requireLocal("plan create"); err != nil {
		return err
	}
	plan, err := loadPlanFile(flagPlanFile)
	if err != nil {
		return err
	}
	if plan.UserID == "" {
		plan.UserID = app.cfg.UserID
	}

	created, err := app.local.CreatePlan(cmd.Context(), plan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created plan %q (%s)\n", created.Name, created.ID)
	return nil
}

func runPlanList(cmd *cobra.Command, _ []string) error {
	if err := app.requireLocal("plan list"); err != nil {
		return err
	}
	plans, err := app.local.ListPlans(cmd.Context(), app.cfg.UserID)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "\n  No plans yet. Create one with: planner plan create -f plan.json")
		return nil
	}
	active, _ := app.selector.ActivePlanID()
	fmt.Fprint(cmd.OutOrStdout(), cli.RenderPlans(plans, active))
	return nil
}

func runPlanUse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	plan, err := app.plans.GetPlan(ctx, args[0])
	if err != nil {
		return err
	}
	if app.local != nil {
		if err := app.local.ActivatePlan(ctx, app.cfg.UserID, plan.ID); err != nil {
			return err
		}
	}

	if err := app.selector.SetActivePlan(ctx, plan.ID); err != nil {
		if !apperrors.IsWarning(err) {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "  Warning: %s\n", err.Error())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Active plan: %s (%s)\n", plan.Name, plan.ID)
	return nil
}

func runPlanCurrent(cmd *cobra.Command, _ []string) error {
	plan, err := app.currentPlan(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderTitle(plan.Name))
	fmt.Fprint(out, cli.RenderPlans([]models.Plan{*plan}, plan.ID))

	rows := make([][]string, 0, len(plan.Groups))
	for _, g := range services.GroupRollups(plan) {
		rows = append(rows, []string{
			g.Name,
			cli.FormatAmount(g.BudgetedMinor, plan.CurrencyCode),
			cli.FormatPercent(g.ShareOfIncome),
			cli.FormatPercent(g.TargetPercent),
		})
	}
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "Groups",
		Headers: []string{"Group", "Budgeted", "Of income", "Target"},
		Rows:    rows,
	}))
	return nil
}
