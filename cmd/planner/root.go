package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"echoplan/internal/calendar"
	"echoplan/internal/client"
	"echoplan/internal/config"
	"echoplan/internal/database"
	apperrors "echoplan/internal/errors"
	"echoplan/internal/logger"
	"echoplan/internal/models"
	"echoplan/internal/services"
	"echoplan/internal/store"

	"github.com/spf13/cobra"
)

var flagPlan string

// app is the wiring shared by all commands, built before each run.
var app *application

type application struct {
	cfg *config.Config
	db  *database.Manager

	plans   services.PlanService
	finance services.FinanceService
	// Local-only stores; nil when a remote Plan Service is configured.
	local   *store.PlanStore
	actuals *store.ActualsStore

	selector services.ActivePlanSelector
	periods  services.PeriodManager
}

var rootCmd = &cobra.Command{
	Use:          "planner",
	Short:        "Monthly budget plans, periods and reconciliation",
	Long:         "Manage budget plans, materialize monthly periods, and reconcile budgets against actual spending.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// A failed run skips PersistentPostRunE.
		if app != nil {
			_ = app.Close()
		}
		a, err := newApplication(cmd.Context())
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if app == nil {
			return nil
		}
		err := app.Close()
		app = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPlan, "plan", "", "Plan ID (defaults to the active plan)")
}

func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Env)

	a := &application{cfg: cfg}

	if !cfg.Remote() || cfg.StateBackend == "db" {
		dbManager, err := database.NewManager(database.NewConfig(cfg))
		if err != nil {
			return nil, err
		}
		if err := dbManager.Migrate(); err != nil {
			_ = dbManager.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		a.db = dbManager
	}

	if cfg.Remote() {
		httpClient := &http.Client{Timeout: cfg.RequestTimeout}
		a.plans = client.NewPlanServiceClient(cfg.PlanServiceURL, cfg.ServiceAPIKey, httpClient)
		a.finance = client.NewFinanceServiceClient(cfg.FinanceServiceURL, cfg.ServiceAPIKey, httpClient)
	} else {
		a.local = store.NewPlanStore(a.db.DB())
		a.actuals = store.NewActualsStore(a.db.DB())
		a.plans = a.local
		a.finance = a.actuals
	}

	var kv services.KeyValueStore
	if cfg.StateBackend == "file" {
		kv = store.NewFileKV(cfg.StatePath())
	} else {
		kv = store.NewSettingStore(a.db.DB())
	}
	a.selector = services.NewActivePlanSelector(ctx, kv, cfg.UserID)
	a.selector.Subscribe(func(planID string) {
		logger.Get().Infow("Active plan changed", "plan_id", planID, "scope", cfg.UserID)
	})
	a.periods = services.NewPeriodManager(a.plans, a.finance)

	return a, nil
}

// Close releases the database connection and flushes logs.
func (a *application) Close() error {
	logger.Sync()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// requireLocal fails commands that only the local store can serve.
func (a *application) requireLocal(what string) error {
	if a.local == nil {
		return apperrors.Validationf(what + " requires the local store; unset PLAN_SERVICE_URL")
	}
	return nil
}

// planID returns --plan or the active plan.
func (a *application) planID() (string, error) {
	if flagPlan != "" {
		return flagPlan, nil
	}
	return services.RequireActivePlan(a.selector)
}

// currentPlan loads the plan commands operate on.
func (a *application) currentPlan(ctx context.Context) (*models.Plan, error) {
	id, err := a.planID()
	if err != nil {
		return nil, err
	}
	return a.plans.GetPlan(ctx, id)
}

// periodWithActuals gets or creates the month's period and fills in actuals.
func (a *application) periodWithActuals(ctx context.Context, planID string, ym calendar.YearMonth) (*models.MonthlyPeriod, error) {
	period, err := a.periods.GetOrCreatePeriod(ctx, planID, ym.Year, ym.Month)
	if err != nil {
		return nil, err
	}
	return a.periods.RefreshActuals(ctx, period)
}

// parseMonth parses a YYYY-MM flag value; empty means the current month.
func parseMonth(s string) (calendar.YearMonth, error) {
	if s == "" {
		return calendar.FromTime(time.Now()), nil
	}
	return calendar.ParseToken(s)
}
