package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"echoplan/internal/database"
	"echoplan/internal/store"
	"echoplan/internal/testutil"
)

const planJSON = `{
  "id": "plan-cli",
  "name": "Household",
  "currency_code": "EUR",
  "groups": [
    {"name": "Income", "categories": [
      {"name": "Salary", "items": [{"id": "salary", "name": "Salary", "type": "income", "budgeted_minor": 300000}]}
    ]},
    {"name": "Necessities", "target_percent": 50, "categories": [
      {"name": "Housing", "items": [{"id": "rent", "name": "Rent", "type": "recurring", "budgeted_minor": 120000}]},
      {"name": "Groceries", "items": [{"id": "groceries", "name": "Groceries", "type": "budget", "budgeted_minor": 40000}]}
    ]}
  ]
}`

func setupEnv(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("ENV", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "echoplan.db"))
	t.Setenv("PLAN_SERVICE_URL", "")
	t.Setenv("FINANCE_SERVICE_URL", "")
	t.Setenv("STATE_BACKEND", "file")
	t.Setenv("STATE_DIR", filepath.Join(dir, "state"))
	t.Setenv("USER_ID", "user-cli")
	t.Setenv("GRID_MONTHS", "3")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	flagPlan, flagMonth, flagFrom, flagStart, flagXLSX = "", "", "", "", ""
	flagMonths, flagPage, flagPageSize = 0, 1, 12

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()

	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("planner %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()

	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestPlannerWorkflow(t *testing.T) {
	dir := setupEnv(t)
	planFile := filepath.Join(dir, "plan.json")
	if err := os.WriteFile(planFile, []byte(planJSON), 0o600); err != nil {
		t.Fatalf("failed to write plan file: %v", err)
	}
	defer func() {
		if app != nil {
			_ = app.Close()
			app = nil
		}
	}()

	t.Run("no_active_plan", func(t *testing.T) {
		_, err := execute(t, "reconcile", "--month", "2025-03")
		testutil.AssertAppError(t, err, "NO_ACTIVE_PLAN")
	})

	t.Run("create_and_use", func(t *testing.T) {
		out := mustExecute(t, "plan", "create", "-f", planFile)
		assertContains(t, out, `Created plan "Household" (plan-cli)`)

		out = mustExecute(t, "plan", "use", "plan-cli")
		assertContains(t, out, "Active plan: Household (plan-cli)")

		out = mustExecute(t, "plan", "list")
		assertContains(t, out, "*Household", "active", "3,000.00", "1,600.00", "1,400.00")

		out = mustExecute(t, "plan", "current")
		assertContains(t, out, "Necessities", "53.3%")
	})

	t.Run("reconcile_with_recorded_actuals", func(t *testing.T) {
		out := mustExecute(t, "actuals", "record", "groceries", "450", "--month", "2025-03")
		assertContains(t, out, "Recorded 450.00 EUR for groceries in 2025-03")

		out = mustExecute(t, "reconcile", "--month", "2025-03")
		assertContains(t, out, "Reconciliation 2025-03", "Groceries", "112.5%", "danger", "Necessities")
	})

	t.Run("period_commands", func(t *testing.T) {
		out := mustExecute(t, "period", "get", "--month", "2025-03")
		assertContains(t, out, "Period 2025-03", "Rent", "1,200.00", "450.00")

		out = mustExecute(t, "period", "list")
		assertContains(t, out, "2025-03", "page 1 of 1 (1 periods)")

		dbManager, err := database.NewManager(&database.Config{Driver: database.DriverSQLite, Path: os.Getenv("DB_PATH")})
		testutil.AssertNoError(t, err)
		period, err := store.NewPlanStore(dbManager.DB()).GetPeriod(context.Background(), "plan-cli", 2025, 3)
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, dbManager.Close())
		groceries, ok := period.ItemByItemID("groceries")
		if !ok {
			t.Fatal("expected groceries period item")
		}

		out = mustExecute(t, "period", "set", groceries.ID, "425.50")
		assertContains(t, out, "Groceries budgeted at 425.50 EUR")

		out = mustExecute(t, "period", "copy", "--from", period.ID, "--month", "2025-05")
		assertContains(t, out, "Copied 3 item(s) into 2025-05", "425.50")

		_, err = execute(t, "period", "set", "--", groceries.ID, "-1")
		testutil.AssertAppError(t, err, "NEGATIVE_AMOUNT")
	})

	t.Run("grid_with_xlsx", func(t *testing.T) {
		xlsx := filepath.Join(dir, "grid.xlsx")
		out := mustExecute(t, "grid", "--start", "2025-03", "--months", "2", "--xlsx", xlsx)
		assertContains(t, out, "2025-03", "2025-04", "Total", "Spent", "Wrote "+xlsx)

		info, err := os.Stat(xlsx)
		testutil.AssertNoError(t, err)
		if info.Size() == 0 {
			t.Error("expected non-empty xlsx file")
		}
	})

	t.Run("invalid_month", func(t *testing.T) {
		_, err := execute(t, "period", "get", "--month", "2025-13")
		if err == nil {
			t.Error("expected invalid month error")
		}
	})
}

func TestParseMonth(t *testing.T) {
	ym, err := parseMonth("2024-12")
	testutil.AssertNoError(t, err)
	if ym.Year != 2024 || ym.Month != 12 {
		t.Errorf("expected 2024-12, got %s", ym)
	}

	if _, err := parseMonth(""); err != nil {
		t.Errorf("expected current month, got %v", err)
	}
}

func TestLoadPlanFile(t *testing.T) {
	t.Run("invalid_json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		testutil.AssertNoError(t, os.WriteFile(path, []byte("{"), 0o600))
		_, err := loadPlanFile(path)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("missing_file", func(t *testing.T) {
		if _, err := loadPlanFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
