package services

import (
	"context"

	"echoplan/internal/models"
	"echoplan/internal/pagination"
)

// PlanService is the remote collaborator that persists plans and periods.
// Implementations return *errors.AppError values: NOT_FOUND family for
// unknown identifiers, CONFLICT family when a period key is already taken,
// UPSTREAM_UNAVAILABLE for transport failures.
type PlanService interface {
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
	GetPeriod(ctx context.Context, planID string, year, month int) (*models.MonthlyPeriod, error)
	GetPeriodByID(ctx context.Context, periodID string) (*models.MonthlyPeriod, error)
	CreatePeriod(ctx context.Context, planID string, year, month int, seedItems []models.PeriodItem) (*models.MonthlyPeriod, error)
	UpdatePeriodItem(ctx context.Context, periodItemID string, budgetedMinor int64) (*models.PeriodItem, error)
	CopyPeriod(ctx context.Context, sourcePeriodID, targetPlanID string, targetYear, targetMonth int) ([]models.PeriodItem, error)
	ListPeriods(ctx context.Context, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlyPeriod], error)
}

// FinanceService supplies aggregated actual amounts per item for a month.
type FinanceService interface {
	GetActuals(ctx context.Context, planID string, year, month int) (map[string]int64, error)
}

// KeyValueStore is the local scoped persistence used for the active plan.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// PeriodManager obtains, creates and copies monthly periods. It is the only
// component that writes period data.
type PeriodManager interface {
	GetOrCreatePeriod(ctx context.Context, planID string, year, month int) (*models.MonthlyPeriod, error)
	CopyForward(ctx context.Context, sourcePeriodID, targetPlanID string, targetYear, targetMonth int) (*CopyResult, error)
	UpdatePeriodItem(ctx context.Context, periodItemID string, budgetedMinor int64) (*models.PeriodItem, error)
	RefreshActuals(ctx context.Context, period *models.MonthlyPeriod) (*models.MonthlyPeriod, error)
	ListPeriods(ctx context.Context, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlyPeriod], error)
	EditFunc(planID string) EditFunc
}

// ActivePlanSelector is the process-wide pointer to the plan in scope.
type ActivePlanSelector interface {
	ActivePlanID() (string, bool)
	SetActivePlan(ctx context.Context, planID string) error
	Subscribe(fn func(planID string)) (unsubscribe func())
}

// EditFunc pushes a grid cell edit back to the source of truth.
type EditFunc func(ctx context.Context, rowID, month string, newValue int64) error
