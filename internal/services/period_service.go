package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"echoplan/internal/calendar"
	apperrors "echoplan/internal/errors"
	"echoplan/internal/logger"
	"echoplan/internal/models"
	"echoplan/internal/pagination"
)

// CopyResult is the outcome of a copy-forward.
type CopyResult struct {
	Period *models.MonthlyPeriod `json:"period"`
	Items  []models.PeriodItem   `json:"items"`
	// Skipped lists source item IDs that no longer exist in the target plan.
	Skipped []string `json:"skipped,omitempty"`
}

// periodManager resolves, creates and copies monthly periods on top of the
// Plan Service, keeping a cache of periods it has confirmed.
type periodManager struct {
	plans   PlanService
	finance FinanceService

	group singleflight.Group

	mu    sync.RWMutex
	cache map[models.PeriodKey]*models.MonthlyPeriod
}

// NewPeriodManager creates a new PeriodManager. finance may be nil when no
// actuals feed is configured.
func NewPeriodManager(plans PlanService, finance FinanceService) PeriodManager {
	return &periodManager{
		plans:   plans,
		finance: finance,
		cache:   make(map[models.PeriodKey]*models.MonthlyPeriod),
	}
}

// GetOrCreatePeriod returns the period for (planID, year, month), creating it
// from the plan's current items when it does not exist yet. Concurrent calls
// for the same key share one lookup; a creation conflict is resolved by
// re-fetching the winner's period. A caller whose ctx is cancelled gets
// ctx.Err() without affecting the others sharing the lookup.
func (m *periodManager) GetOrCreatePeriod(ctx context.Context, planID string, year, month int) (*models.MonthlyPeriod, error) {
	if planID == "" {
		return nil, apperrors.Validationf("plan id is required")
	}
	ym, err := calendar.New(year, month)
	if err != nil {
		return nil, err
	}
	key := models.PeriodKey{PlanID: planID, YearMonth: ym}

	if cached, ok := m.cached(key); ok {
		cached.WasCreated = false
		return cached, nil
	}

	// The flight is shared, so it must outlive any one caller's cancellation.
	// Each caller still stops waiting when its own ctx is done.
	flightCtx := context.WithoutCancel(ctx)
	// Only the caller that ran the flight may report the period as created.
	leader := false
	ch := m.group.DoChan(fmt.Sprintf("%s/%s", planID, ym.Token()), func() (interface{}, error) {
		leader = true
		if cached, ok := m.cached(key); ok {
			cached.WasCreated = false
			return cached, nil
		}
		period, err := m.resolve(flightCtx, planID, ym)
		if err != nil {
			return nil, err
		}
		m.store(period)
		return period, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		period := res.Val.(*models.MonthlyPeriod).Clone()
		period.WasCreated = period.WasCreated && leader
		return period, nil
	}
}

// resolve fetches or creates the period without touching the cache.
func (m *periodManager) resolve(ctx context.Context, planID string, ym calendar.YearMonth) (*models.MonthlyPeriod, error) {
	log := logger.Get()

	period, err := m.plans.GetPeriod(ctx, planID, ym.Year, ym.Month)
	if err == nil {
		period.WasCreated = false
		return period, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	plan, err := m.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	period, err = m.plans.CreatePeriod(ctx, planID, ym.Year, ym.Month, SeedItems(plan))
	if err == nil {
		period.WasCreated = true
		log.Infow("period created", "plan_id", planID, "month", ym.Token(), "period_id", period.ID, "items", len(period.Items))
		return period, nil
	}
	if !apperrors.IsConflict(err) {
		return nil, err
	}

	log.Infow("period creation conflict, re-fetching", "plan_id", planID, "month", ym.Token())
	period, err = m.plans.GetPeriod(ctx, planID, ym.Year, ym.Month)
	if err != nil {
		return nil, err
	}
	period.WasCreated = false
	return period, nil
}

// SeedItems builds the period items for a new period from the plan's
// current items at their baseline budget and zero actuals.
func SeedItems(plan *models.Plan) []models.PeriodItem {
	items := AllItems(plan)
	seed := make([]models.PeriodItem, 0, len(items))
	for i, it := range items {
		pi := models.PeriodItem{
			ItemID:        it.ID,
			ItemName:      it.Name,
			ItemType:      it.Type,
			BudgetedMinor: it.BudgetedMinor,
			SortOrder:     i,
		}
		if it.Formula != nil {
			f := *it.Formula
			pi.Formula = &f
		}
		seed = append(seed, pi)
	}
	return seed
}

// CopyForward carries the budgeted amounts of the source period into the
// target month. Actual amounts are never copied. The cache only changes once
// the Plan Service has accepted the write.
func (m *periodManager) CopyForward(ctx context.Context, sourcePeriodID, targetPlanID string, targetYear, targetMonth int) (*CopyResult, error) {
	if sourcePeriodID == "" || targetPlanID == "" {
		return nil, apperrors.Validationf("source period id and target plan id are required")
	}
	ym, err := calendar.New(targetYear, targetMonth)
	if err != nil {
		return nil, err
	}
	log := logger.Get()

	source, err := m.plans.GetPeriodByID(ctx, sourcePeriodID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Wrap(apperrors.ErrSourcePeriodNotFound, err)
		}
		return nil, err
	}

	key := models.PeriodKey{PlanID: targetPlanID, YearMonth: ym}
	target, ok := m.cached(key)
	if !ok {
		target, err = m.resolve(ctx, targetPlanID, ym)
		if err != nil {
			return nil, err
		}
	}

	merged, skipped := target.WithBudgetsFrom(source)
	if len(skipped) > 0 {
		log.Infow("copy forward skipped removed items", "source_period_id", sourcePeriodID, "target_period_id", target.ID, "item_ids", skipped)
	}

	written, err := m.plans.CopyPeriod(ctx, sourcePeriodID, targetPlanID, ym.Year, ym.Month)
	if err != nil {
		log.Errorw("copy forward failed", "source_period_id", sourcePeriodID, "target_plan_id", targetPlanID, "month", ym.Token(), "error", err)
		return nil, err
	}

	// The service's view of each item wins for budgets; actuals stay with the
	// target month.
	for _, w := range written {
		dst, ok := merged.ItemByItemID(w.ItemID)
		if !ok {
			continue
		}
		actual := dst.ActualMinor
		*dst = w
		dst.ActualMinor = actual
	}

	m.store(merged)
	return &CopyResult{Period: merged.Clone(), Items: merged.Clone().Items, Skipped: skipped}, nil
}

// UpdatePeriodItem sets a period item's budgeted amount.
func (m *periodManager) UpdatePeriodItem(ctx context.Context, periodItemID string, budgetedMinor int64) (*models.PeriodItem, error) {
	if periodItemID == "" {
		return nil, apperrors.Validationf("period item id is required")
	}
	if budgetedMinor < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrNegativeAmount,
			fmt.Sprintf("budgeted amount must not be negative, got %d", budgetedMinor))
	}
	if pi, ok := m.cachedItem(periodItemID); ok && !pi.Editable() {
		return nil, apperrors.WithMessage(apperrors.ErrFormulaNotEditable,
			fmt.Sprintf("item %q is computed by %q", pi.ItemName, *pi.Formula))
	}

	updated, err := m.plans.UpdatePeriodItem(ctx, periodItemID, budgetedMinor)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	for key, p := range m.cache {
		if _, ok := p.ItemByID(periodItemID); !ok {
			continue
		}
		next := p.Clone()
		item, _ := next.ItemByID(periodItemID)
		item.BudgetedMinor = updated.BudgetedMinor
		m.cache[key] = next
		break
	}
	m.mu.Unlock()

	return updated, nil
}

// RefreshActuals returns a copy of period with actuals replaced by the
// finance feed. Items the feed does not mention have an actual of zero.
func (m *periodManager) RefreshActuals(ctx context.Context, period *models.MonthlyPeriod) (*models.MonthlyPeriod, error) {
	if period == nil {
		return nil, apperrors.Validationf("period is required")
	}
	out := period.Clone()
	if m.finance == nil {
		return out, nil
	}

	actuals, err := m.finance.GetActuals(ctx, period.PlanID, period.Year, period.Month)
	if err != nil {
		return nil, err
	}
	for i := range out.Items {
		amount := actuals[out.Items[i].ItemID]
		if amount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrNegativeAmount,
				fmt.Sprintf("finance feed reported a negative actual for item %q", out.Items[i].ItemID))
		}
		out.Items[i].ActualMinor = amount
	}
	return out, nil
}

// ListPeriods returns the plan's periods, newest first.
func (m *periodManager) ListPeriods(ctx context.Context, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlyPeriod], error) {
	if planID == "" {
		return nil, apperrors.Validationf("plan id is required")
	}
	if err := page.Normalize(); err != nil {
		return nil, err
	}
	return m.plans.ListPeriods(ctx, planID, page)
}

// EditFunc adapts grid edits for planID to the period update path. rowID is
// the plan item ID and month a "YYYY-MM" token.
func (m *periodManager) EditFunc(planID string) EditFunc {
	return func(ctx context.Context, rowID, month string, newValue int64) error {
		ym, err := calendar.ParseToken(month)
		if err != nil {
			return err
		}
		period, err := m.GetOrCreatePeriod(ctx, planID, ym.Year, ym.Month)
		if err != nil {
			return err
		}
		item, ok := period.ItemByItemID(rowID)
		if !ok {
			return apperrors.WithMessage(apperrors.ErrPeriodItemNotFound,
				fmt.Sprintf("item %q has no entry in %s", rowID, ym.Token()))
		}
		_, err = m.UpdatePeriodItem(ctx, item.ID, newValue)
		return err
	}
}

func (m *periodManager) cached(key models.PeriodKey) (*models.MonthlyPeriod, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.cache[key]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (m *periodManager) cachedItem(periodItemID string) (models.PeriodItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.cache {
		if pi, ok := p.ItemByID(periodItemID); ok {
			return *pi, true
		}
	}
	return models.PeriodItem{}, false
}

func (m *periodManager) store(p *models.MonthlyPeriod) {
	cp := p.Clone()
	cp.WasCreated = false
	m.mu.Lock()
	m.cache[cp.Key()] = cp
	m.mu.Unlock()
}
