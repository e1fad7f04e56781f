package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	apperrors "echoplan/internal/errors"
	"echoplan/internal/models"
	"echoplan/internal/pagination"
)

// ---------------------------------------------------------------------------
// Mock PlanService
// ---------------------------------------------------------------------------

type mockPlanService struct {
	getPlanFn          func(ctx context.Context, planID string) (*models.Plan, error)
	getPeriodFn        func(ctx context.Context, planID string, year, month int) (*models.MonthlyPeriod, error)
	getPeriodByIDFn    func(ctx context.Context, periodID string) (*models.MonthlyPeriod, error)
	createPeriodFn     func(ctx context.Context, planID string, year, month int, seedItems []models.PeriodItem) (*models.MonthlyPeriod, error)
	updatePeriodItemFn func(ctx context.Context, periodItemID string, budgetedMinor int64) (*models.PeriodItem, error)
	copyPeriodFn       func(ctx context.Context, sourcePeriodID, targetPlanID string, targetYear, targetMonth int) ([]models.PeriodItem, error)
	listPeriodsFn      func(ctx context.Context, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlyPeriod], error)
}

var _ PlanService = (*mockPlanService)(nil)

func (m *mockPlanService) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	if m.getPlanFn != nil {
		return m.getPlanFn(ctx, planID)
	}
	return nil, apperrors.ErrPlanNotFound
}

func (m *mockPlanService) GetPeriod(ctx context.Context, planID string, year, month int) (*models.MonthlyPeriod, error) {
	if m.getPeriodFn != nil {
		return m.getPeriodFn(ctx, planID, year, month)
	}
	return nil, apperrors.ErrPeriodNotFound
}

func (m *mockPlanService) GetPeriodByID(ctx context.Context, periodID string) (*models.MonthlyPeriod, error) {
	if m.getPeriodByIDFn != nil {
		return m.getPeriodByIDFn(ctx, periodID)
	}
	return nil, apperrors.ErrPeriodNotFound
}

func (m *mockPlanService) CreatePeriod(ctx context.Context, planID string, year, month int, seedItems []models.PeriodItem) (*models.MonthlyPeriod, error) {
	if m.createPeriodFn != nil {
		return m.createPeriodFn(ctx, planID, year, month, seedItems)
	}
	return nil, apperrors.ErrInternal
}

func (m *mockPlanService) UpdatePeriodItem(ctx context.Context, periodItemID string, budgetedMinor int64) (*models.PeriodItem, error) {
	if m.updatePeriodItemFn != nil {
		return m.updatePeriodItemFn(ctx, periodItemID, budgetedMinor)
	}
	return nil, apperrors.ErrPeriodItemNotFound
}

func (m *mockPlanService) CopyPeriod(ctx context.Context, sourcePeriodID, targetPlanID string, targetYear, targetMonth int) ([]models.PeriodItem, error) {
	if m.copyPeriodFn != nil {
		return m.copyPeriodFn(ctx, sourcePeriodID, targetPlanID, targetYear, targetMonth)
	}
	return nil, apperrors.ErrInternal
}

func (m *mockPlanService) ListPeriods(ctx context.Context, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlyPeriod], error) {
	if m.listPeriodsFn != nil {
		return m.listPeriodsFn(ctx, planID, page)
	}
	resp := pagination.NewPageResponse[models.MonthlyPeriod](nil, page.Page, page.PageSize, 0)
	return &resp, nil
}

// ---------------------------------------------------------------------------
// Mock FinanceService
// ---------------------------------------------------------------------------

type mockFinanceService struct {
	getActualsFn func(ctx context.Context, planID string, year, month int) (map[string]int64, error)
}

var _ FinanceService = (*mockFinanceService)(nil)

func (m *mockFinanceService) GetActuals(ctx context.Context, planID string, year, month int) (map[string]int64, error) {
	if m.getActualsFn != nil {
		return m.getActualsFn(ctx, planID, year, month)
	}
	return map[string]int64{}, nil
}

// ---------------------------------------------------------------------------
// Mock KeyValueStore
// ---------------------------------------------------------------------------

type mockKeyValueStore struct {
	getFn func(ctx context.Context, key string) (string, bool, error)
	setFn func(ctx context.Context, key, value string) error
}

var _ KeyValueStore = (*mockKeyValueStore)(nil)

func (m *mockKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return "", false, nil
}

func (m *mockKeyValueStore) Set(ctx context.Context, key, value string) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

// ---------------------------------------------------------------------------
// In-memory Plan Service backed by the mock
// ---------------------------------------------------------------------------

// memoryPlans is a minimal Plan Service that enforces one period per key.
type memoryPlans struct {
	mu      sync.Mutex
	plans   map[string]*models.Plan
	periods map[string]*models.MonthlyPeriod
	seq     int
	creates int
}

func newMemoryPlans(plans ...*models.Plan) *memoryPlans {
	m := &memoryPlans{
		plans:   make(map[string]*models.Plan),
		periods: make(map[string]*models.MonthlyPeriod),
	}
	for _, p := range plans {
		m.plans[p.ID] = p
	}
	return m
}

func (m *memoryPlans) next(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memoryPlans) find(planID string, year, month int) *models.MonthlyPeriod {
	for _, p := range m.periods {
		if p.PlanID == planID && p.Year == year && p.Month == month {
			return p
		}
	}
	return nil
}

// service wires the memory store into a mockPlanService so individual tests
// can still override single operations.
func (m *memoryPlans) service() *mockPlanService {
	return &mockPlanService{
		getPlanFn: func(_ context.Context, planID string) (*models.Plan, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			p, ok := m.plans[planID]
			if !ok {
				return nil, apperrors.ErrPlanNotFound
			}
			return p, nil
		},
		getPeriodFn: func(_ context.Context, planID string, year, month int) (*models.MonthlyPeriod, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if p := m.find(planID, year, month); p != nil {
				return p.Clone(), nil
			}
			return nil, apperrors.ErrPeriodNotFound
		},
		getPeriodByIDFn: func(_ context.Context, periodID string) (*models.MonthlyPeriod, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if p, ok := m.periods[periodID]; ok {
				return p.Clone(), nil
			}
			return nil, apperrors.ErrPeriodNotFound
		},
		createPeriodFn: func(_ context.Context, planID string, year, month int, seed []models.PeriodItem) (*models.MonthlyPeriod, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.find(planID, year, month) != nil {
				return nil, apperrors.ErrPeriodConflict
			}
			m.creates++
			p := &models.MonthlyPeriod{PlanID: planID, Year: year, Month: month}
			p.ID = m.next("period")
			for _, item := range seed {
				item.ID = m.next("pi")
				item.PeriodID = p.ID
				item.ActualMinor = 0
				p.Items = append(p.Items, item)
			}
			m.periods[p.ID] = p
			return p.Clone(), nil
		},
		updatePeriodItemFn: func(_ context.Context, periodItemID string, budgeted int64) (*models.PeriodItem, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			for _, p := range m.periods {
				if pi, ok := p.ItemByID(periodItemID); ok {
					pi.BudgetedMinor = budgeted
					cp := *pi
					return &cp, nil
				}
			}
			return nil, apperrors.ErrPeriodItemNotFound
		},
		copyPeriodFn: func(_ context.Context, sourceID, planID string, year, month int) ([]models.PeriodItem, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			src, ok := m.periods[sourceID]
			if !ok {
				return nil, apperrors.ErrPeriodNotFound
			}
			dst := m.find(planID, year, month)
			if dst == nil {
				return nil, apperrors.ErrPeriodNotFound
			}
			merged, _ := dst.WithBudgetsFrom(src)
			m.periods[dst.ID] = merged
			return merged.Clone().Items, nil
		},
		listPeriodsFn: func(_ context.Context, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlyPeriod], error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			var all []models.MonthlyPeriod
			for _, p := range m.periods {
				if p.PlanID == planID {
					all = append(all, *p.Clone())
				}
			}
			sort.Slice(all, func(i, j int) bool {
				return all[j].YearMonth().Before(all[i].YearMonth())
			})
			total := int64(len(all))
			start := page.Offset()
			if start > len(all) {
				start = len(all)
			}
			end := start + page.PageSize
			if end > len(all) {
				end = len(all)
			}
			resp := pagination.NewPageResponse(all[start:end], page.Page, page.PageSize, total)
			return &resp, nil
		},
	}
}

func (m *memoryPlans) createCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates
}
