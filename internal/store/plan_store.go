// Package store is the local, gorm-backed stand-in for the remote Plan and
// Finance services, plus the key/value backends of the active plan selector.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"echoplan/internal/calendar"
	apperrors "echoplan/internal/errors"
	"echoplan/internal/models"
	"echoplan/internal/pagination"
	"echoplan/internal/services"
)

// PlanStore persists plans and their monthly periods.
type PlanStore struct {
	db *gorm.DB
}

var _ services.PlanService = (*PlanStore)(nil)

// NewPlanStore creates a new PlanStore.
func NewPlanStore(db *gorm.DB) *PlanStore {
	return &PlanStore{db: db}
}

// CreatePlan validates plan, computes its totals and stores it with its
// full hierarchy. New plans start as drafts unless a status is given.
func (s *PlanStore) CreatePlan(ctx context.Context, plan *models.Plan) (*models.Plan, error) {
	if plan.Status == "" {
		plan.Status = models.PlanStatusDraft
	}
	if plan.SourceType == "" {
		plan.SourceType = models.PlanSourceManual
	}
	if err := services.ValidatePlan(plan); err != nil {
		return nil, err
	}
	services.ApplyTotals(plan)
	for gi := range plan.Groups {
		g := &plan.Groups[gi]
		g.SortOrder = gi
		for ci := range g.Categories {
			c := &g.Categories[ci]
			c.SortOrder = ci
			for ii := range c.Items {
				c.Items[ii].SortOrder = ii
			}
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if plan.Status == models.PlanStatusActive {
			if err := demoteActive(tx, plan.UserID); err != nil {
				return err
			}
		}
		return tx.Create(plan).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.WithMessage(apperrors.ErrDuplicateItemID, "plan, group, category or item id already exists")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return plan, nil
}

// GetPlan returns a plan with groups, categories and items in display order.
func (s *PlanStore) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	var plan models.Plan
	err := s.db.WithContext(ctx).
		Preload("Groups", orderBySort).
		Preload("Groups.Categories", orderBySort).
		Preload("Groups.Categories.Items", orderBySort).
		Where("id = ?", planID).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrPlanNotFound, fmt.Sprintf("plan %q not found", planID))
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &plan, nil
}

// ListPlans returns the user's plans without their hierarchy, newest first.
func (s *PlanStore) ListPlans(ctx context.Context, userID string) ([]models.Plan, error) {
	var plans []models.Plan
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&plans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return plans, nil
}

// ActivatePlan marks planID active and returns the user's other active plans
// to draft in one transaction.
func (s *PlanStore) ActivatePlan(ctx context.Context, userID, planID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan models.Plan
		if err := tx.Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.WithMessage(apperrors.ErrPlanNotFound, fmt.Sprintf("plan %q not found", planID))
			}
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		if plan.Status == models.PlanStatusArchived {
			return apperrors.Validationf(fmt.Sprintf("plan %q is archived", plan.Name))
		}
		if err := demoteActive(tx, userID); err != nil {
			return err
		}
		if err := tx.Model(&plan).Update("status", models.PlanStatusActive).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		return nil
	})
}

func demoteActive(tx *gorm.DB, userID string) error {
	err := tx.Model(&models.Plan{}).
		Where("user_id = ? AND status = ?", userID, models.PlanStatusActive).
		Update("status", models.PlanStatusDraft).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return nil
}

// GetPeriod returns the period of planID for year/month.
func (s *PlanStore) GetPeriod(ctx context.Context, planID string, year, month int) (*models.MonthlyPeriod, error) {
	var period models.MonthlyPeriod
	err := s.db.WithContext(ctx).
		Preload("Items", orderBySort).
		Where("plan_id = ? AND year = ? AND month = ?", planID, year, month).
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrPeriodNotFound,
				fmt.Sprintf("no period for plan %q in %04d-%02d", planID, year, month))
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &period, nil
}

// GetPeriodByID returns a period by its identifier.
func (s *PlanStore) GetPeriodByID(ctx context.Context, periodID string) (*models.MonthlyPeriod, error) {
	return getPeriodByID(s.db.WithContext(ctx), periodID)
}

func getPeriodByID(db *gorm.DB, periodID string) (*models.MonthlyPeriod, error) {
	var period models.MonthlyPeriod
	if err := db.Preload("Items", orderBySort).Where("id = ?", periodID).First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrPeriodNotFound, fmt.Sprintf("period %q not found", periodID))
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &period, nil
}

// CreatePeriod stores a new period seeded with seedItems. Actual amounts
// always start at zero. A period that already exists for the key yields
// ErrPeriodConflict.
func (s *PlanStore) CreatePeriod(ctx context.Context, planID string, year, month int, seedItems []models.PeriodItem) (*models.MonthlyPeriod, error) {
	if _, err := calendar.New(year, month); err != nil {
		return nil, err
	}

	period := &models.MonthlyPeriod{PlanID: planID, Year: year, Month: month}
	for i, seed := range seedItems {
		if seed.BudgetedMinor < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrNegativeAmount,
				fmt.Sprintf("item %q has a negative budget", seed.ItemID))
		}
		if !seed.ItemType.Valid() {
			return nil, apperrors.Validationf(fmt.Sprintf("item %q has unknown type %q", seed.ItemID, seed.ItemType))
		}
		seed.ID = ""
		seed.PeriodID = ""
		seed.ActualMinor = 0
		seed.SortOrder = i
		period.Items = append(period.Items, seed)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Plan{}).Where("id = ?", planID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		if count == 0 {
			return apperrors.WithMessage(apperrors.ErrPlanNotFound, fmt.Sprintf("plan %q not found", planID))
		}
		if err := tx.Create(period).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.Wrap(apperrors.ErrPeriodConflict, err)
			}
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	period.WasCreated = true
	return period, nil
}

// UpdatePeriodItem sets a period item's budgeted amount.
func (s *PlanStore) UpdatePeriodItem(ctx context.Context, periodItemID string, budgetedMinor int64) (*models.PeriodItem, error) {
	if budgetedMinor < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrNegativeAmount,
			fmt.Sprintf("budgeted amount must not be negative, got %d", budgetedMinor))
	}

	var item models.PeriodItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", periodItemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.WithMessage(apperrors.ErrPeriodItemNotFound, fmt.Sprintf("period item %q not found", periodItemID))
			}
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		if !item.Editable() {
			return apperrors.WithMessage(apperrors.ErrFormulaNotEditable,
				fmt.Sprintf("item %q is computed by %q", item.ItemName, *item.Formula))
		}
		if err := tx.Model(&item).Update("budgeted_minor", budgetedMinor).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		item.BudgetedMinor = budgetedMinor
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CopyPeriod copies the budgeted amounts of the source period into the
// existing target period. Items the target does not have are skipped.
func (s *PlanStore) CopyPeriod(ctx context.Context, sourcePeriodID, targetPlanID string, targetYear, targetMonth int) ([]models.PeriodItem, error) {
	var items []models.PeriodItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		source, err := getPeriodByID(tx, sourcePeriodID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.Wrap(apperrors.ErrSourcePeriodNotFound, err)
			}
			return err
		}

		var target models.MonthlyPeriod
		err = tx.Preload("Items", orderBySort).
			Where("plan_id = ? AND year = ? AND month = ?", targetPlanID, targetYear, targetMonth).
			First(&target).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.WithMessage(apperrors.ErrPeriodNotFound,
					fmt.Sprintf("no period for plan %q in %04d-%02d", targetPlanID, targetYear, targetMonth))
			}
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}

		merged, _ := target.WithBudgetsFrom(source)
		for _, it := range merged.Items {
			if err := tx.Model(&models.PeriodItem{}).Where("id = ?", it.ID).Update("budgeted_minor", it.BudgetedMinor).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternal, err)
			}
		}
		items = merged.Items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListPeriods returns the plan's periods, newest month first.
func (s *PlanStore) ListPeriods(ctx context.Context, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlyPeriod], error) {
	if err := page.Normalize(); err != nil {
		return nil, err
	}

	base := s.db.WithContext(ctx).Model(&models.MonthlyPeriod{}).Where("plan_id = ?", planID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	var periods []models.MonthlyPeriod
	if err := base.Preload("Items", orderBySort).
		Order("year DESC").Order("month DESC").
		Scopes(pagination.Paginate(page)).
		Find(&periods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	result := pagination.NewPageResponse(periods, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func orderBySort(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// isUniqueConstraintError checks if a GORM error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
