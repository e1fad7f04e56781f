package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"echoplan/internal/calendar"
	apperrors "echoplan/internal/errors"
	"echoplan/internal/models"
	"echoplan/internal/services"
)

// ActualsStore serves recorded actuals as the local finance feed.
type ActualsStore struct {
	db *gorm.DB
}

var _ services.FinanceService = (*ActualsStore)(nil)

// NewActualsStore creates a new ActualsStore.
func NewActualsStore(db *gorm.DB) *ActualsStore {
	return &ActualsStore{db: db}
}

// RecordActual sets the actual spend of an item for one month, replacing any
// earlier figure.
func (s *ActualsStore) RecordActual(ctx context.Context, planID, itemID string, year, month int, actualMinor int64) error {
	if planID == "" || itemID == "" {
		return apperrors.Validationf("plan id and item id are required")
	}
	if _, err := calendar.New(year, month); err != nil {
		return err
	}
	if actualMinor < 0 {
		return apperrors.WithMessage(apperrors.ErrNegativeAmount,
			fmt.Sprintf("actual amount must not be negative, got %d", actualMinor))
	}

	row := models.ItemActual{PlanID: planID, ItemID: itemID, Year: year, Month: month, ActualMinor: actualMinor}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "plan_id"}, {Name: "item_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"actual_minor", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return nil
}

// GetActuals returns the recorded actuals per item for one month.
func (s *ActualsStore) GetActuals(ctx context.Context, planID string, year, month int) (map[string]int64, error) {
	var rows []models.ItemActual
	err := s.db.WithContext(ctx).
		Where("plan_id = ? AND year = ? AND month = ?", planID, year, month).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	actuals := make(map[string]int64, len(rows))
	for _, r := range rows {
		actuals[r.ItemID] = r.ActualMinor
	}
	return actuals, nil
}
