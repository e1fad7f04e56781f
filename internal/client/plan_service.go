package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apperrors "echoplan/internal/errors"
	"echoplan/internal/models"
	"echoplan/internal/pagination"
	"echoplan/internal/services"
)

// PlanServiceClient talks to the remote Plan Service.
type PlanServiceClient struct {
	base
}

var _ services.PlanService = (*PlanServiceClient)(nil)

// NewPlanServiceClient creates a new Plan Service client.
func NewPlanServiceClient(baseURL, apiKey string, httpClient *http.Client) *PlanServiceClient {
	return &PlanServiceClient{base: newBase(baseURL, apiKey, httpClient)}
}

// CreatePeriodRequest is the body of a period creation.
type CreatePeriodRequest struct {
	Year  int                 `json:"year"`
	Month int                 `json:"month"`
	Items []models.PeriodItem `json:"items"`
}

// UpdatePeriodItemRequest is the body of a period item update.
type UpdatePeriodItemRequest struct {
	BudgetedMinor int64 `json:"budgeted_minor"`
}

// CopyPeriodRequest is the body of a period copy.
type CopyPeriodRequest struct {
	TargetPlanID string `json:"target_plan_id"`
	TargetYear   int    `json:"target_year"`
	TargetMonth  int    `json:"target_month"`
}

// GetPlan fetches a plan with its full hierarchy.
func (c *PlanServiceClient) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	var result struct {
		Plan models.Plan `json:"plan"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/plans/"+url.PathEscape(planID), nil, &result, apperrors.ErrPlanNotFound); err != nil {
		return nil, err
	}
	return &result.Plan, nil
}

// GetPeriod fetches the period of planID for year/month.
func (c *PlanServiceClient) GetPeriod(ctx context.Context, planID string, year, month int) (*models.MonthlyPeriod, error) {
	path := fmt.Sprintf("/api/v1/plans/%s/periods/%04d/%02d", url.PathEscape(planID), year, month)
	return c.period(ctx, http.MethodGet, path, nil)
}

// GetPeriodByID fetches a period by its identifier.
func (c *PlanServiceClient) GetPeriodByID(ctx context.Context, periodID string) (*models.MonthlyPeriod, error) {
	return c.period(ctx, http.MethodGet, "/api/v1/periods/"+url.PathEscape(periodID), nil)
}

// CreatePeriod creates a period seeded with seedItems. The service answers
// 409 when the period already exists.
func (c *PlanServiceClient) CreatePeriod(ctx context.Context, planID string, year, month int, seedItems []models.PeriodItem) (*models.MonthlyPeriod, error) {
	body := CreatePeriodRequest{Year: year, Month: month, Items: seedItems}
	return c.period(ctx, http.MethodPost, "/api/v1/plans/"+url.PathEscape(planID)+"/periods", body)
}

func (c *PlanServiceClient) period(ctx context.Context, method, path string, body any) (*models.MonthlyPeriod, error) {
	var result struct {
		Period models.MonthlyPeriod `json:"period"`
	}
	if err := c.do(ctx, method, path, body, &result, apperrors.ErrPeriodNotFound); err != nil {
		return nil, err
	}
	return &result.Period, nil
}

// UpdatePeriodItem sets the budgeted amount of a period item.
func (c *PlanServiceClient) UpdatePeriodItem(ctx context.Context, periodItemID string, budgetedMinor int64) (*models.PeriodItem, error) {
	var result struct {
		Item models.PeriodItem `json:"item"`
	}
	body := UpdatePeriodItemRequest{BudgetedMinor: budgetedMinor}
	if err := c.do(ctx, http.MethodPatch, "/api/v1/period-items/"+url.PathEscape(periodItemID), body, &result, apperrors.ErrPeriodItemNotFound); err != nil {
		return nil, err
	}
	return &result.Item, nil
}

// CopyPeriod copies the budgeted amounts of a source period into the target month.
func (c *PlanServiceClient) CopyPeriod(ctx context.Context, sourcePeriodID, targetPlanID string, targetYear, targetMonth int) ([]models.PeriodItem, error) {
	var result struct {
		Items []models.PeriodItem `json:"items"`
	}
	body := CopyPeriodRequest{TargetPlanID: targetPlanID, TargetYear: targetYear, TargetMonth: targetMonth}
	if err := c.do(ctx, http.MethodPost, "/api/v1/periods/"+url.PathEscape(sourcePeriodID)+"/copy", body, &result, apperrors.ErrSourcePeriodNotFound); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// ListPeriods returns one page of the plan's periods.
func (c *PlanServiceClient) ListPeriods(ctx context.Context, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlyPeriod], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page.Page))
	q.Set("page_size", strconv.Itoa(page.PageSize))
	path := "/api/v1/plans/" + url.PathEscape(planID) + "/periods?" + q.Encode()

	var result pagination.PageResponse[models.MonthlyPeriod]
	if err := c.do(ctx, http.MethodGet, path, nil, &result, apperrors.ErrPlanNotFound); err != nil {
		return nil, err
	}
	return &result, nil
}
