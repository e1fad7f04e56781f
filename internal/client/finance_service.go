package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	apperrors "echoplan/internal/errors"
	"echoplan/internal/services"
)

// FinanceServiceClient fetches aggregated actuals from the Finance Service.
type FinanceServiceClient struct {
	base
}

var _ services.FinanceService = (*FinanceServiceClient)(nil)

// NewFinanceServiceClient creates a new Finance Service client.
func NewFinanceServiceClient(baseURL, apiKey string, httpClient *http.Client) *FinanceServiceClient {
	return &FinanceServiceClient{base: newBase(baseURL, apiKey, httpClient)}
}

// GetActuals returns the actual spend per item ID for one month.
func (c *FinanceServiceClient) GetActuals(ctx context.Context, planID string, year, month int) (map[string]int64, error) {
	q := url.Values{}
	q.Set("year", fmt.Sprint(year))
	q.Set("month", fmt.Sprint(month))
	path := "/api/v1/plans/" + url.PathEscape(planID) + "/actuals?" + q.Encode()

	var result struct {
		Actuals map[string]int64 `json:"actuals"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result, apperrors.ErrPlanNotFound); err != nil {
		return nil, err
	}
	if result.Actuals == nil {
		result.Actuals = map[string]int64{}
	}
	return result.Actuals, nil
}
