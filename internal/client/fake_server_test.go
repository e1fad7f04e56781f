package client

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"echoplan/internal/models"
	"echoplan/internal/pagination"
)

// fakeRemote is an in-memory Plan and Finance Service served through gin.
type fakeRemote struct {
	plans   map[string]models.Plan
	periods map[string]models.MonthlyPeriod
	actuals map[string]int64
	seq     int
	apiKey  string
}

func newFakeRemote(t *testing.T) (*fakeRemote, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fakeRemote{
		plans:   map[string]models.Plan{},
		periods: map[string]models.MonthlyPeriod{},
		actuals: map[string]int64{},
		apiKey:  "test-key",
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-API-Key") != f.apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "bad key"))
			return
		}
		c.Next()
	})

	v1 := r.Group("/api/v1")
	v1.GET("/plans/:id", f.getPlan)
	v1.GET("/plans/:id/periods/:year/:month", f.getPeriod)
	v1.GET("/plans/:id/periods", f.listPeriods)
	v1.POST("/plans/:id/periods", f.createPeriod)
	v1.GET("/plans/:id/actuals", f.getActuals)
	v1.GET("/periods/:id", f.getPeriodByID)
	v1.POST("/periods/:id/copy", f.copyPeriod)
	v1.PATCH("/period-items/:id", f.updateItem)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return f, server
}

func errorJSON(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}

func (f *fakeRemote) find(planID string, year, month int) (models.MonthlyPeriod, bool) {
	for _, p := range f.periods {
		if p.PlanID == planID && p.Year == year && p.Month == month {
			return p, true
		}
	}
	return models.MonthlyPeriod{}, false
}

func (f *fakeRemote) getPlan(c *gin.Context) {
	p, ok := f.plans[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, errorJSON("PLAN_NOT_FOUND", "plan not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": p})
}

func (f *fakeRemote) getPeriod(c *gin.Context) {
	year, _ := strconv.Atoi(c.Param("year"))
	month, _ := strconv.Atoi(c.Param("month"))
	p, ok := f.find(c.Param("id"), year, month)
	if !ok {
		c.JSON(http.StatusNotFound, errorJSON("PERIOD_NOT_FOUND", "no period for this month"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": p})
}

func (f *fakeRemote) getPeriodByID(c *gin.Context) {
	p, ok := f.periods[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, errorJSON("PERIOD_NOT_FOUND", "period not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": p})
}

func (f *fakeRemote) createPeriod(c *gin.Context) {
	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("VALIDATION_ERROR", err.Error()))
		return
	}
	if req.Month < 1 || req.Month > 12 {
		c.JSON(http.StatusUnprocessableEntity, errorJSON("VALIDATION_ERROR", "month out of range"))
		return
	}
	if _, exists := f.find(c.Param("id"), req.Year, req.Month); exists {
		c.JSON(http.StatusConflict, errorJSON("CONFLICT", "period exists"))
		return
	}
	f.seq++
	p := models.MonthlyPeriod{PlanID: c.Param("id"), Year: req.Year, Month: req.Month}
	p.ID = "period-" + strconv.Itoa(f.seq)
	for i, it := range req.Items {
		it.ID = p.ID + "-item-" + strconv.Itoa(i)
		it.PeriodID = p.ID
		p.Items = append(p.Items, it)
	}
	f.periods[p.ID] = p
	c.JSON(http.StatusCreated, gin.H{"period": p})
}

func (f *fakeRemote) listPeriods(c *gin.Context) {
	var out []models.MonthlyPeriod
	for _, p := range f.periods {
		if p.PlanID == c.Param("id") {
			out = append(out, p)
		}
	}
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	c.JSON(http.StatusOK, pagination.NewPageResponse(out, page, size, int64(len(out))))
}

func (f *fakeRemote) updateItem(c *gin.Context) {
	var req UpdatePeriodItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("VALIDATION_ERROR", err.Error()))
		return
	}
	for id, p := range f.periods {
		for i := range p.Items {
			if p.Items[i].ID == c.Param("id") {
				p.Items[i].BudgetedMinor = req.BudgetedMinor
				f.periods[id] = p
				c.JSON(http.StatusOK, gin.H{"item": p.Items[i]})
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, errorJSON("PERIOD_ITEM_NOT_FOUND", "no such item"))
}

func (f *fakeRemote) copyPeriod(c *gin.Context) {
	var req CopyPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("VALIDATION_ERROR", err.Error()))
		return
	}
	src, ok := f.periods[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, errorJSON("PERIOD_NOT_FOUND", "source period not found"))
		return
	}
	dst, ok := f.find(req.TargetPlanID, req.TargetYear, req.TargetMonth)
	if !ok {
		c.JSON(http.StatusNotFound, errorJSON("PERIOD_NOT_FOUND", "target period not found"))
		return
	}
	merged, _ := dst.WithBudgetsFrom(&src)
	f.periods[dst.ID] = *merged
	c.JSON(http.StatusOK, gin.H{"items": merged.Items})
}

func (f *fakeRemote) getActuals(c *gin.Context) {
	if c.Query("year") == "" || c.Query("month") == "" {
		c.JSON(http.StatusBadRequest, errorJSON("VALIDATION_ERROR", "year and month are required"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"actuals": f.actuals})
}
