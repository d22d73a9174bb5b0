package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mfgtrack/internal/commons"
	"mfgtrack/internal/dashboard/service"
	"mfgtrack/internal/dto"
	apperrors "mfgtrack/internal/errors"
)

type DashboardService interface {
	KPIs(ctx context.Context, days int) (*dto.KPIResponse, error)
	SalesTrends(ctx context.Context, period string, months int) (*dto.SalesTrendsResponse, error)
	StatusDistribution(ctx context.Context) ([]dto.StatusCount, error)
	FamilyPerformance(ctx context.Context) ([]dto.FamilyPerformance, error)
	TopCustomers(ctx context.Context, limit int) ([]dto.TopCustomer, error)
	DeliveryPerformance(ctx context.Context) (*dto.DeliveryPerformance, error)
	DelayedOrders(ctx context.Context, limit int) ([]dto.OrderResponse, error)
}

type DashboardController struct {
	service DashboardService
	logger  *zap.Logger
}

func NewDashboardController(service DashboardService, logger *zap.Logger) *DashboardController {
	return &DashboardController{service: service, logger: logger}
}

func (c *DashboardController) Routes(r chi.Router) {
	r.Get("/kpis", c.KPIs)
	r.Get("/sales-trends", c.SalesTrends)
	r.Get("/order-status-distribution", c.StatusDistribution)
	r.Get("/product-family-performance", c.FamilyPerformance)
	r.Get("/top-customers", c.TopCustomers)
	r.Get("/delivery-performance", c.DeliveryPerformance)
	r.Get("/delayed-orders", c.DelayedOrders)
}

func (c *DashboardController) KPIs(w http.ResponseWriter, r *http.Request) {
	days, err := commons.QueryInt(r, "days", 30, 1)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.service.KPIs(r.Context(), days)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *DashboardController) SalesTrends(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	switch period {
	case "":
		period = service.PeriodMonthly
	case service.PeriodMonthly, service.PeriodQuarterly:
	default:
		commons.WriteError(w, r, c.logger, apperrors.NewValidationError("invalid period", apperrors.ValidationDetail{
			Field:   "period",
			Message: "period must be monthly or quarterly",
		}))
		return
	}

	months, err := commons.QueryInt(r, "months", 12, 1)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.service.SalesTrends(r.Context(), period, months)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *DashboardController) StatusDistribution(w http.ResponseWriter, r *http.Request) {
	resp, err := c.service.StatusDistribution(r.Context())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *DashboardController) FamilyPerformance(w http.ResponseWriter, r *http.Request) {
	resp, err := c.service.FamilyPerformance(r.Context())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *DashboardController) TopCustomers(w http.ResponseWriter, r *http.Request) {
	limit, err := commons.QueryInt(r, "limit", 10, 1)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.service.TopCustomers(r.Context(), limit)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *DashboardController) DeliveryPerformance(w http.ResponseWriter, r *http.Request) {
	resp, err := c.service.DeliveryPerformance(r.Context())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *DashboardController) DelayedOrders(w http.ResponseWriter, r *http.Request) {
	limit, err := commons.QueryInt(r, "limit", 10, 1)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.service.DelayedOrders(r.Context(), limit)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}
