package dto

import (
	"github.com/shopspring/decimal"

	"mfgtrack/internal/domain"
)

type KPIResponse struct {
	PeriodDays         int             `json:"period_days"`
	TotalOrders        int             `json:"total_orders"`
	CompletedOrders    int             `json:"completed_orders"`
	PendingOrders      int             `json:"pending_orders"`
	DelayedOrders      int             `json:"delayed_orders"`
	PeriodOrders       int             `json:"period_orders"`
	PeriodCompleted    int             `json:"period_completed"`
	CompletionRate     float64         `json:"completion_rate"`
	DelayRate          float64         `json:"delay_rate"`
	OnTimeDeliveryRate float64         `json:"on_time_delivery_rate"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	PeriodRevenue      decimal.Decimal `json:"period_revenue"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount"`
	AmountReceived     decimal.Decimal `json:"amount_received"`
}

type TrendPoint struct {
	Period  string          `json:"period"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type StatusCount struct {
	Status     domain.Stage `json:"status"`
	Count      int          `json:"count"`
	Percentage float64      `json:"percentage"`
}

type FamilyPerformance struct {
	Family  string          `json:"family"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopCustomer struct {
	CustomerID   int             `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Orders       int             `json:"orders"`
	Revenue      decimal.Decimal `json:"revenue"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

type DeliveryPerformance struct {
	Total         int     `json:"total"`
	Early         int     `json:"early"`
	OnTime        int     `json:"on_time"`
	Late          int     `json:"late"`
	OnTimePercent float64 `json:"on_time_percentage"`
	AverageDelay  float64 `json:"average_delay_days"`
}

type SalesTrendsResponse struct {
	Period string       `json:"period"`
	Trends []TrendPoint `json:"trends"`
}
