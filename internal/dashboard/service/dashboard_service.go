package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
)

const (
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
)

// OrderLister returns every order matching the filter, unpaged.
type OrderLister interface {
	ListAll(ctx context.Context, f dto.OrderFilter, today time.Time) ([]domain.Order, error)
}

// DashboardService computes the aggregates in Go so the same code serves
// both SQL dialects.
type DashboardService struct {
	orders OrderLister
	logger *zap.Logger
	now    func() time.Time
}

func NewDashboardService(orders OrderLister, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		orders: orders,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *DashboardService) load(ctx context.Context, f dto.OrderFilter) ([]domain.Order, time.Time, error) {
	now := s.now()
	orders, err := s.orders.ListAll(ctx, f, now)
	if err != nil {
		s.logger.Error("failed to load orders for dashboard", zap.Error(err))
		return nil, now, err
	}
	return orders, now, nil
}

func (s *DashboardService) KPIs(ctx context.Context, days int) (*dto.KPIResponse, error) {
	orders, now, err := s.load(ctx, dto.OrderFilter{})
	if err != nil {
		return nil, err
	}

	since := now.AddDate(0, 0, -days)
	resp := dto.KPIResponse{
		PeriodDays:        days,
		TotalOrders:       len(orders),
		TotalRevenue:      decimal.Zero,
		PeriodRevenue:     decimal.Zero,
		OutstandingAmount: decimal.Zero,
		AmountReceived:    decimal.Zero,
	}

	onTime := 0
	for _, o := range orders {
		completed := o.Status.IsCompleted()
		inPeriod := !o.CreatedAt.Before(since)

		if completed {
			resp.CompletedOrders++
			resp.TotalRevenue = resp.TotalRevenue.Add(o.Amount)
			if deliveredOnTime(o) {
				onTime++
			}
		} else {
			resp.PendingOrders++
		}
		if o.IsDelayed(now) {
			resp.DelayedOrders++
		}
		if inPeriod {
			resp.PeriodOrders++
			if completed {
				resp.PeriodCompleted++
				resp.PeriodRevenue = resp.PeriodRevenue.Add(o.Amount)
			}
		}
		if due := o.AmountDue(); due.IsPositive() {
			resp.OutstandingAmount = resp.OutstandingAmount.Add(due)
		}
		resp.AmountReceived = resp.AmountReceived.Add(o.AmountReceived)
	}

	resp.CompletionRate = percent(resp.CompletedOrders, resp.TotalOrders)
	resp.DelayRate = percent(resp.DelayedOrders, resp.TotalOrders)
	resp.OnTimeDeliveryRate = percent(onTime, resp.CompletedOrders)
	return &resp, nil
}

// SalesTrends buckets orders by start date. Only orders starting within the
// last months calendar months, the current one included, are counted.
func (s *DashboardService) SalesTrends(ctx context.Context, period string, months int) (*dto.SalesTrendsResponse, error) {
	orders, now, err := s.load(ctx, dto.OrderFilter{})
	if err != nil {
		return nil, err
	}

	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	byKey := make(map[string]*dto.TrendPoint)
	for _, o := range orders {
		if o.StartDate.Before(from) {
			continue
		}
		key := periodKey(o.StartDate, period)
		p, ok := byKey[key]
		if !ok {
			p = &dto.TrendPoint{Period: key, Revenue: decimal.Zero}
			byKey[key] = p
		}
		p.Orders++
		p.Revenue = p.Revenue.Add(o.Amount)
	}

	trends := make([]dto.TrendPoint, 0, len(byKey))
	for _, p := range byKey {
		trends = append(trends, *p)
	}
	// Both key formats sort chronologically as strings.
	sort.Slice(trends, func(i, j int) bool { return trends[i].Period < trends[j].Period })

	return &dto.SalesTrendsResponse{Period: period, Trends: trends}, nil
}

func periodKey(t time.Time, period string) string {
	if period == PeriodQuarterly {
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	}
	return t.Format("2006-01")
}

func (s *DashboardService) StatusDistribution(ctx context.Context) ([]dto.StatusCount, error) {
	orders, _, err := s.load(ctx, dto.OrderFilter{})
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Stage]int)
	for _, o := range orders {
		counts[o.Status]++
	}

	stages := domain.Stages()
	out := make([]dto.StatusCount, 0, len(stages))
	for _, st := range stages {
		out = append(out, dto.StatusCount{
			Status:     st,
			Count:      counts[st],
			Percentage: percent(counts[st], len(orders)),
		})
	}
	return out, nil
}

// FamilyPerformance skips orders whose product has no family.
func (s *DashboardService) FamilyPerformance(ctx context.Context) ([]dto.FamilyPerformance, error) {
	orders, _, err := s.load(ctx, dto.OrderFilter{})
	if err != nil {
		return nil, err
	}

	byFamily := make(map[string]*dto.FamilyPerformance)
	for _, o := range orders {
		if o.FamilyName == "" {
			continue
		}
		p, ok := byFamily[o.FamilyName]
		if !ok {
			p = &dto.FamilyPerformance{Family: o.FamilyName, Revenue: decimal.Zero}
			byFamily[o.FamilyName] = p
		}
		p.Orders++
		p.Revenue = p.Revenue.Add(o.Amount)
	}

	out := make([]dto.FamilyPerformance, 0, len(byFamily))
	for _, p := range byFamily {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Family < out[j].Family
	})
	return out, nil
}

func (s *DashboardService) TopCustomers(ctx context.Context, limit int) ([]dto.TopCustomer, error) {
	orders, _, err := s.load(ctx, dto.OrderFilter{})
	if err != nil {
		return nil, err
	}

	byCustomer := make(map[int]*dto.TopCustomer)
	for _, o := range orders {
		c, ok := byCustomer[o.CustomerID]
		if !ok {
			c = &dto.TopCustomer{
				CustomerID:   o.CustomerID,
				CustomerName: o.CustomerName,
				Revenue:      decimal.Zero,
				Outstanding:  decimal.Zero,
			}
			byCustomer[o.CustomerID] = c
		}
		c.Orders++
		c.Revenue = c.Revenue.Add(o.Amount)
		if due := o.AmountDue(); due.IsPositive() {
			c.Outstanding = c.Outstanding.Add(due)
		}
	}

	out := make([]dto.TopCustomer, 0, len(byCustomer))
	for _, c := range byCustomer {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeliveryPerformance only looks at completed orders that carry an actual
// delivery date. AverageDelay is the mean lateness of the late ones.
func (s *DashboardService) DeliveryPerformance(ctx context.Context) (*dto.DeliveryPerformance, error) {
	orders, _, err := s.load(ctx, dto.OrderFilter{})
	if err != nil {
		return nil, err
	}

	var resp dto.DeliveryPerformance
	lateDays := 0
	for _, o := range orders {
		if !o.Status.IsCompleted() || o.ActualDeliveryDate == nil {
			continue
		}
		resp.Total++
		actual, promised := domain.Day(*o.ActualDeliveryDate), domain.Day(o.DeliveryDate)
		switch {
		case actual.Before(promised):
			resp.Early++
		case actual.Equal(promised):
			resp.OnTime++
		default:
			resp.Late++
			lateDays += int(actual.Sub(promised).Hours() / 24)
		}
	}

	resp.OnTimePercent = percent(resp.Early+resp.OnTime, resp.Total)
	if resp.Late > 0 {
		resp.AverageDelay = round2(float64(lateDays) / float64(resp.Late))
	}
	return &resp, nil
}

// DelayedOrders lists the most overdue orders first.
func (s *DashboardService) DelayedOrders(ctx context.Context, limit int) ([]dto.OrderResponse, error) {
	delayed := true
	orders, now, err := s.load(ctx, dto.OrderFilter{IsDelayed: &delayed, SortBy: "delivery_date"})
	if err != nil {
		return nil, err
	}
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return dto.NewOrderResponses(orders, now), nil
}

func deliveredOnTime(o domain.Order) bool {
	if o.ActualDeliveryDate == nil {
		return false
	}
	return !domain.Day(*o.ActualDeliveryDate).After(domain.Day(o.DeliveryDate))
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
