package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID            int
	Name          string
	Company       string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	IsActive      bool
	CreatedAt     time.Time
}

type CustomerStats struct {
	TotalOrders   int
	TotalAmount   decimal.Decimal
	PendingAmount decimal.Decimal
}

// SummarizeCustomerOrders totals the orders of one customer. Pending amount
// only counts positive dues.
func SummarizeCustomerOrders(orders []Order) CustomerStats {
	stats := CustomerStats{TotalOrders: len(orders)}
	for _, o := range orders {
		stats.TotalAmount = stats.TotalAmount.Add(o.Amount)
		if due := o.AmountDue(); due.IsPositive() {
			stats.PendingAmount = stats.PendingAmount.Add(due)
		}
	}
	return stats
}
