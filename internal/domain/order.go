package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID                 uint
	OrderNumber        string
	ProductID          int
	CustomerID         int
	StartDate          time.Time
	DeliveryDate       time.Time
	ActualDeliveryDate *time.Time
	Status             Stage
	Amount             decimal.Decimal
	AmountReceived     decimal.Decimal
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined for listings; empty when the order was loaded on its own.
	ProductName  string
	CustomerName string
	FamilyName   string
}

type PaymentState string

const (
	PaymentUnpaid  PaymentState = "unpaid"
	PaymentPartial PaymentState = "partial"
	PaymentPaid    PaymentState = "paid"
)

const OrderNumberPrefix = "EM"

// AmountDue is not clamped: an overpaid order reports a negative due.
func (o Order) AmountDue() decimal.Decimal {
	return o.Amount.Sub(o.AmountReceived)
}

func (o Order) PaymentState() PaymentState {
	switch {
	case !o.AmountDue().IsPositive():
		return PaymentPaid
	case o.AmountReceived.IsPositive():
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

// IsDelayed compares calendar days in UTC, so an order due today is not late.
func (o Order) IsDelayed(now time.Time) bool {
	if o.Status.IsCompleted() || o.DeliveryDate.IsZero() {
		return false
	}
	return Day(now).After(Day(o.DeliveryDate))
}

// DaysOverdue is zero for orders that are not delayed.
func (o Order) DaysOverdue(now time.Time) int {
	if !o.IsDelayed(now) {
		return 0
	}
	return int(Day(now).Sub(Day(o.DeliveryDate)).Hours() / 24)
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// GenerateOrderNumber returns EM-YYYYMMDD-NNN where NNN follows last, the
// highest number already issued for that day.
func GenerateOrderNumber(day time.Time, last string) string {
	prefix := OrderNumberDayPrefix(day)
	next := 1
	if strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil && n > 0 {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, next)
}

func OrderNumberDayPrefix(day time.Time) string {
	return fmt.Sprintf("%s-%s-", OrderNumberPrefix, day.UTC().Format("20060102"))
}
