package domain

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "mfgtrack/internal/errors"
)

type Payment struct {
	ID         uint
	OrderID    uint
	Amount     decimal.Decimal
	ReceivedOn time.Time
	Reference  string
	Notes      string
	CreatedAt  time.Time
}

type StatusHistoryEntry struct {
	ID        uint
	OrderID   uint
	OldStatus string
	NewStatus string
	Notes     string
	ChangedAt time.Time
}

// ValidatePayment rejects non-positive amounts and amounts above what is
// still due on the order.
func ValidatePayment(order Order, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.NewValidationError("payment amount must be greater than zero", apperrors.ValidationDetail{
			Field:   "amount",
			Message: "amount must be greater than zero",
		})
	}

	due := order.AmountDue()
	if amount.GreaterThan(due) {
		msg := "payment exceeds the amount due of " + due.StringFixed(2)
		if !due.IsPositive() {
			msg = "order is already fully paid"
		}
		return apperrors.NewValidationError(msg, apperrors.ValidationDetail{
			Field:   "amount",
			Message: msg,
		})
	}

	return nil
}
