package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"mfgtrack/internal/domain"
)

const (
	EventOrderCreated    = "order.created"
	EventStatusChanged   = "order.status_changed"
	EventPaymentRecorded = "order.payment_recorded"
)

type StatusChangedEvent struct {
	OrderID     uint         `json:"order_id"`
	OrderNumber string       `json:"order_number"`
	From        domain.Stage `json:"from"`
	To          domain.Stage `json:"to"`
	Notes       string       `json:"notes"`
	ChangedAt   time.Time    `json:"changed_at"`
}

type PaymentRecordedEvent struct {
	OrderID      uint                `json:"order_id"`
	OrderNumber  string              `json:"order_number"`
	PaymentID    uint                `json:"payment_id"`
	Amount       decimal.Decimal     `json:"amount"`
	AmountDue    decimal.Decimal     `json:"amount_due"`
	PaymentState domain.PaymentState `json:"payment_state"`
	ReceivedOn   string              `json:"received_on"`
}
