package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"mfgtrack/internal/domain"
)

type CreateOrderRequest struct {
	OrderNumber    string           `json:"order_number"`
	ProductID      int              `json:"product_id"`
	CustomerID     int              `json:"customer_id"`
	StartDate      string           `json:"start_date"`
	DeliveryDate   string           `json:"delivery_date"`
	Status         string           `json:"status"`
	Amount         *decimal.Decimal `json:"amount"`
	AmountReceived *decimal.Decimal `json:"amount_received"`
	Notes          string           `json:"notes"`
}

// UpdateOrderRequest is a partial update: nil fields are left unchanged.
type UpdateOrderRequest struct {
	ProductID      *int             `json:"product_id"`
	CustomerID     *int             `json:"customer_id"`
	StartDate      *string          `json:"start_date"`
	DeliveryDate   *string          `json:"delivery_date"`
	Status         *string          `json:"status"`
	StatusNotes    string           `json:"status_notes"`
	Amount         *decimal.Decimal `json:"amount"`
	AmountReceived *decimal.Decimal `json:"amount_received"`
	Notes          *string          `json:"notes"`
}

type StatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type AdvanceRequest struct {
	Notes string `json:"notes"`
}

type PaymentRequest struct {
	Amount     *decimal.Decimal `json:"amount"`
	ReceivedOn string           `json:"received_on"`
	Reference  string           `json:"reference"`
	Notes      string           `json:"notes"`
}

type OrderResponse struct {
	ID                 uint                `json:"id"`
	OrderNumber        string              `json:"order_number"`
	ProductID          int                 `json:"product_id"`
	ProductName        string              `json:"product_name"`
	CustomerID         int                 `json:"customer_id"`
	CustomerName       string              `json:"customer_name"`
	FamilyName         string              `json:"family_name,omitempty"`
	StartDate          string              `json:"start_date"`
	DeliveryDate       string              `json:"delivery_date"`
	ActualDeliveryDate *string             `json:"actual_delivery_date"`
	Status             domain.Stage        `json:"status"`
	StageIndex         int                 `json:"stage_index"`
	Amount             decimal.Decimal     `json:"amount"`
	AmountReceived     decimal.Decimal     `json:"amount_received"`
	AmountDue          decimal.Decimal     `json:"amount_due"`
	PaymentState       domain.PaymentState `json:"payment_state"`
	IsDelayed          bool                `json:"is_delayed"`
	DaysOverdue        int                 `json:"days_overdue"`
	Notes              string              `json:"notes"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func NewOrderResponse(o domain.Order, now time.Time) OrderResponse {
	resp := OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		ProductID:      o.ProductID,
		ProductName:    o.ProductName,
		CustomerID:     o.CustomerID,
		CustomerName:   o.CustomerName,
		FamilyName:     o.FamilyName,
		StartDate:      o.StartDate.Format(domain.DateLayout),
		DeliveryDate:   o.DeliveryDate.Format(domain.DateLayout),
		Status:         o.Status,
		StageIndex:     o.Status.Index(),
		Amount:         o.Amount,
		AmountReceived: o.AmountReceived,
		AmountDue:      o.AmountDue(),
		PaymentState:   o.PaymentState(),
		IsDelayed:      o.IsDelayed(now),
		DaysOverdue:    o.DaysOverdue(now),
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.ActualDeliveryDate != nil {
		s := o.ActualDeliveryDate.Format(domain.DateLayout)
		resp.ActualDeliveryDate = &s
	}
	return resp
}

func NewOrderResponses(orders []domain.Order, now time.Time) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o, now))
	}
	return out
}

type OrderListResponse struct {
	Orders      []OrderResponse `json:"orders"`
	Total       int             `json:"total"`
	Pages       int             `json:"pages"`
	CurrentPage int             `json:"current_page"`
}

// OrderExport is the unpaged result of a filtered listing. GeneratedAt is
// the instant the delayed flags were computed for.
type OrderExport struct {
	Orders      []OrderResponse
	GeneratedAt time.Time
}

type HistoryResponse struct {
	ID        uint      `json:"id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Notes     string    `json:"notes"`
	ChangedAt time.Time `json:"changed_at"`
}

func NewHistoryResponses(entries []domain.StatusHistoryEntry) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryResponse{
			ID:        e.ID,
			OldStatus: e.OldStatus,
			NewStatus: e.NewStatus,
			Notes:     e.Notes,
			ChangedAt: e.ChangedAt,
		})
	}
	return out
}

type PaymentResponse struct {
	ID         uint            `json:"id"`
	OrderID    uint            `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	ReceivedOn string          `json:"received_on"`
	Reference  string          `json:"reference"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
}

func NewPaymentResponses(payments []domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, NewPaymentResponse(p))
	}
	return out
}

func NewPaymentResponse(p domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		OrderID:    p.OrderID,
		Amount:     p.Amount,
		ReceivedOn: p.ReceivedOn.Format(domain.DateLayout),
		Reference:  p.Reference,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
	}
}

type OrderDetailResponse struct {
	OrderResponse
	Product       ProductResponse    `json:"product"`
	Customer      CustomerResponse   `json:"customer"`
	StatusHistory []HistoryResponse  `json:"status_history"`
	Payments      []PaymentResponse  `json:"payments"`
	Progress      []domain.StageStep `json:"progress"`
}

type PaymentResultResponse struct {
	Payment PaymentResponse `json:"payment"`
	Order   OrderResponse   `json:"order"`
}

type StageInfo struct {
	Name      domain.Stage `json:"name"`
	Slug      string       `json:"slug"`
	Index     int          `json:"index"`
	Completed bool         `json:"completed"`
}

func NewStageInfos() []StageInfo {
	stages := domain.Stages()
	out := make([]StageInfo, 0, len(stages))
	for i, s := range stages {
		out = append(out, StageInfo{Name: s, Slug: s.Slug(), Index: i, Completed: s.IsCompleted()})
	}
	return out
}
