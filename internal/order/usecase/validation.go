package usecase

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	apperrors "mfgtrack/internal/errors"
)

const maxOrderNumberLength = 30

// orderFromCreateRequest checks every field and reports all problems at once.
func orderFromCreateRequest(req dto.CreateOrderRequest, now time.Time) (domain.Order, error) {
	var details []apperrors.ValidationDetail
	add := func(field, msg string) {
		details = append(details, apperrors.ValidationDetail{Field: field, Message: msg})
	}

	o := domain.Order{
		OrderNumber: strings.TrimSpace(req.OrderNumber),
		ProductID:   req.ProductID,
		CustomerID:  req.CustomerID,
		Status:      domain.FirstStage(),
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if len(o.OrderNumber) > maxOrderNumberLength {
		add("order_number", "order_number must be at most 30 characters")
	}
	if req.ProductID <= 0 {
		add("product_id", "product_id is required")
	}
	if req.CustomerID <= 0 {
		add("customer_id", "customer_id is required")
	}

	var datesOK bool
	o.StartDate, datesOK = requiredDate(req.StartDate, "start_date", add)
	var ok bool
	o.DeliveryDate, ok = requiredDate(req.DeliveryDate, "delivery_date", add)
	datesOK = datesOK && ok

	if req.Amount == nil {
		add("amount", "amount is required")
	} else {
		o.Amount = req.Amount.Round(2)
	}
	if req.AmountReceived != nil {
		o.AmountReceived = req.AmountReceived.Round(2)
	}

	if s := strings.TrimSpace(req.Status); s != "" {
		st, err := domain.ParseStage(s)
		if err != nil {
			add("status", err.Error())
		}
		o.Status = st
	}

	details = append(details, checkOrder(o, datesOK, req.Amount != nil)...)

	if len(details) > 0 {
		return domain.Order{}, apperrors.NewValidationError("validation failed", details...)
	}

	if o.Status == domain.StageDispatch {
		today := domain.Day(now)
		o.ActualDeliveryDate = &today
	}
	return o, nil
}

// applyUpdate copies the set fields of req onto o and re-checks the result.
func applyUpdate(o *domain.Order, req dto.UpdateOrderRequest, now time.Time) error {
	var details []apperrors.ValidationDetail
	add := func(field, msg string) {
		details = append(details, apperrors.ValidationDetail{Field: field, Message: msg})
	}

	if req.ProductID != nil {
		if *req.ProductID <= 0 {
			add("product_id", "product_id must be a positive integer")
		}
		o.ProductID = *req.ProductID
	}
	if req.CustomerID != nil {
		if *req.CustomerID <= 0 {
			add("customer_id", "customer_id must be a positive integer")
		}
		o.CustomerID = *req.CustomerID
	}

	datesOK := true
	if req.StartDate != nil {
		var ok bool
		o.StartDate, ok = requiredDate(*req.StartDate, "start_date", add)
		datesOK = datesOK && ok
	}
	if req.DeliveryDate != nil {
		var ok bool
		o.DeliveryDate, ok = requiredDate(*req.DeliveryDate, "delivery_date", add)
		datesOK = datesOK && ok
	}

	if req.Status != nil {
		st, err := domain.ParseStage(*req.Status)
		if err != nil {
			add("status", err.Error())
		} else {
			enterStage(o, st, now)
		}
	}

	if req.Amount != nil {
		o.Amount = req.Amount.Round(2)
	}
	if req.AmountReceived != nil {
		o.AmountReceived = req.AmountReceived.Round(2)
	}
	if req.Notes != nil {
		o.Notes = strings.TrimSpace(*req.Notes)
	}

	details = append(details, checkOrder(*o, datesOK, true)...)
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	o.UpdatedAt = now
	return nil
}

// checkOrder holds the rules shared by create and update. Date ordering is
// only checked when both dates parsed, amounts only when an amount is known.
func checkOrder(o domain.Order, datesOK, amountKnown bool) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail

	if datesOK && o.DeliveryDate.Before(o.StartDate) {
		details = append(details, apperrors.ValidationDetail{Field: "delivery_date", Message: "delivery_date must not be before start_date"})
	}
	if !amountKnown {
		return details
	}
	if !o.Amount.IsPositive() {
		details = append(details, apperrors.ValidationDetail{Field: "amount", Message: "amount must be greater than zero"})
	}
	if o.AmountReceived.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "amount_received", Message: "amount_received must not be negative"})
	} else if o.AmountReceived.GreaterThan(o.Amount) && o.Amount.IsPositive() {
		details = append(details, apperrors.ValidationDetail{Field: "amount_received", Message: "amount_received must not exceed amount"})
	}
	return details
}

func requiredDate(raw, field string, add func(field, msg string)) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		add(field, field+" is required")
		return time.Time{}, false
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		add(field, field+" must be a date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return d, true
}

// enterStage moves o to st. Reaching Dispatch stamps the actual delivery
// date unless one is already recorded.
func enterStage(o *domain.Order, st domain.Stage, now time.Time) {
	o.Status = st
	if st == domain.StageDispatch && o.ActualDeliveryDate == nil {
		today := domain.Day(now)
		o.ActualDeliveryDate = &today
	}
}

func paymentFromRequest(orderID uint, req dto.PaymentRequest, now time.Time) (domain.Payment, error) {
	p := domain.Payment{
		OrderID:    orderID,
		Amount:     decimal.Zero,
		ReceivedOn: domain.Day(now),
		Reference:  strings.TrimSpace(req.Reference),
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
	}
	if req.Amount != nil {
		p.Amount = req.Amount.Round(2)
	}

	// The amount itself is checked against the order inside the booking
	// transaction.
	var details []apperrors.ValidationDetail
	if s := strings.TrimSpace(req.ReceivedOn); s != "" {
		d, err := domain.ParseDate(s)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "received_on", Message: "received_on must be a date in YYYY-MM-DD format"})
		}
		p.ReceivedOn = d
	}
	if len(p.Reference) > 100 {
		details = append(details, apperrors.ValidationDetail{Field: "reference", Message: "reference must be at most 100 characters"})
	}

	if len(details) > 0 {
		return domain.Payment{}, apperrors.NewValidationError("invalid payment", details...)
	}
	return p, nil
}
