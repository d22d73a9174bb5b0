package web

import (
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"mfgtrack/internal/commons"
	"mfgtrack/internal/dto"
	apperrors "mfgtrack/internal/errors"
)

func badSignals(err error) error {
	return apperrors.NewValidationError("the form could not be read", apperrors.ValidationDetail{
		Field:   "signals",
		Message: err.Error(),
	})
}

func (u *UI) OrdersTable(w http.ResponseWriter, r *http.Request) {
	var s ordersSignals
	readErr := datastar.ReadSignals(r, &s)
	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		u.patchBanner(sse, r, badSignals(readErr))
		return
	}

	table, err := u.ordersTable(r, s)
	if err != nil {
		u.patchBanner(sse, r, err)
		return
	}

	u.clearBanner(sse, r)
	u.patch(sse, r, "orders_table", table)
}

func (u *UI) CustomersTable(w http.ResponseWriter, r *http.Request) {
	var s searchSignals
	readErr := datastar.ReadSignals(r, &s)
	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		u.patchBanner(sse, r, badSignals(readErr))
		return
	}

	table, err := u.customersTable(r, s)
	if err != nil {
		u.patchBanner(sse, r, err)
		return
	}

	u.clearBanner(sse, r)
	u.patch(sse, r, "customers_table", table)
}

func (u *UI) ProductsTable(w http.ResponseWriter, r *http.Request) {
	var s searchSignals
	readErr := datastar.ReadSignals(r, &s)
	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		u.patchBanner(sse, r, badSignals(readErr))
		return
	}

	table, err := u.productsTable(r, s)
	if err != nil {
		u.patchBanner(sse, r, err)
		return
	}

	u.clearBanner(sse, r)
	u.patch(sse, r, "products_table", table)
}

// CreateOrder checks the required inputs before anything is sent to the
// use case and redirects to the new order on success.
func (u *UI) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var s newOrderSignals
	readErr := datastar.ReadSignals(r, &s)
	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		u.patchBanner(sse, r, badSignals(readErr))
		return
	}

	if missing := s.missingFields(); len(missing) > 0 {
		u.patchBanner(sse, r, apperrors.NewValidationError("Please fill in the required fields", missing...))
		return
	}

	req, err := createRequest(s)
	if err != nil {
		u.patchBanner(sse, r, err)
		return
	}

	o, err := u.deps.Orders.Create(r.Context(), req)
	if err != nil {
		u.patchBanner(sse, r, err)
		return
	}

	u.logger.Info("order created from ui",
		zap.String("traceId", commons.TraceID(r.Context())),
		zap.String("orderNumber", o.OrderNumber),
	)
	if err := sse.Redirect("/orders/" + strconv.FormatUint(uint64(o.ID), 10)); err != nil {
		u.logger.Debug("sse redirect not delivered", zap.Error(err))
	}
}

func createRequest(s newOrderSignals) (dto.CreateOrderRequest, error) {
	var details []apperrors.ValidationDetail
	req := dto.CreateOrderRequest{
		OrderNumber:  s.OrderNumber,
		StartDate:    s.StartDate,
		DeliveryDate: s.DeliveryDate,
		Status:       s.Status,
		Notes:        s.Notes,
	}

	var d *apperrors.ValidationDetail
	if req.ProductID, d = formID("product_id", s.ProductID); d != nil {
		details = append(details, *d)
	}
	if req.CustomerID, d = formID("customer_id", s.CustomerID); d != nil {
		details = append(details, *d)
	}
	if req.Amount, d = formAmount("amount", s.Amount); d != nil {
		details = append(details, *d)
	}
	if req.AmountReceived, d = formAmount("amount_received", s.AmountReceived); d != nil {
		details = append(details, *d)
	}

	if len(details) > 0 {
		return dto.CreateOrderRequest{}, apperrors.NewValidationError("validation failed", details...)
	}
	return req, nil
}

// orderAction reads the detail signals, runs fn against the order and then
// re-renders the detail panel. Failures only touch the banner.
func (u *UI) orderAction(w http.ResponseWriter, r *http.Request, fn func(id uint, s detailSignals) error) {
	var s detailSignals
	readErr := datastar.ReadSignals(r, &s)
	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		u.patchBanner(sse, r, badSignals(readErr))
		return
	}

	id, err := commons.PathID(r, "id")
	if err != nil {
		u.patchBanner(sse, r, err)
		return
	}

	if err := fn(uint(id), s); err != nil {
		u.patchBanner(sse, r, err)
		return
	}

	o, err := u.deps.Orders.Get(r.Context(), uint(id))
	if err != nil {
		u.patchBanner(sse, r, err)
		return
	}

	u.clearBanner(sse, r)
	u.patch(sse, r, "order_detail", newOrderDetailView(o))
	if err := sse.MarshalAndPatchSignals(detailSignals{Notes: o.Notes}); err != nil {
		u.logger.Debug("sse signals not delivered", zap.Error(err))
	}
}

func (u *UI) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	u.orderAction(w, r, func(id uint, s detailSignals) error {
		_, err := u.deps.Orders.Advance(r.Context(), id, s.StageNotes)
		return err
	})
}

func (u *UI) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	u.orderAction(w, r, func(id uint, s detailSignals) error {
		_, err := u.deps.Orders.SetStatus(r.Context(), id, dto.StatusRequest{Status: s.Stage, Notes: s.StageNotes})
		return err
	})
}

func (u *UI) RecordPayment(w http.ResponseWriter, r *http.Request) {
	u.orderAction(w, r, func(id uint, s detailSignals) error {
		amount, d := formAmount("amount", s.PaymentAmount)
		if d != nil {
			return apperrors.NewValidationError("invalid payment", *d)
		}
		if amount == nil {
			return apperrors.NewValidationError("invalid payment", apperrors.ValidationDetail{
				Field:   "amount",
				Message: "Amount is required",
			})
		}
		_, err := u.deps.Orders.RecordPayment(r.Context(), id, dto.PaymentRequest{
			Amount:     amount,
			ReceivedOn: s.PaymentDate,
			Reference:  s.PaymentReference,
		})
		return err
	})
}

func (u *UI) SaveNotes(w http.ResponseWriter, r *http.Request) {
	u.orderAction(w, r, func(id uint, s detailSignals) error {
		notes := s.Notes
		_, err := u.deps.Orders.Update(r.Context(), id, dto.UpdateOrderRequest{Notes: &notes})
		return err
	})
}
