package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	apperrors "mfgtrack/internal/errors"
)

type OrderRepository interface {
	List(ctx context.Context, f dto.OrderFilter, today time.Time) ([]domain.Order, int, error)
	ListAll(ctx context.Context, f dto.OrderFilter, today time.Time) ([]domain.Order, error)
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	Delete(ctx context.Context, id uint) error
}

type HistoryRepository interface {
	ListByOrder(ctx context.Context, orderID uint) ([]domain.StatusHistoryEntry, error)
}

type PaymentRepository interface {
	ListByOrder(ctx context.Context, orderID uint) ([]domain.Payment, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
}

type CustomerRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Customer, error)
}

// OrderWriter performs the transactional writes.
type OrderWriter interface {
	Create(ctx context.Context, o domain.Order) (uint, string, error)
	Update(ctx context.Context, id uint, at time.Time, notes string, apply func(*domain.Order) error) (before, after domain.Order, err error)
	ChangeStatus(ctx context.Context, o domain.Order, previous domain.Stage, notes string) error
	RecordPayment(ctx context.Context, p domain.Payment) (uint, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
}

type Metrics interface {
	OrderCreated()
	StatusChanged(to string)
	PaymentRecorded(amount float64)
	OrdersExported()
	EventPublishFailed(eventType string)
}

type Repositories struct {
	Orders    OrderRepository
	History   HistoryRepository
	Payments  PaymentRepository
	Products  ProductRepository
	Customers CustomerRepository
}

type OrderUseCase struct {
	repos          Repositories
	writer         OrderWriter
	publisher      EventPublisher
	metrics        Metrics
	logger         *zap.Logger
	createAttempts int
	now            func() time.Time
}

func NewOrderUseCase(
	repos Repositories,
	writer OrderWriter,
	publisher EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
	createAttempts int,
) *OrderUseCase {
	if createAttempts < 1 {
		createAttempts = 1
	}
	return &OrderUseCase{
		repos:          repos,
		writer:         writer,
		publisher:      publisher,
		metrics:        metrics,
		logger:         logger,
		createAttempts: createAttempts,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (uc *OrderUseCase) List(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error) {
	now := uc.now()
	orders, total, err := uc.repos.Orders.List(ctx, f, now)
	if err != nil {
		return nil, err
	}

	return &dto.OrderListResponse{
		Orders:      dto.NewOrderResponses(orders, now),
		Total:       total,
		Pages:       dto.Pages(total, f.Page.PerPage),
		CurrentPage: f.Page.Page,
	}, nil
}

// Export returns every order matching f, in list order, without paging.
func (uc *OrderUseCase) Export(ctx context.Context, f dto.OrderFilter) (*dto.OrderExport, error) {
	now := uc.now()
	orders, err := uc.repos.Orders.ListAll(ctx, f, now)
	if err != nil {
		return nil, err
	}

	uc.metrics.OrdersExported()
	uc.logger.Info("orders exported", zap.Int("count", len(orders)))
	return &dto.OrderExport{Orders: dto.NewOrderResponses(orders, now), GeneratedAt: now}, nil
}

func (uc *OrderUseCase) Get(ctx context.Context, id uint) (*dto.OrderDetailResponse, error) {
	o, err := uc.repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product, err := uc.repos.Products.FindByID(ctx, o.ProductID)
	if err != nil {
		return nil, err
	}
	customer, err := uc.repos.Customers.FindByID(ctx, o.CustomerID)
	if err != nil {
		return nil, err
	}
	history, err := uc.repos.History.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := uc.repos.Payments.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.OrderDetailResponse{
		OrderResponse: dto.NewOrderResponse(*o, uc.now()),
		Product:       dto.NewProductResponse(*product),
		Customer:      dto.NewCustomerResponse(*customer),
		StatusHistory: dto.NewHistoryResponses(history),
		Payments:      dto.NewPaymentResponses(payments),
		Progress:      domain.StageProgress(o.Status),
	}, nil
}

func (uc *OrderUseCase) Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	now := uc.now()
	o, err := orderFromCreateRequest(req, now)
	if err != nil {
		return nil, err
	}

	if err := uc.checkReferences(ctx, o.ProductID, o.CustomerID); err != nil {
		return nil, err
	}

	id, number, err := uc.createWithRetry(ctx, o)
	if err != nil {
		return nil, err
	}

	created, err := uc.repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.metrics.OrderCreated()
	uc.logger.Info("order created", zap.Uint("orderId", id), zap.String("orderNumber", number), zap.String("status", string(created.Status)))

	resp := dto.NewOrderResponse(*created, now)
	uc.publish(ctx, EventOrderCreated, number, resp)
	return &resp, nil
}

// createWithRetry retries when a generated order number was taken by a
// concurrent create. A number supplied by the client is never retried.
func (uc *OrderUseCase) createWithRetry(ctx context.Context, o domain.Order) (uint, string, error) {
	backoffs := []time.Duration{0, 10 * time.Millisecond, 25 * time.Millisecond}

	for attempt := 1; ; attempt++ {
		id, number, err := uc.writer.Create(ctx, o)
		if err == nil {
			return id, number, nil
		}

		_, conflict := apperrors.IsConflictError(err)
		if !conflict || o.OrderNumber != "" || attempt >= uc.createAttempts {
			return 0, "", err
		}

		uc.logger.Warn("order number taken, retrying", zap.Int("attempt", attempt), zap.Int("maxAttempts", uc.createAttempts))

		wait := backoffs[len(backoffs)-1]
		if attempt < len(backoffs) {
			wait = backoffs[attempt]
		}
		select {
		case <-ctx.Done():
			return 0, "", ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Update applies the set fields of req to the order as stored when the write
// transaction starts, so concurrent payments are never overwritten.
func (uc *OrderUseCase) Update(ctx context.Context, id uint, req dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	if req.ProductID != nil && *req.ProductID > 0 {
		if _, err := uc.repos.Products.FindByID(ctx, *req.ProductID); err != nil {
			return nil, err
		}
	}
	if req.CustomerID != nil && *req.CustomerID > 0 {
		if _, err := uc.repos.Customers.FindByID(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	before, after, err := uc.writer.Update(ctx, id, now, req.StatusNotes, func(o *domain.Order) error {
		return applyUpdate(o, req, now)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order updated", zap.Uint("orderId", id))
	if after.Status != before.Status {
		uc.statusChanged(ctx, after, before.Status, req.StatusNotes, now)
	}

	return uc.reload(ctx, id, now)
}

// SetStatus moves the order to any known stage. Setting the current stage
// again changes nothing.
func (uc *OrderUseCase) SetStatus(ctx context.Context, id uint, req dto.StatusRequest) (*dto.OrderResponse, error) {
	if req.Status == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "status", Message: "status is required"})
	}
	st, err := domain.ParseStage(req.Status)
	if err != nil {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "status", Message: err.Error()})
	}

	o, err := uc.repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return uc.moveTo(ctx, *o, st, req.Notes)
}

// Advance moves the order to the next stage of the pipeline.
func (uc *OrderUseCase) Advance(ctx context.Context, id uint, notes string) (*dto.OrderResponse, error) {
	o, err := uc.repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := o.Status.Next()
	if !ok {
		return nil, apperrors.NewConflictError(fmt.Sprintf("order %s is already at the last stage (%s)", o.OrderNumber, o.Status))
	}

	return uc.moveTo(ctx, *o, next, notes)
}

func (uc *OrderUseCase) moveTo(ctx context.Context, o domain.Order, st domain.Stage, notes string) (*dto.OrderResponse, error) {
	now := uc.now()
	if o.Status == st {
		resp := dto.NewOrderResponse(o, now)
		return &resp, nil
	}

	previous := o.Status
	enterStage(&o, st, now)
	o.UpdatedAt = now

	if err := uc.writer.ChangeStatus(ctx, o, previous, notes); err != nil {
		return nil, err
	}

	uc.statusChanged(ctx, o, previous, notes, now)
	return uc.reload(ctx, o.ID, now)
}

func (uc *OrderUseCase) statusChanged(ctx context.Context, o domain.Order, from domain.Stage, notes string, at time.Time) {
	uc.metrics.StatusChanged(o.Status.Slug())
	uc.logger.Info("order status changed",
		zap.Uint("orderId", o.ID),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
	)
	uc.publish(ctx, EventStatusChanged, o.OrderNumber, StatusChangedEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		From:        from,
		To:          o.Status,
		Notes:       notes,
		ChangedAt:   at,
	})
}

func (uc *OrderUseCase) RecordPayment(ctx context.Context, id uint, req dto.PaymentRequest) (*dto.PaymentResultResponse, error) {
	now := uc.now()
	p, err := paymentFromRequest(id, req, now)
	if err != nil {
		return nil, err
	}

	paymentID, err := uc.writer.RecordPayment(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = paymentID

	o, err := uc.repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	amount, _ := p.Amount.Float64()
	uc.metrics.PaymentRecorded(amount)
	uc.logger.Info("payment recorded",
		zap.Uint("orderId", id),
		zap.Uint("paymentId", paymentID),
		zap.String("amount", p.Amount.StringFixed(2)),
		zap.String("paymentState", string(o.PaymentState())),
	)
	uc.publish(ctx, EventPaymentRecorded, o.OrderNumber, PaymentRecordedEvent{
		OrderID:      id,
		OrderNumber:  o.OrderNumber,
		PaymentID:    paymentID,
		Amount:       p.Amount,
		AmountDue:    o.AmountDue(),
		PaymentState: o.PaymentState(),
		ReceivedOn:   p.ReceivedOn.Format(domain.DateLayout),
	})

	return &dto.PaymentResultResponse{
		Payment: dto.NewPaymentResponse(p),
		Order:   dto.NewOrderResponse(*o, now),
	}, nil
}

func (uc *OrderUseCase) History(ctx context.Context, id uint) ([]dto.HistoryResponse, error) {
	if _, err := uc.repos.Orders.FindByID(ctx, id); err != nil {
		return nil, err
	}
	entries, err := uc.repos.History.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewHistoryResponses(entries), nil
}

func (uc *OrderUseCase) Payments(ctx context.Context, id uint) ([]dto.PaymentResponse, error) {
	if _, err := uc.repos.Orders.FindByID(ctx, id); err != nil {
		return nil, err
	}
	payments, err := uc.repos.Payments.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponses(payments), nil
}

func (uc *OrderUseCase) Delete(ctx context.Context, id uint) error {
	if err := uc.repos.Orders.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("order deleted", zap.Uint("orderId", id))
	return nil
}

func (uc *OrderUseCase) checkReferences(ctx context.Context, productID, customerID int) error {
	if _, err := uc.repos.Products.FindByID(ctx, productID); err != nil {
		return err
	}
	if _, err := uc.repos.Customers.FindByID(ctx, customerID); err != nil {
		return err
	}
	return nil
}

func (uc *OrderUseCase) reload(ctx context.Context, id uint, now time.Time) (*dto.OrderResponse, error) {
	o, err := uc.repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewOrderResponse(*o, now)
	return &resp, nil
}

// publish never fails the caller: the write is already committed.
func (uc *OrderUseCase) publish(ctx context.Context, eventType, key string, payload interface{}) {
	if err := uc.publisher.Publish(ctx, eventType, key, payload); err != nil {
		uc.metrics.EventPublishFailed(eventType)
		uc.logger.Warn("failed to publish event", zap.String("type", eventType), zap.String("key", key), zap.Error(err))
	}
}
