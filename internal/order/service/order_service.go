package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mfgtrack/internal/domain"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderRepository interface {
	FindByIDTx(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error)
	LastOrderNumber(ctx context.Context, tx *sql.Tx, prefix string) (string, error)
	Insert(ctx context.Context, tx *sql.Tx, o domain.Order) (uint, error)
	Update(ctx context.Context, tx *sql.Tx, o domain.Order) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.Stage, actualDelivery *time.Time, at time.Time) error
	Touch(ctx context.Context, tx *sql.Tx, id uint, at time.Time) error
	SetReceived(ctx context.Context, tx *sql.Tx, id uint, received decimal.Decimal, at time.Time) error
}

type HistoryRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, entry domain.StatusHistoryEntry) (uint, error)
}

type PaymentRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, p domain.Payment) (uint, error)
}

// OrderService owns every multi-row write on an order. Each method runs in
// one transaction bounded by txTimeout.
type OrderService struct {
	db          TransactionManager
	orderRepo   OrderRepository
	historyRepo HistoryRepository
	paymentRepo PaymentRepository
	logger      *zap.Logger
	txTimeout   time.Duration
}

func NewOrderService(
	db TransactionManager,
	orderRepo OrderRepository,
	historyRepo HistoryRepository,
	paymentRepo PaymentRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *OrderService {
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
		txTimeout:   txTimeout,
	}
}

// Create inserts o with its first history entry. An empty OrderNumber is
// replaced by the next number for the day o was created.
func (s *OrderService) Create(ctx context.Context, o domain.Order) (uint, string, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return 0, "", err
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	if o.OrderNumber == "" {
		last, err := s.orderRepo.LastOrderNumber(txCtx, tx, domain.OrderNumberDayPrefix(o.CreatedAt))
		if err != nil {
			return 0, "", err
		}
		o.OrderNumber = domain.GenerateOrderNumber(o.CreatedAt, last)
	}

	id, err := s.orderRepo.Insert(txCtx, tx, o)
	if err != nil {
		return 0, "", err
	}

	_, err = s.historyRepo.Insert(txCtx, tx, domain.StatusHistoryEntry{
		OrderID:   id,
		NewStatus: string(o.Status),
		Notes:     "Order created",
		ChangedAt: o.CreatedAt,
	})
	if err != nil {
		return 0, "", err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.String("orderNumber", o.OrderNumber), zap.Error(err))
		return 0, "", err
	}

	return id, o.OrderNumber, nil
}

// Update locks the order, runs apply on the row as it is inside the
// transaction and writes the result. A status change adds a history entry
// carrying notes. It returns the order before and after apply.
func (s *OrderService) Update(ctx context.Context, id uint, at time.Time, notes string, apply func(*domain.Order) error) (domain.Order, domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return domain.Order{}, domain.Order{}, err
	}
	defer tx.Rollback()

	if err := s.orderRepo.Touch(txCtx, tx, id, at); err != nil {
		return domain.Order{}, domain.Order{}, err
	}
	current, err := s.orderRepo.FindByIDTx(txCtx, tx, id)
	if err != nil {
		return domain.Order{}, domain.Order{}, err
	}

	before := *current
	after := *current
	if err := apply(&after); err != nil {
		return domain.Order{}, domain.Order{}, err
	}

	if err := s.orderRepo.Update(txCtx, tx, after); err != nil {
		return domain.Order{}, domain.Order{}, err
	}

	if after.Status != before.Status {
		if err := s.appendHistory(txCtx, tx, id, before.Status, after.Status, notes, after.UpdatedAt); err != nil {
			return domain.Order{}, domain.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Uint("orderId", id), zap.Error(err))
		return domain.Order{}, domain.Order{}, err
	}
	return before, after, nil
}

// ChangeStatus moves the order from previous to o.Status, touching only the
// status columns.
func (s *OrderService) ChangeStatus(ctx context.Context, o domain.Order, previous domain.Stage, notes string) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if err := s.orderRepo.UpdateStatus(txCtx, tx, o.ID, o.Status, o.ActualDeliveryDate, o.UpdatedAt); err != nil {
		return err
	}
	if err := s.appendHistory(txCtx, tx, o.ID, previous, o.Status, notes, o.UpdatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Uint("orderId", o.ID), zap.Error(err))
		return err
	}
	return nil
}

// RecordPayment validates p against the order's current due amount and
// books it. The order row stays locked from the check to the increment.
func (s *OrderService) RecordPayment(ctx context.Context, p domain.Payment) (uint, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return 0, err
	}
	defer tx.Rollback()

	if err := s.orderRepo.Touch(txCtx, tx, p.OrderID, p.CreatedAt); err != nil {
		return 0, err
	}

	order, err := s.orderRepo.FindByIDTx(txCtx, tx, p.OrderID)
	if err != nil {
		return 0, err
	}
	if err := domain.ValidatePayment(*order, p.Amount); err != nil {
		return 0, err
	}

	received := order.AmountReceived.Add(p.Amount)
	if err := s.orderRepo.SetReceived(txCtx, tx, p.OrderID, received, p.CreatedAt); err != nil {
		return 0, err
	}

	id, err := s.paymentRepo.Insert(txCtx, tx, p)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Uint("orderId", p.OrderID), zap.Error(err))
		return 0, err
	}

	s.logger.Info("payment booked", zap.Uint("orderId", p.OrderID), zap.String("amount", p.Amount.StringFixed(2)))
	return id, nil
}

func (s *OrderService) appendHistory(ctx context.Context, tx *sql.Tx, orderID uint, from, to domain.Stage, notes string, at time.Time) error {
	_, err := s.historyRepo.Insert(ctx, tx, domain.StatusHistoryEntry{
		OrderID:   orderID,
		OldStatus: string(from),
		NewStatus: string(to),
		Notes:     notes,
		ChangedAt: at,
	})
	return err
}
