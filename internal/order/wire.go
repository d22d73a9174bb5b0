package order

import (
	"database/sql"

	"go.uber.org/zap"

	"mfgtrack/internal/config"
	customerrepo "mfgtrack/internal/customer/repository"
	"mfgtrack/internal/order/controller"
	orderrepo "mfgtrack/internal/order/repository"
	"mfgtrack/internal/order/service"
	"mfgtrack/internal/order/usecase"
	productrepo "mfgtrack/internal/product/repository"
)

type Module struct {
	Controller *controller.OrderController
	UseCase    *usecase.OrderUseCase
	Orders     *orderrepo.OrderRepository
}

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	logger *zap.Logger,
	publisher usecase.EventPublisher,
	metrics usecase.Metrics,
) *Module {
	orderRepo := orderrepo.NewOrderRepository(db)
	historyRepo := orderrepo.NewStatusHistoryRepository(db)
	paymentRepo := orderrepo.NewPaymentRepository(db)

	orderSvc := service.NewOrderService(
		db,
		orderRepo,
		historyRepo,
		paymentRepo,
		logger,
		cfg.Order.TxTimeout,
	)

	uc := usecase.NewOrderUseCase(
		usecase.Repositories{
			Orders:    orderRepo,
			History:   historyRepo,
			Payments:  paymentRepo,
			Products:  productrepo.NewProductRepository(db),
			Customers: customerrepo.NewCustomerRepository(db),
		},
		orderSvc,
		publisher,
		metrics,
		logger,
		cfg.Order.CreateAttempts,
	)

	return &Module{
		Controller: controller.NewOrderController(uc, logger, cfg.Order.DefaultPerPage, cfg.Order.MaxPerPage),
		UseCase:    uc,
		Orders:     orderRepo,
	}
}
