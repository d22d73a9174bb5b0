package customer

import (
	"database/sql"

	"go.uber.org/zap"

	"mfgtrack/internal/config"
	"mfgtrack/internal/customer/controller"
	"mfgtrack/internal/customer/repository"
	"mfgtrack/internal/customer/service"
)

type Module struct {
	Controller *controller.CustomerController
	Service    *service.CustomerService
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Module {
	repo := repository.NewCustomerRepository(db)
	svc := service.NewCustomerService(repo, logger)
	return &Module{
		Controller: controller.NewCustomerController(svc, logger, cfg.Order.DefaultPerPage, cfg.Order.MaxPerPage),
		Service:    svc,
	}
}
