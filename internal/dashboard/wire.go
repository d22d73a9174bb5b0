package dashboard

import (
	"go.uber.org/zap"

	"mfgtrack/internal/dashboard/controller"
	"mfgtrack/internal/dashboard/service"
)

type Module struct {
	Controller *controller.DashboardController
	Service    *service.DashboardService
}

// NewModule reads orders through the order module's repository.
func NewModule(orders service.OrderLister, logger *zap.Logger) *Module {
	svc := service.NewDashboardService(orders, logger)
	return &Module{
		Controller: controller.NewDashboardController(svc, logger),
		Service:    svc,
	}
}
