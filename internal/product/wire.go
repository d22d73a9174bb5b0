package product

import (
	"database/sql"

	"go.uber.org/zap"

	"mfgtrack/internal/config"
	"mfgtrack/internal/product/repository"
)

type Module struct {
	Controller *Controller
	Service    Service
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Module {
	repo := repository.NewProductRepository(db)
	svc := NewService(repo, logger)
	return &Module{
		Controller: NewController(svc, logger, cfg.Order.DefaultPerPage, cfg.Order.MaxPerPage),
		Service:    svc,
	}
}
