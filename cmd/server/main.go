package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mfgtrack/internal/commons"
	"mfgtrack/internal/customer"
	"mfgtrack/internal/dashboard"
	"mfgtrack/internal/infrastructure/database"
	"mfgtrack/internal/infrastructure/kafka"
	"mfgtrack/internal/infrastructure/logger"
	"mfgtrack/internal/metrics"
	"mfgtrack/internal/order"
	"mfgtrack/internal/product"
	"mfgtrack/internal/server"
	"mfgtrack/internal/web"
)

type eventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
	Close() error
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "internal/config/config.yaml"
	}

	cfg, err := commons.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected", zap.String("driver", cfg.Database.Driver))

	var publisher eventPublisher = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = kafka.NewPublisher(cfg.Kafka, zapLogger)
		zapLogger.Info("publishing order events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zapLogger.Warn("closing event publisher", zap.Error(err))
		}
	}()

	m := metrics.New()

	customerModule := customer.NewModule(db, cfg, zapLogger)
	productModule := product.NewModule(db, cfg, zapLogger)
	orderModule := order.NewModule(db, cfg, zapLogger, publisher, m)
	dashboardModule := dashboard.NewModule(orderModule.Orders, zapLogger)

	ui := web.NewUI(web.Deps{
		Orders:    orderModule.UseCase,
		Dashboard: dashboardModule.Service,
		Customers: customerModule.Service,
		Products:  productModule.Service,
	}, zapLogger, cfg.Order.DefaultPerPage, cfg.Order.MaxPerPage)

	deps := server.RouterDeps{
		Customers: customerModule.Controller,
		Products:  productModule.Controller,
		Orders:    orderModule.Controller,
		Dashboard: dashboardModule.Controller,
		UI:        ui,
		DB:        db,
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = m
		deps.MetricsPath = cfg.Metrics.Path
	}

	srv := server.New(cfg.Server, server.NewRouter(deps, zapLogger), zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
