package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mfgtrack/internal/commons"
	"mfgtrack/internal/customer"
	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	"mfgtrack/internal/infrastructure/database"
	"mfgtrack/internal/infrastructure/kafka"
	"mfgtrack/internal/infrastructure/logger"
	"mfgtrack/internal/metrics"
	"mfgtrack/internal/order"
	"mfgtrack/internal/product"
)

type familySeed struct {
	name     string
	products []productSeed
}

type productSeed struct {
	name  string
	code  string
	price int64
	days  int
	tags  []string
}

var families = []familySeed{
	{"Weighbridges", []productSeed{
		{"Pitless Weighbridge 60T", "WB-PL-60", 1850000, 45, []string{"steel", "heavy"}},
		{"Pit Type Weighbridge 40T", "WB-PT-40", 1450000, 40, []string{"steel"}},
	}},
	{"Platform Scales", []productSeed{
		{"Platform Scale 2T", "PS-2000", 145000, 15, []string{"compact"}},
		{"Platform Scale 500kg", "PS-500", 68000, 10, nil},
	}},
	{"Crane Scales", []productSeed{
		{"Crane Scale 10T", "CS-10", 240000, 20, []string{"wireless"}},
	}},
}

var customers = []dto.CustomerRequest{
	{Name: "Tata Steel", Company: "Tata Steel Ltd", ContactPerson: "R. Mehta", Email: "procurement@tatasteel.example", Phone: "+91 22 6665 8282"},
	{Name: "L&T Construction", Company: "Larsen & Toubro", ContactPerson: "S. Iyer", Email: "buying@lnt.example", Phone: "+91 44 2252 6000"},
	{Name: "Adani Ports", Company: "Adani Ports and SEZ", ContactPerson: "K. Shah", Email: "stores@adaniports.example", Phone: "+91 79 2656 5555"},
	{Name: "UltraTech Cement", Company: "UltraTech Cement Ltd", ContactPerson: "P. Nair", Email: "purchase@ultratech.example", Phone: "+91 22 6691 7800"},
	{Name: "JSW Steel", Company: "JSW Steel Ltd", ContactPerson: "A. Rao", Email: "vendors@jsw.example", Phone: "+91 22 4286 1000"},
}

func main() {
	cfgPath := flag.String("config", "internal/config/config.yaml", "config file")
	orders := flag.Int("orders", 40, "number of sample orders")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	cfg, err := commons.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	cfg.Database.AutoMigrate = true

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

	s := &seeder{
		customers: customer.NewModule(db, cfg, zapLogger),
		products:  product.NewModule(db, cfg, zapLogger),
		orders:    order.NewModule(db, cfg, zapLogger, kafka.NoopPublisher{}, metrics.New()),
		rnd:       rand.New(rand.NewSource(*seed)),
		logger:    zapLogger,
	}

	existing, err := s.customers.Service.List(ctx, "", dto.Page{Page: 1, PerPage: 1})
	if err != nil {
		zapLogger.Fatal("checking existing data", zap.Error(err))
	}
	if existing.Total > 0 {
		zapLogger.Info("database already has customers, nothing to seed", zap.Int("customers", existing.Total))
		return
	}

	if err := s.run(ctx, *orders, time.Now()); err != nil {
		zapLogger.Fatal("seeding failed", zap.Error(err))
	}
}

type seeder struct {
	customers *customer.Module
	products  *product.Module
	orders    *order.Module
	rnd       *rand.Rand
	logger    *zap.Logger
}

func (s *seeder) run(ctx context.Context, orderCount int, now time.Time) error {
	var products []dto.ProductResponse
	for _, f := range families {
		fam, err := s.products.Service.CreateFamily(ctx, dto.FamilyRequest{Name: f.name})
		if err != nil {
			return fmt.Errorf("creating family %s: %w", f.name, err)
		}
		for _, p := range f.products {
			code := p.code
			price := decimal.NewFromInt(p.price)
			created, err := s.products.Service.Create(ctx, dto.ProductRequest{
				Name:               p.name,
				Code:               &code,
				FamilyID:           &fam.ID,
				Tags:               p.tags,
				BasePrice:          &price,
				ProductionTimeDays: p.days,
			})
			if err != nil {
				return fmt.Errorf("creating product %s: %w", p.name, err)
			}
			products = append(products, *created)
		}
	}

	var customerIDs []int
	for _, c := range customers {
		created, err := s.customers.Service.Create(ctx, c)
		if err != nil {
			return fmt.Errorf("creating customer %s: %w", c.Name, err)
		}
		customerIDs = append(customerIDs, created.ID)
	}

	stages := domain.Stages()
	for i := 0; i < orderCount; i++ {
		p := products[s.rnd.Intn(len(products))]
		start := now.AddDate(0, 0, -s.rnd.Intn(330))
		delivery := start.AddDate(0, 0, p.ProductionTimeDays+s.rnd.Intn(15))
		amount := p.BasePrice.Mul(decimal.NewFromFloat(0.9 + s.rnd.Float64()*0.3)).Round(0)

		created, err := s.orders.UseCase.Create(ctx, dto.CreateOrderRequest{
			ProductID:    p.ID,
			CustomerID:   customerIDs[s.rnd.Intn(len(customerIDs))],
			StartDate:    start.Format(domain.DateLayout),
			DeliveryDate: delivery.Format(domain.DateLayout),
			Amount:       &amount,
		})
		if err != nil {
			return fmt.Errorf("creating order %d: %w", i+1, err)
		}

		// Older orders are further along the pipeline.
		elapsed := now.Sub(start).Hours() / 24
		steps := int(elapsed) * len(stages) / (p.ProductionTimeDays + 20)
		if steps >= len(stages) {
			steps = len(stages) - 1
		}
		for n := 0; n < steps; n++ {
			if _, err := s.orders.UseCase.Advance(ctx, created.ID, ""); err != nil {
				return fmt.Errorf("advancing order %s: %w", created.OrderNumber, err)
			}
		}

		if paid := s.rnd.Intn(3); paid > 0 {
			part := amount.Mul(decimal.NewFromInt(int64(paid))).Div(decimal.NewFromInt(2)).Round(0)
			if part.GreaterThan(amount) {
				part = amount
			}
			_, err := s.orders.UseCase.RecordPayment(ctx, created.ID, dto.PaymentRequest{
				Amount:     &part,
				ReceivedOn: start.AddDate(0, 0, 7).Format(domain.DateLayout),
				Reference:  fmt.Sprintf("NEFT-%06d", s.rnd.Intn(1000000)),
			})
			if err != nil {
				return fmt.Errorf("recording payment for %s: %w", created.OrderNumber, err)
			}
		}
	}

	s.logger.Info("seed complete",
		zap.Int("families", len(families)),
		zap.Int("products", len(products)),
		zap.Int("customers", len(customerIDs)),
		zap.Int("orders", orderCount),
	)
	return nil
}
