package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	apperrors "mfgtrack/internal/errors"
)

type CustomerRepository interface {
	List(ctx context.Context, search string, page dto.Page) ([]domain.Customer, int, error)
	FindByID(ctx context.Context, id int) (*domain.Customer, error)
	Insert(ctx context.Context, c domain.Customer) (int, error)
	Update(ctx context.Context, c domain.Customer) error
	Delete(ctx context.Context, id int) error
	OrderAmounts(ctx context.Context, customerID int) ([]domain.Order, error)
}

type CustomerService struct {
	repo   CustomerRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewCustomerService(repo CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *CustomerService) List(ctx context.Context, search string, page dto.Page) (*dto.CustomerListResponse, error) {
	customers, total, err := s.repo.List(ctx, search, page)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, dto.NewCustomerResponse(c))
	}

	return &dto.CustomerListResponse{
		Customers:   out,
		Total:       total,
		Pages:       dto.Pages(total, page.PerPage),
		CurrentPage: page.Page,
	}, nil
}

func (s *CustomerService) Get(ctx context.Context, id int) (*dto.CustomerDetailResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.OrderAmounts(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewCustomerDetailResponse(*c, domain.SummarizeCustomerOrders(orders))
	return &resp, nil
}

func (s *CustomerService) Create(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c, err := customerFromRequest(req)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = s.now()

	id, err := s.repo.Insert(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id

	s.logger.Info("customer created", zap.Int("customerId", id), zap.String("name", c.Name))

	resp := dto.NewCustomerResponse(c)
	return &resp, nil
}

func (s *CustomerService) Update(ctx context.Context, id int, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c, err := customerFromRequest(req)
	if err != nil {
		return nil, err
	}
	c.ID = id
	c.CreatedAt = existing.CreatedAt
	if req.IsActive == nil {
		c.IsActive = existing.IsActive
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("customer updated", zap.Int("customerId", id))

	resp := dto.NewCustomerResponse(c)
	return &resp, nil
}

func (s *CustomerService) Delete(ctx context.Context, id int) error {
	orders, err := s.repo.OrderAmounts(ctx, id)
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		return apperrors.NewConflictError("customer has orders and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("customer deleted", zap.Int("customerId", id))
	return nil
}

func customerFromRequest(req dto.CustomerRequest) (domain.Customer, error) {
	var details []apperrors.ValidationDetail

	name := strings.TrimSpace(req.Name)
	if name == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email must contain @"})
	}

	if len(details) > 0 {
		return domain.Customer{}, apperrors.NewValidationError("validation failed", details...)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return domain.Customer{
		Name:          name,
		Company:       strings.TrimSpace(req.Company),
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Email:         email,
		Phone:         strings.TrimSpace(req.Phone),
		Address:       strings.TrimSpace(req.Address),
		IsActive:      active,
	}, nil
}
