package product

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	apperrors "mfgtrack/internal/errors"
	"mfgtrack/internal/product/repository"
)

type productService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &productService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *productService) List(ctx context.Context, f repository.ListFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.NewProductResponse(p))
	}

	return &dto.ProductListResponse{
		Products:    out,
		Total:       total,
		Pages:       dto.Pages(total, f.Page.PerPage),
		CurrentPage: f.Page.Page,
	}, nil
}

func (s *productService) Get(ctx context.Context, id int) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewProductResponse(*p)
	return &resp, nil
}

func (s *productService) Create(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error) {
	p, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkFamily(ctx, p.FamilyID); err != nil {
		return nil, err
	}
	p.CreatedAt = s.now()

	id, err := s.repo.Insert(ctx, p)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.Int("productId", id), zap.String("name", p.Name))
	return s.Get(ctx, id)
}

func (s *productService) Update(ctx context.Context, id int, req dto.ProductRequest) (*dto.ProductResponse, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkFamily(ctx, p.FamilyID); err != nil {
		return nil, err
	}
	p.ID = id
	if req.IsActive == nil {
		p.IsActive = existing.IsActive
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("product updated", zap.Int("productId", id))
	return s.Get(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id int) error {
	n, err := s.repo.CountOrders(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperrors.NewConflictError("product is used by orders and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted", zap.Int("productId", id))
	return nil
}

func (s *productService) ListFamilies(ctx context.Context) ([]dto.FamilyResponse, error) {
	families, err := s.repo.ListFamilies(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.FamilyResponse, 0, len(families))
	for _, f := range families {
		out = append(out, dto.NewFamilyResponse(f))
	}
	return out, nil
}

func (s *productService) CreateFamily(ctx context.Context, req dto.FamilyRequest) (*dto.FamilyResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}

	f := domain.ProductFamily{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   s.now(),
	}
	id, err := s.repo.InsertFamily(ctx, f)
	if err != nil {
		return nil, err
	}
	f.ID = id

	s.logger.Info("product family created", zap.Int("familyId", id), zap.String("name", name))

	resp := dto.NewFamilyResponse(f)
	return &resp, nil
}

func (s *productService) checkFamily(ctx context.Context, familyID *int) error {
	if familyID == nil {
		return nil
	}
	_, err := s.repo.FindFamilyByID(ctx, *familyID)
	return err
}

func productFromRequest(req dto.ProductRequest) (domain.Product, error) {
	var details []apperrors.ValidationDetail

	name := strings.TrimSpace(req.Name)
	if name == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}

	price := decimal.Zero
	if req.BasePrice != nil {
		price = *req.BasePrice
	}
	if price.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "base_price", Message: "base_price must not be negative"})
	}

	if req.ProductionTimeDays < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "production_time_days", Message: "production_time_days must not be negative"})
	}

	if req.FamilyID != nil && *req.FamilyID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "family_id", Message: "family_id must be a positive integer"})
	}

	if len(details) > 0 {
		return domain.Product{}, apperrors.NewValidationError("validation failed", details...)
	}

	var code *string
	if req.Code != nil {
		if c := strings.TrimSpace(*req.Code); c != "" {
			code = &c
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return domain.Product{
		Name:               name,
		Code:               code,
		Description:        strings.TrimSpace(req.Description),
		FamilyID:           req.FamilyID,
		Tags:               domain.CleanTags(req.Tags),
		BasePrice:          price.Round(2),
		ProductionTimeDays: req.ProductionTimeDays,
		IsActive:           active,
	}, nil
}
