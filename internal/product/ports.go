package product

import (
	"context"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	"mfgtrack/internal/product/repository"
)

type Service interface {
	List(ctx context.Context, f repository.ListFilter) (*dto.ProductListResponse, error)
	Get(ctx context.Context, id int) (*dto.ProductResponse, error)
	Create(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, id int, req dto.ProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id int) error
	ListFamilies(ctx context.Context) ([]dto.FamilyResponse, error)
	CreateFamily(ctx context.Context, req dto.FamilyRequest) (*dto.FamilyResponse, error)
}

type Repository interface {
	List(ctx context.Context, f repository.ListFilter) ([]domain.Product, int, error)
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	Insert(ctx context.Context, p domain.Product) (int, error)
	Update(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id int) error
	CountOrders(ctx context.Context, productID int) (int, error)
	ListFamilies(ctx context.Context) ([]domain.ProductFamily, error)
	FindFamilyByID(ctx context.Context, id int) (*domain.ProductFamily, error)
	InsertFamily(ctx context.Context, f domain.ProductFamily) (int, error)
}
