package product

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	apperrors "mfgtrack/internal/errors"
	"mfgtrack/internal/product/repository"
)

type mockRepository struct {
	ListFunc           func(ctx context.Context, f repository.ListFilter) ([]domain.Product, int, error)
	FindByIDFunc       func(ctx context.Context, id int) (*domain.Product, error)
	InsertFunc         func(ctx context.Context, p domain.Product) (int, error)
	UpdateFunc         func(ctx context.Context, p domain.Product) error
	DeleteFunc         func(ctx context.Context, id int) error
	CountOrdersFunc    func(ctx context.Context, productID int) (int, error)
	ListFamiliesFunc   func(ctx context.Context) ([]domain.ProductFamily, error)
	FindFamilyByIDFunc func(ctx context.Context, id int) (*domain.ProductFamily, error)
	InsertFamilyFunc   func(ctx context.Context, f domain.ProductFamily) (int, error)
}

func (m *mockRepository) List(ctx context.Context, f repository.ListFilter) ([]domain.Product, int, error) {
	return m.ListFunc(ctx, f)
}

func (m *mockRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockRepository) Insert(ctx context.Context, p domain.Product) (int, error) {
	return m.InsertFunc(ctx, p)
}

func (m *mockRepository) Update(ctx context.Context, p domain.Product) error {
	return m.UpdateFunc(ctx, p)
}

func (m *mockRepository) Delete(ctx context.Context, id int) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockRepository) CountOrders(ctx context.Context, productID int) (int, error) {
	return m.CountOrdersFunc(ctx, productID)
}

func (m *mockRepository) ListFamilies(ctx context.Context) ([]domain.ProductFamily, error) {
	return m.ListFamiliesFunc(ctx)
}

func (m *mockRepository) FindFamilyByID(ctx context.Context, id int) (*domain.ProductFamily, error) {
	return m.FindFamilyByIDFunc(ctx, id)
}

func (m *mockRepository) InsertFamily(ctx context.Context, f domain.ProductFamily) (int, error) {
	return m.InsertFamilyFunc(ctx, f)
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(&mockRepository{}, zap.NewNop())
	negative := decimal.NewFromInt(-1)

	_, err := svc.Create(context.Background(), dto.ProductRequest{BasePrice: &negative, ProductionTimeDays: -3})

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	fields := []string{}
	for _, d := range ve.Details {
		fields = append(fields, d.Field)
	}
	assert.Equal(t, []string{"name", "base_price", "production_time_days"}, fields)
}

func TestService_Create_UnknownFamily(t *testing.T) {
	repo := &mockRepository{
		FindFamilyByIDFunc: func(ctx context.Context, id int) (*domain.ProductFamily, error) {
			return nil, apperrors.NewNotFoundError("product family with id 8 not found")
		},
	}
	svc := NewService(repo, zap.NewNop())
	family := 8

	_, err := svc.Create(context.Background(), dto.ProductRequest{Name: "UTM-25", FamilyID: &family})

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestService_Create_NormalizesInput(t *testing.T) {
	var inserted domain.Product
	repo := &mockRepository{
		InsertFunc: func(ctx context.Context, p domain.Product) (int, error) {
			inserted = p
			return 11, nil
		},
		FindByIDFunc: func(ctx context.Context, id int) (*domain.Product, error) {
			p := inserted
			p.ID = id
			return &p, nil
		},
	}
	svc := NewService(repo, zap.NewNop())
	blank := "   "
	price := decimal.RequireFromString("12000.456")

	resp, err := svc.Create(context.Background(), dto.ProductRequest{
		Name:      " Hardware Kit Standard ",
		Code:      &blank,
		Tags:      []string{"Hardware", " Bought Out", "Hardware"},
		BasePrice: &price,
	})

	require.NoError(t, err)
	assert.Equal(t, 11, resp.ID)
	assert.Nil(t, inserted.Code)
	assert.Equal(t, "Hardware Kit Standard", inserted.Name)
	assert.Equal(t, []string{"Hardware", "Bought Out"}, inserted.Tags)
	assert.Equal(t, "12000.46", inserted.BasePrice.StringFixed(2))
	assert.True(t, inserted.IsActive)
}

func TestService_Delete_ConflictWhenReferenced(t *testing.T) {
	repo := &mockRepository{
		CountOrdersFunc: func(ctx context.Context, productID int) (int, error) { return 3, nil },
	}
	svc := NewService(repo, zap.NewNop())

	err := svc.Delete(context.Background(), 1)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestService_CreateFamily_RequiresName(t *testing.T) {
	svc := NewService(&mockRepository{}, zap.NewNop())

	_, err := svc.CreateFamily(context.Background(), dto.FamilyRequest{Name: " "})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestParseListFilter(t *testing.T) {
	f, err := ParseListFilter(url.Values{"search": {"cell"}, "family_id": {"2"}, "active": {"true"}, "per_page": {"5"}}, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, "cell", f.Search)
	assert.Equal(t, 2, f.FamilyID)
	assert.True(t, f.ActiveOnly)
	assert.Equal(t, 5, f.Page.PerPage)

	_, err = ParseListFilter(url.Values{"family_id": {"x"}}, 20, 100)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func newTestRouter(repo Repository) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/products", NewController(NewService(repo, zap.NewNop()), zap.NewNop(), 20, 100).Routes)
	return r
}

func TestController_FamiliesRouteIsNotAnID(t *testing.T) {
	repo := &mockRepository{
		ListFamiliesFunc: func(ctx context.Context) ([]domain.ProductFamily, error) {
			return []domain.ProductFamily{{ID: 1, Name: "UTM Machine"}}, nil
		},
	}

	rec := httptest.NewRecorder()
	newTestRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/families", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"UTM Machine"`)
}

func TestController_CreateDuplicateCode(t *testing.T) {
	repo := &mockRepository{
		InsertFunc: func(ctx context.Context, p domain.Product) (int, error) {
			return 0, apperrors.NewConflictError(`product code "LC-100" already exists`)
		},
	}

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"name":"Load Cell","code":"LC-100","base_price":120000}`)
	newTestRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", body))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "LC-100")
}
