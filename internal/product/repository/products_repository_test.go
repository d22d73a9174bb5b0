package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	"mfgtrack/internal/errors"
	"mfgtrack/internal/testutil"
)

// Unit Tests

func TestNewProductRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewProductRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func newProduct(name, code string, familyID *int, tags ...string) domain.Product {
	p := domain.Product{
		Name:               name,
		Description:        name + " description",
		FamilyID:           familyID,
		Tags:               tags,
		BasePrice:          decimal.RequireFromString("850000.00"),
		ProductionTimeDays: 45,
		IsActive:           true,
		CreatedAt:          time.Now().UTC(),
	}
	if code != "" {
		p.Code = strPtr(code)
	}
	return p
}

func TestProductRepository_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	familyID := testutil.InsertFamily(t, db, "UTM Machine")
	id, err := repo.Insert(ctx, newProduct("UTM-100 Universal Testing Machine", "UTM-100", intPtr(familyID), "Mechanical", "Electronic"))
	require.NoError(t, err)

	p, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "UTM-100 Universal Testing Machine", p.Name)
	require.NotNil(t, p.Code)
	assert.Equal(t, "UTM-100", *p.Code)
	require.NotNil(t, p.FamilyID)
	assert.Equal(t, familyID, *p.FamilyID)
	assert.Equal(t, "UTM Machine", p.FamilyName)
	assert.Equal(t, []string{"Mechanical", "Electronic"}, p.Tags)
	assert.True(t, p.BasePrice.Equal(decimal.NewFromInt(850000)))
	assert.Equal(t, 45, p.ProductionTimeDays)
}

func TestProductRepository_NullCodeAndFamily(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	// Two products without a code do not collide on the unique index.
	first, err := repo.Insert(ctx, newProduct("Hardware Kit", "", nil))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, newProduct("Hardware Kit Premium", "", nil))
	require.NoError(t, err)

	p, err := repo.FindByID(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, p.Code)
	assert.Nil(t, p.FamilyID)
	assert.Empty(t, p.FamilyName)
	assert.Empty(t, p.Tags)
}

func TestProductRepository_DuplicateCodeConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	_, err := repo.Insert(ctx, newProduct("Load Cell 100kN", "LC-100", nil))
	require.NoError(t, err)

	_, err = repo.Insert(ctx, newProduct("Load Cell copy", "LC-100", nil))

	ce, ok := errors.IsConflictError(err)
	require.True(t, ok, "expected conflict, got %v", err)
	assert.Contains(t, ce.Message, "LC-100")
}

func TestProductRepository_UnknownFamilyIsNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewProductRepository(db)

	_, err := repo.Insert(context.Background(), newProduct("Orphan", "ORP", intPtr(999)))

	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok, "expected not found, got %v", err)
}

func TestProductRepository_ListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	utm := testutil.InsertFamily(t, db, "UTM Machine")
	electronic := testutil.InsertFamily(t, db, "Electronic Components")

	_, err := repo.Insert(ctx, newProduct("UTM-50 Universal Testing Machine", "UTM-50", intPtr(utm), "Mechanical"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, newProduct("Load Cell 50kN", "LC-50", intPtr(electronic), "Electronic", "Bought Out"))
	require.NoError(t, err)
	inactive := newProduct("Sensor Package Basic", "SENS-BAS", intPtr(electronic), "Electronic")
	inactive.IsActive = false
	_, err = repo.Insert(ctx, inactive)
	require.NoError(t, err)

	page := dto.Page{Page: 1, PerPage: 10}

	byFamily, total, err := repo.List(ctx, ListFilter{FamilyID: electronic, Page: page})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, byFamily, 2)

	active, total, err := repo.List(ctx, ListFilter{FamilyID: electronic, ActiveOnly: true, Page: page})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Load Cell 50kN", active[0].Name)

	byTag, _, err := repo.List(ctx, ListFilter{Search: "bought", Page: page})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "LC-50", *byTag[0].Code)

	byCode, _, err := repo.List(ctx, ListFilter{Search: "utm-50", Page: page})
	require.NoError(t, err)
	require.Len(t, byCode, 1)
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, newProduct("Grip Set", "GS-UNI", nil))
	require.NoError(t, err)

	p := newProduct("Grip Set Universal", "GS-UNI", nil, "Mechanical")
	p.ID = id
	p.BasePrice = decimal.RequireFromString("45000")
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Grip Set Universal", got.Name)
	assert.True(t, got.BasePrice.Equal(decimal.NewFromInt(45000)))

	n, err := repo.CountOrders(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, repo.Delete(ctx, id))
	_, ok := errors.IsNotFoundError(repo.Delete(ctx, id))
	assert.True(t, ok)
}

func TestProductRepository_Families(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	id, err := repo.InsertFamily(ctx, domain.ProductFamily{Name: "Hardware", Description: "Hardware components", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	_, err = repo.InsertFamily(ctx, domain.ProductFamily{Name: "Electronic Components", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	_, err = repo.InsertFamily(ctx, domain.ProductFamily{Name: "Hardware", CreatedAt: time.Now().UTC()})
	_, ok := errors.IsConflictError(err)
	assert.True(t, ok)

	families, err := repo.ListFamilies(ctx)
	require.NoError(t, err)
	require.Len(t, families, 2)
	assert.Equal(t, "Electronic Components", families[0].Name)

	f, err := repo.FindFamilyByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hardware components", f.Description)

	_, err = repo.FindFamilyByID(ctx, 404)
	_, ok = errors.IsNotFoundError(err)
	assert.True(t, ok)
}
