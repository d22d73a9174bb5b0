package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mfgtrack/internal/commons"
	"mfgtrack/internal/dto"
	apperrors "mfgtrack/internal/errors"
)

type mockCustomerService struct {
	ListFunc   func(ctx context.Context, search string, page dto.Page) (*dto.CustomerListResponse, error)
	GetFunc    func(ctx context.Context, id int) (*dto.CustomerDetailResponse, error)
	CreateFunc func(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	UpdateFunc func(ctx context.Context, id int, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	DeleteFunc func(ctx context.Context, id int) error
}

func (m *mockCustomerService) List(ctx context.Context, search string, page dto.Page) (*dto.CustomerListResponse, error) {
	return m.ListFunc(ctx, search, page)
}

func (m *mockCustomerService) Get(ctx context.Context, id int) (*dto.CustomerDetailResponse, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockCustomerService) Create(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	return m.CreateFunc(ctx, req)
}

func (m *mockCustomerService) Update(ctx context.Context, id int, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	return m.UpdateFunc(ctx, id, req)
}

func (m *mockCustomerService) Delete(ctx context.Context, id int) error {
	return m.DeleteFunc(ctx, id)
}

func newRouter(svc CustomerService) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/customers", NewCustomerController(svc, zap.NewNop(), 20, 100).Routes)
	return r
}

func TestList_PassesSearchAndPage(t *testing.T) {
	svc := &mockCustomerService{
		ListFunc: func(ctx context.Context, search string, page dto.Page) (*dto.CustomerListResponse, error) {
			assert.Equal(t, "labs", search)
			assert.Equal(t, dto.Page{Page: 2, PerPage: 100}, page)
			return &dto.CustomerListResponse{Customers: []dto.CustomerResponse{}, Total: 0, Pages: 1, CurrentPage: 2}, nil
		},
	}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers?search=labs&page=2&per_page=1000", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"customers":[],"total":0,"pages":1,"current_page":2}`, rec.Body.String())
}

func TestGet_InvalidID(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&mockCustomerService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body commons.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error)
	assert.Equal(t, "id", body.Details[0].Field)
}

func TestGet_NotFound(t *testing.T) {
	svc := &mockCustomerService{
		GetFunc: func(ctx context.Context, id int) (*dto.CustomerDetailResponse, error) {
			return nil, apperrors.NewNotFoundError("customer with id 9 not found")
		},
	}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers/9", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "customer with id 9 not found")
}

func TestCreate_ValidationErrorFromService(t *testing.T) {
	svc := &mockCustomerService{
		CreateFunc: func(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "name", Message: "name is required"})
		},
	}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(`{"name":""}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
}

func TestCreate_Created(t *testing.T) {
	svc := &mockCustomerService{
		CreateFunc: func(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
			return &dto.CustomerResponse{ID: 1, Name: req.Name, IsActive: true}, nil
		},
	}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(`{"name":"Labs"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Labs"`)
}

func TestDelete_Conflict(t *testing.T) {
	svc := &mockCustomerService{
		DeleteFunc: func(ctx context.Context, id int) error {
			return apperrors.NewConflictError("customer has orders and cannot be deleted")
		},
	}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/customers/4", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"CONFLICT"`)
}
