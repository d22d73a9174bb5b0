package controller

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mfgtrack/internal/commons"
	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	apperrors "mfgtrack/internal/errors"
)

type mockOrderUseCase struct {
	ListFunc          func(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error)
	ExportFunc        func(ctx context.Context, f dto.OrderFilter) (*dto.OrderExport, error)
	GetFunc           func(ctx context.Context, id uint) (*dto.OrderDetailResponse, error)
	CreateFunc        func(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	UpdateFunc        func(ctx context.Context, id uint, req dto.UpdateOrderRequest) (*dto.OrderResponse, error)
	SetStatusFunc     func(ctx context.Context, id uint, req dto.StatusRequest) (*dto.OrderResponse, error)
	AdvanceFunc       func(ctx context.Context, id uint, notes string) (*dto.OrderResponse, error)
	RecordPaymentFunc func(ctx context.Context, id uint, req dto.PaymentRequest) (*dto.PaymentResultResponse, error)
	HistoryFunc       func(ctx context.Context, id uint) ([]dto.HistoryResponse, error)
	PaymentsFunc      func(ctx context.Context, id uint) ([]dto.PaymentResponse, error)
	DeleteFunc        func(ctx context.Context, id uint) error
}

func (m *mockOrderUseCase) List(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error) {
	return m.ListFunc(ctx, f)
}

func (m *mockOrderUseCase) Export(ctx context.Context, f dto.OrderFilter) (*dto.OrderExport, error) {
	return m.ExportFunc(ctx, f)
}

func (m *mockOrderUseCase) Get(ctx context.Context, id uint) (*dto.OrderDetailResponse, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockOrderUseCase) Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	return m.CreateFunc(ctx, req)
}

func (m *mockOrderUseCase) Update(ctx context.Context, id uint, req dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	return m.UpdateFunc(ctx, id, req)
}

func (m *mockOrderUseCase) SetStatus(ctx context.Context, id uint, req dto.StatusRequest) (*dto.OrderResponse, error) {
	return m.SetStatusFunc(ctx, id, req)
}

func (m *mockOrderUseCase) Advance(ctx context.Context, id uint, notes string) (*dto.OrderResponse, error) {
	return m.AdvanceFunc(ctx, id, notes)
}

func (m *mockOrderUseCase) RecordPayment(ctx context.Context, id uint, req dto.PaymentRequest) (*dto.PaymentResultResponse, error) {
	return m.RecordPaymentFunc(ctx, id, req)
}

func (m *mockOrderUseCase) History(ctx context.Context, id uint) ([]dto.HistoryResponse, error) {
	return m.HistoryFunc(ctx, id)
}

func (m *mockOrderUseCase) Payments(ctx context.Context, id uint) ([]dto.PaymentResponse, error) {
	return m.PaymentsFunc(ctx, id)
}

func (m *mockOrderUseCase) Delete(ctx context.Context, id uint) error {
	return m.DeleteFunc(ctx, id)
}

func newRouter(uc OrderUseCase) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/orders", NewOrderController(uc, zap.NewNop(), 20, 100).Routes)
	return r
}

func serve(uc OrderUseCase, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) commons.ErrorResponse {
	t.Helper()
	var body commons.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestList_ParsesFilter(t *testing.T) {
	uc := &mockOrderUseCase{
		ListFunc: func(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error) {
			assert.Equal(t, domain.StageDispatch, f.Status)
			require.NotNil(t, f.IsDelayed)
			assert.True(t, *f.IsDelayed)
			assert.Equal(t, "delivery_date", f.SortBy)
			assert.False(t, f.SortDesc)
			assert.Equal(t, dto.Page{Page: 3, PerPage: 20}, f.Page)
			return &dto.OrderListResponse{Orders: []dto.OrderResponse{}, Total: 0, Pages: 1, CurrentPage: 3}, nil
		},
	}

	rec := serve(uc, http.MethodGet, "/api/orders?status=dispatch&is_delayed=true&sort_by=delivery_date&sort_order=asc&page=3", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"orders":[],"total":0,"pages":1,"current_page":3}`, rec.Body.String())
}

func TestList_InvalidFilter(t *testing.T) {
	rec := serve(&mockOrderUseCase{}, http.MethodGet, "/api/orders?sort_by=password&is_delayed=maybe", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Error)
	assert.Len(t, body.Details, 2)
}

func TestStatuses(t *testing.T) {
	rec := serve(&mockOrderUseCase{}, http.MethodGet, "/api/orders/statuses", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var stages []dto.StageInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stages))
	require.Len(t, stages, len(domain.Stages()))
	assert.Equal(t, domain.FirstStage(), stages[0].Name)
	assert.True(t, stages[len(stages)-1].Completed)
}

func TestExport_WritesCSV(t *testing.T) {
	uc := &mockOrderUseCase{
		ExportFunc: func(ctx context.Context, f dto.OrderFilter) (*dto.OrderExport, error) {
			assert.Equal(t, "forge", f.Search)
			return &dto.OrderExport{
				Orders: []dto.OrderResponse{
					{OrderNumber: "EM-20240615-001", ProductName: "UTM 50kN", CustomerName: "Bharat Forge", Status: domain.StageDispatch},
					{OrderNumber: "EM-20240615-002", ProductName: "UTM 50kN", CustomerName: "Bharat Forge", Status: domain.FirstStage()},
				},
				GeneratedAt: time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC),
			}, nil
		},
	}

	rec := serve(uc, http.MethodGet, "/api/orders/export.csv?search=forge", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="orders_export_20240615.csv"`, rec.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Order Number", records[0][0])
	assert.Equal(t, "EM-20240615-002", records[2][0])
}

func TestExport_ErrorIsJSON(t *testing.T) {
	uc := &mockOrderUseCase{
		ExportFunc: func(ctx context.Context, f dto.OrderFilter) (*dto.OrderExport, error) {
			return nil, errors.New("database is locked")
		},
	}

	rec := serve(uc, http.MethodGet, "/api/orders/export.csv", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.NotContains(t, body.Message, "locked")
}

func TestGet_NotFound(t *testing.T) {
	uc := &mockOrderUseCase{
		GetFunc: func(ctx context.Context, id uint) (*dto.OrderDetailResponse, error) {
			assert.Equal(t, uint(42), id)
			return nil, apperrors.NewNotFoundError("order 42 not found")
		},
	}

	rec := serve(uc, http.MethodGet, "/api/orders/42", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Error)
}

func TestGet_InvalidID(t *testing.T) {
	rec := serve(&mockOrderUseCase{}, http.MethodGet, "/api/orders/0", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id", decodeError(t, rec).Details[0].Field)
}

func TestCreate(t *testing.T) {
	uc := &mockOrderUseCase{
		CreateFunc: func(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
			assert.Equal(t, 3, req.ProductID)
			assert.Equal(t, 9, req.CustomerID)
			require.NotNil(t, req.Amount)
			assert.True(t, req.Amount.Equal(decimal.RequireFromString("125000.50")))
			return &dto.OrderResponse{ID: 1, OrderNumber: "EM-20240615-001"}, nil
		},
	}

	rec := serve(uc, http.MethodPost, "/api/orders",
		`{"product_id":3,"customer_id":9,"start_date":"2024-06-15","delivery_date":"2024-07-15","amount":"125000.50"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "EM-20240615-001", resp.OrderNumber)
}

func TestCreate_InvalidJSON(t *testing.T) {
	rec := serve(&mockOrderUseCase{}, http.MethodPost, "/api/orders", `{"product_id":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "body", decodeError(t, rec).Details[0].Field)
}

func TestCreate_ValidationDetails(t *testing.T) {
	uc := &mockOrderUseCase{
		CreateFunc: func(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
			return nil, apperrors.NewValidationError("validation failed",
				apperrors.ValidationDetail{Field: "delivery_date", Message: "delivery_date must not be before start_date"})
		},
	}

	rec := serve(uc, http.MethodPost, "/api/orders", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "validation failed", body.Message)
	assert.Equal(t, "delivery_date", body.Details[0].Field)
}

func TestUpdate_PassesPartialFields(t *testing.T) {
	uc := &mockOrderUseCase{
		UpdateFunc: func(ctx context.Context, id uint, req dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
			assert.Equal(t, uint(5), id)
			assert.Nil(t, req.Amount)
			require.NotNil(t, req.Notes)
			assert.Equal(t, "rush", *req.Notes)
			return &dto.OrderResponse{ID: 5}, nil
		},
	}

	rec := serve(uc, http.MethodPut, "/api/orders/5", `{"notes":"rush"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetStatus(t *testing.T) {
	uc := &mockOrderUseCase{
		SetStatusFunc: func(ctx context.Context, id uint, req dto.StatusRequest) (*dto.OrderResponse, error) {
			assert.Equal(t, "Verified", req.Status)
			assert.Equal(t, "QA signed", req.Notes)
			return &dto.OrderResponse{ID: id, Status: domain.StageVerified}, nil
		},
	}

	rec := serve(uc, http.MethodPut, "/api/orders/7/status", `{"status":"Verified","notes":"QA signed"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdvance(t *testing.T) {
	var gotNotes []string
	uc := &mockOrderUseCase{
		AdvanceFunc: func(ctx context.Context, id uint, notes string) (*dto.OrderResponse, error) {
			gotNotes = append(gotNotes, notes)
			return &dto.OrderResponse{ID: id}, nil
		},
	}

	assert.Equal(t, http.StatusOK, serve(uc, http.MethodPost, "/api/orders/7/advance", "").Code)
	assert.Equal(t, http.StatusOK, serve(uc, http.MethodPost, "/api/orders/7/advance", `{"notes":"frame welded"}`).Code)
	assert.Equal(t, []string{"", "frame welded"}, gotNotes)
}

func TestAdvance_LastStageConflict(t *testing.T) {
	uc := &mockOrderUseCase{
		AdvanceFunc: func(ctx context.Context, id uint, notes string) (*dto.OrderResponse, error) {
			return nil, apperrors.NewConflictError("order EM-20240615-001 is already at the last stage (Dispatch)")
		},
	}

	rec := serve(uc, http.MethodPost, "/api/orders/7/advance", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecordPayment(t *testing.T) {
	uc := &mockOrderUseCase{
		RecordPaymentFunc: func(ctx context.Context, id uint, req dto.PaymentRequest) (*dto.PaymentResultResponse, error) {
			assert.Equal(t, uint(4), id)
			assert.Equal(t, "NEFT-991", req.Reference)
			return &dto.PaymentResultResponse{Payment: dto.PaymentResponse{ID: 1, OrderID: id}}, nil
		},
	}

	rec := serve(uc, http.MethodPost, "/api/orders/4/payments", `{"amount":"500","reference":"NEFT-991"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHistoryAndPayments(t *testing.T) {
	uc := &mockOrderUseCase{
		HistoryFunc: func(ctx context.Context, id uint) ([]dto.HistoryResponse, error) {
			return []dto.HistoryResponse{{ID: 1, NewStatus: string(domain.FirstStage()), Notes: "Order created"}}, nil
		},
		PaymentsFunc: func(ctx context.Context, id uint) ([]dto.PaymentResponse, error) {
			return []dto.PaymentResponse{}, nil
		},
	}

	rec := serve(uc, http.MethodGet, "/api/orders/2/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []dto.HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Equal(t, "Order created", history[0].Notes)

	rec = serve(uc, http.MethodGet, "/api/orders/2/payments", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestDelete(t *testing.T) {
	uc := &mockOrderUseCase{
		DeleteFunc: func(ctx context.Context, id uint) error {
			if id == 3 {
				return nil
			}
			return apperrors.NewNotFoundError("order not found")
		},
	}

	assert.Equal(t, http.StatusOK, serve(uc, http.MethodDelete, "/api/orders/3", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(uc, http.MethodDelete, "/api/orders/4", "").Code)
}
