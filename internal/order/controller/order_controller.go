package controller

import (
	"bytes"
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mfgtrack/internal/commons"
	"mfgtrack/internal/dto"
	"mfgtrack/internal/order/export"
)

type OrderUseCase interface {
	List(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error)
	Export(ctx context.Context, f dto.OrderFilter) (*dto.OrderExport, error)
	Get(ctx context.Context, id uint) (*dto.OrderDetailResponse, error)
	Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateOrderRequest) (*dto.OrderResponse, error)
	SetStatus(ctx context.Context, id uint, req dto.StatusRequest) (*dto.OrderResponse, error)
	Advance(ctx context.Context, id uint, notes string) (*dto.OrderResponse, error)
	RecordPayment(ctx context.Context, id uint, req dto.PaymentRequest) (*dto.PaymentResultResponse, error)
	History(ctx context.Context, id uint) ([]dto.HistoryResponse, error)
	Payments(ctx context.Context, id uint) ([]dto.PaymentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type OrderController struct {
	useCase        OrderUseCase
	logger         *zap.Logger
	defaultPerPage int
	maxPerPage     int
}

func NewOrderController(useCase OrderUseCase, logger *zap.Logger, defaultPerPage, maxPerPage int) *OrderController {
	return &OrderController{
		useCase:        useCase,
		logger:         logger,
		defaultPerPage: defaultPerPage,
		maxPerPage:     maxPerPage,
	}
}

func (c *OrderController) Routes(r chi.Router) {
	r.Get("/", c.List)
	r.Post("/", c.Create)
	r.Get("/statuses", c.Statuses)
	r.Get("/export.csv", c.Export)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", c.Get)
		r.Put("/", c.Update)
		r.Delete("/", c.Delete)
		r.Put("/status", c.SetStatus)
		r.Post("/advance", c.Advance)
		r.Get("/history", c.History)
		r.Get("/payments", c.Payments)
		r.Post("/payments", c.RecordPayment)
	})
}

func (c *OrderController) requestLogger(r *http.Request) *zap.Logger {
	return c.logger.With(zap.String("traceId", commons.TraceID(r.Context())))
}

func (c *OrderController) orderID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return 0, false
	}
	return uint(id), true
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	f, err := dto.ParseOrderFilter(r.URL.Query(), c.defaultPerPage, c.maxPerPage)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.List(r.Context(), f)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *OrderController) Statuses(w http.ResponseWriter, r *http.Request) {
	commons.WriteJSON(w, http.StatusOK, dto.NewStageInfos(), c.logger)
}

// Export streams the filtered orders as CSV. The body is built in memory
// first so a failure still produces a JSON error response.
func (c *OrderController) Export(w http.ResponseWriter, r *http.Request) {
	f, err := dto.ParseOrderFilter(r.URL.Query(), c.defaultPerPage, c.maxPerPage)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	result, err := c.useCase.Export(r.Context(), f)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteOrders(&buf, result.Orders); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	filename := export.Filename(result.GeneratedAt.UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		c.requestLogger(r).Warn("failed to write export", zap.Error(err))
	}
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	resp, err := c.useCase.Get(r.Context(), id)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.Create(r.Context(), req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, resp, c.logger)
}

func (c *OrderController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateOrderRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.Update(r.Context(), id, req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *OrderController) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	var req dto.StatusRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.SetStatus(r.Context(), id, req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

// Advance accepts an empty body.
func (c *OrderController) Advance(w http.ResponseWriter, r *http.Request) {
	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	var req dto.AdvanceRequest
	if r.ContentLength != 0 {
		if err := commons.DecodeJSON(r, &req); err != nil {
			commons.WriteError(w, r, c.logger, err)
			return
		}
	}

	resp, err := c.useCase.Advance(r.Context(), id, req.Notes)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *OrderController) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.RecordPayment(r.Context(), id, req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, resp, c.logger)
}

func (c *OrderController) History(w http.ResponseWriter, r *http.Request) {
	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	resp, err := c.useCase.History(r.Context(), id)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *OrderController) Payments(w http.ResponseWriter, r *http.Request) {
	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	resp, err := c.useCase.Payments(r.Context(), id)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	if err := c.useCase.Delete(r.Context(), id); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	c.requestLogger(r).Info("order deleted via api", zap.Uint("orderId", id))
	commons.WriteJSON(w, http.StatusOK, map[string]string{"message": "order deleted"}, c.logger)
}
