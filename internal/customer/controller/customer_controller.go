package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mfgtrack/internal/commons"
	"mfgtrack/internal/dto"
	apperrors "mfgtrack/internal/errors"
)

type CustomerService interface {
	List(ctx context.Context, search string, page dto.Page) (*dto.CustomerListResponse, error)
	Get(ctx context.Context, id int) (*dto.CustomerDetailResponse, error)
	Create(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	Update(ctx context.Context, id int, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	Delete(ctx context.Context, id int) error
}

type CustomerController struct {
	service        CustomerService
	logger         *zap.Logger
	defaultPerPage int
	maxPerPage     int
}

func NewCustomerController(service CustomerService, logger *zap.Logger, defaultPerPage, maxPerPage int) *CustomerController {
	return &CustomerController{
		service:        service,
		logger:         logger,
		defaultPerPage: defaultPerPage,
		maxPerPage:     maxPerPage,
	}
}

func (c *CustomerController) Routes(r chi.Router) {
	r.Get("/", c.List)
	r.Post("/", c.Create)
	r.Get("/{id}", c.Get)
	r.Put("/{id}", c.Update)
	r.Delete("/{id}", c.Delete)
}

func (c *CustomerController) List(w http.ResponseWriter, r *http.Request) {
	page, details := dto.ParsePage(r.URL.Query(), c.defaultPerPage, c.maxPerPage)
	if len(details) > 0 {
		commons.WriteValidationError(w, r, c.logger, "invalid pagination", details...)
		return
	}

	resp, err := c.service.List(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *CustomerController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.service.Get(r.Context(), id)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *CustomerController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CustomerRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.service.Create(r.Context(), req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, resp, c.logger)
}

func (c *CustomerController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var req dto.CustomerRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.service.Update(r.Context(), id, req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *CustomerController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		if _, ok := apperrors.IsConflictError(err); ok {
			c.logger.Warn("customer delete blocked", zap.Int("customerId", id))
		}
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, map[string]string{"message": "customer deleted"}, c.logger)
}
