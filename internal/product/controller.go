package product

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mfgtrack/internal/commons"
	"mfgtrack/internal/dto"
)

type Controller struct {
	service        Service
	logger         *zap.Logger
	defaultPerPage int
	maxPerPage     int
}

func NewController(service Service, logger *zap.Logger, defaultPerPage, maxPerPage int) *Controller {
	return &Controller{
		service:        service,
		logger:         logger,
		defaultPerPage: defaultPerPage,
		maxPerPage:     maxPerPage,
	}
}

func (c *Controller) Routes(r chi.Router) {
	r.Get("/", c.HandleList)
	r.Post("/", c.HandleCreate)
	r.Get("/families", c.HandleListFamilies)
	r.Post("/families", c.HandleCreateFamily)
	r.Get("/{id}", c.HandleGet)
	r.Put("/{id}", c.HandleUpdate)
	r.Delete("/{id}", c.HandleDelete)
}

func (c *Controller) HandleList(w http.ResponseWriter, r *http.Request) {
	f, err := ParseListFilter(r.URL.Query(), c.defaultPerPage, c.maxPerPage)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.service.List(r.Context(), f)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *Controller) HandleGet(w http.ResponseWriter, r *http.Request) {
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

func (c *Controller) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequest
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

func (c *Controller) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var req dto.ProductRequest
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

func (c *Controller) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, map[string]string{"message": "product deleted"}, c.logger)
}

func (c *Controller) HandleListFamilies(w http.ResponseWriter, r *http.Request) {
	families, err := c.service.ListFamilies(r.Context())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, families, c.logger)
}

func (c *Controller) HandleCreateFamily(w http.ResponseWriter, r *http.Request) {
	var req dto.FamilyRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.service.CreateFamily(r.Context(), req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, resp, c.logger)
}
