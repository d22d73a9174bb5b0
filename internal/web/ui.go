// Package web serves the browser interface. Pages are rendered with
// html/template; interactive parts talk Datastar over SSE and patch
// fragments in place.
package web

import (
	"bytes"
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"mfgtrack/internal/commons"
	"mfgtrack/internal/dto"
	productrepo "mfgtrack/internal/product/repository"
)

type OrderUseCase interface {
	List(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error)
	Get(ctx context.Context, id uint) (*dto.OrderDetailResponse, error)
	Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateOrderRequest) (*dto.OrderResponse, error)
	SetStatus(ctx context.Context, id uint, req dto.StatusRequest) (*dto.OrderResponse, error)
	Advance(ctx context.Context, id uint, notes string) (*dto.OrderResponse, error)
	RecordPayment(ctx context.Context, id uint, req dto.PaymentRequest) (*dto.PaymentResultResponse, error)
}

type DashboardService interface {
	KPIs(ctx context.Context, days int) (*dto.KPIResponse, error)
	StatusDistribution(ctx context.Context) ([]dto.StatusCount, error)
	DelayedOrders(ctx context.Context, limit int) ([]dto.OrderResponse, error)
}

type CustomerService interface {
	List(ctx context.Context, search string, page dto.Page) (*dto.CustomerListResponse, error)
}

type ProductService interface {
	List(ctx context.Context, f productrepo.ListFilter) (*dto.ProductListResponse, error)
}

type Deps struct {
	Orders    OrderUseCase
	Dashboard DashboardService
	Customers CustomerService
	Products  ProductService
}

type UI struct {
	deps       Deps
	views      *views
	logger     *zap.Logger
	perPage    int
	maxPerPage int
}

func NewUI(deps Deps, logger *zap.Logger, perPage, maxPerPage int) *UI {
	return &UI{
		deps:       deps,
		views:      mustParseViews(),
		logger:     logger,
		perPage:    perPage,
		maxPerPage: maxPerPage,
	}
}

func (u *UI) Routes(r chi.Router) {
	r.Get("/", u.DashboardPage)
	r.Get("/orders", u.OrdersPage)
	r.Get("/orders/new", u.NewOrderPage)
	r.Get("/orders/{id}", u.OrderPage)
	r.Get("/customers", u.CustomersPage)
	r.Get("/products", u.ProductsPage)

	r.Route("/ui", func(r chi.Router) {
		r.Get("/orders/table", u.OrdersTable)
		r.Post("/orders", u.CreateOrder)
		r.Post("/orders/{id}/advance", u.AdvanceOrder)
		r.Post("/orders/{id}/status", u.SetOrderStatus)
		r.Post("/orders/{id}/payments", u.RecordPayment)
		r.Post("/orders/{id}/notes", u.SaveNotes)
		r.Get("/customers/table", u.CustomersTable)
		r.Get("/products/table", u.ProductsTable)
	})
}

type page struct {
	Title  string
	Active string
	Error  string
	Data   interface{}
}

func (u *UI) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	var buf bytes.Buffer
	if err := u.views.page(&buf, name, p); err != nil {
		u.logger.Error("failed to render page",
			zap.String("traceId", commons.TraceID(r.Context())),
			zap.String("page", name),
			zap.Error(err),
		)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderPageError shows the failure in the banner of an otherwise empty
// page.
func (u *UI) renderPageError(w http.ResponseWriter, r *http.Request, title string, err error) {
	status, body := commons.ErrorBody(commons.TraceID(r.Context()), err)
	u.logFailure(r, status, err)
	u.renderPage(w, r, status, "error", page{Title: title, Error: body.Message})
}

func (u *UI) logFailure(r *http.Request, status int, err error) {
	logger := u.logger.With(zap.String("traceId", commons.TraceID(r.Context())), zap.Error(err))
	if status >= http.StatusInternalServerError {
		logger.Error("ui request failed")
		return
	}
	logger.Warn("ui request rejected")
}

// fragment renders a named partial for an SSE patch.
func (u *UI) fragment(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := u.views.partial(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type bannerView struct {
	Message string
	Details []string
}

// patchBanner reports err in the page banner and leaves everything else as
// it was.
func (u *UI) patchBanner(sse *datastar.ServerSentEventGenerator, r *http.Request, err error) {
	status, body := commons.ErrorBody(commons.TraceID(r.Context()), err)
	u.logFailure(r, status, err)

	view := bannerView{Message: body.Message}
	for _, d := range body.Details {
		view.Details = append(view.Details, d.Field+": "+d.Message)
	}
	u.patch(sse, r, "banner", view)
}

func (u *UI) clearBanner(sse *datastar.ServerSentEventGenerator, r *http.Request) {
	u.patch(sse, r, "banner", bannerView{})
}

func (u *UI) patch(sse *datastar.ServerSentEventGenerator, r *http.Request, name string, data interface{}) {
	html, err := u.fragment(name, data)
	if err != nil {
		u.logger.Error("failed to render fragment",
			zap.String("traceId", commons.TraceID(r.Context())),
			zap.String("fragment", name),
			zap.Error(err),
		)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		u.logger.Debug("sse patch not delivered", zap.String("fragment", name), zap.Error(err))
	}
}
