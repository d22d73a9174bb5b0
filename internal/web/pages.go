package web

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"mfgtrack/internal/commons"
	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	productrepo "mfgtrack/internal/product/repository"
)

type dashboardView struct {
	KPI          *dto.KPIResponse
	Distribution []dto.StatusCount
	Delayed      []dto.OrderResponse
}

func (u *UI) DashboardPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kpi, err := u.deps.Dashboard.KPIs(ctx, 30)
	if err != nil {
		u.renderPageError(w, r, "Dashboard", err)
		return
	}
	dist, err := u.deps.Dashboard.StatusDistribution(ctx)
	if err != nil {
		u.renderPageError(w, r, "Dashboard", err)
		return
	}
	delayed, err := u.deps.Dashboard.DelayedOrders(ctx, 10)
	if err != nil {
		u.renderPageError(w, r, "Dashboard", err)
		return
	}

	u.renderPage(w, r, http.StatusOK, "dashboard", page{
		Title:  "Dashboard",
		Active: "dashboard",
		Data:   dashboardView{KPI: kpi, Distribution: dist, Delayed: delayed},
	})
}

type ordersTableView struct {
	List      *dto.OrderListResponse
	ExportURL template.URL
	HasPrev   bool
	HasNext   bool
}

type ordersView struct {
	Signals ordersSignals
	Table   ordersTableView
}

func (u *UI) OrdersPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	signals := ordersSignals{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Page:   1,
	}
	signals.Delayed, _ = strconv.ParseBool(q.Get("is_delayed"))
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		signals.Page = p
	}

	table, err := u.ordersTable(r, signals)
	if err != nil {
		u.renderPageError(w, r, "Orders", err)
		return
	}

	u.renderPage(w, r, http.StatusOK, "orders", page{
		Title:  "Orders",
		Active: "orders",
		Data:   ordersView{Signals: signals, Table: *table},
	})
}

func (u *UI) ordersTable(r *http.Request, s ordersSignals) (*ordersTableView, error) {
	q := s.query()
	f, err := dto.ParseOrderFilter(q, u.perPage, u.maxPerPage)
	if err != nil {
		return nil, err
	}

	list, err := u.deps.Orders.List(r.Context(), f)
	if err != nil {
		return nil, err
	}

	q.Del("page")
	return &ordersTableView{
		List:      list,
		ExportURL: exportURL(q),
		HasPrev:   list.CurrentPage > 1,
		HasNext:   list.CurrentPage < list.Pages,
	}, nil
}

// exportURL carries the table filters so the download matches what is shown.
func exportURL(q url.Values) template.URL {
	if len(q) == 0 {
		return "/api/orders/export.csv"
	}
	return template.URL("/api/orders/export.csv?" + q.Encode())
}

type orderFormView struct {
	Products  []dto.ProductResponse
	Customers []dto.CustomerResponse
	Stages    []domain.Stage
	Signals   newOrderSignals
}

func (u *UI) NewOrderPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	firstPage := dto.Page{Page: 1, PerPage: u.maxPerPage}

	products, err := u.deps.Products.List(ctx, productrepo.ListFilter{ActiveOnly: true, Page: firstPage})
	if err != nil {
		u.renderPageError(w, r, "New order", err)
		return
	}
	customers, err := u.deps.Customers.List(ctx, "", firstPage)
	if err != nil {
		u.renderPageError(w, r, "New order", err)
		return
	}

	u.renderPage(w, r, http.StatusOK, "order_new", page{
		Title:  "New order",
		Active: "orders",
		Data: orderFormView{
			Products:  products.Products,
			Customers: customers.Customers,
			Stages:    domain.Stages(),
			Signals:   newOrderSignals{StartDate: domain.Day(timeNow()).Format(domain.DateLayout)},
		},
	})
}

type orderDetailView struct {
	Order   *dto.OrderDetailResponse
	Next    string
	IsLast  bool
	Signals detailSignals
}

func newOrderDetailView(o *dto.OrderDetailResponse) orderDetailView {
	v := orderDetailView{Order: o, Signals: detailSignals{Notes: o.Notes}}
	if next, ok := o.Status.Next(); ok {
		v.Next = string(next)
	} else {
		v.IsLast = true
	}
	return v
}

func (u *UI) OrderPage(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		u.renderPageError(w, r, "Order", err)
		return
	}

	o, err := u.deps.Orders.Get(r.Context(), uint(id))
	if err != nil {
		u.renderPageError(w, r, "Order", err)
		return
	}

	u.renderPage(w, r, http.StatusOK, "order_detail", page{
		Title:  "Order " + o.OrderNumber,
		Active: "orders",
		Data:   newOrderDetailView(o),
	})
}

type searchView struct {
	Signals searchSignals
	Table   interface{}
}

type customersTableView struct {
	List    *dto.CustomerListResponse
	HasPrev bool
	HasNext bool
}

func (u *UI) CustomersPage(w http.ResponseWriter, r *http.Request) {
	s := searchSignals{Search: r.URL.Query().Get("search"), Page: 1}
	table, err := u.customersTable(r, s)
	if err != nil {
		u.renderPageError(w, r, "Customers", err)
		return
	}

	u.renderPage(w, r, http.StatusOK, "customers", page{
		Title:  "Customers",
		Active: "customers",
		Data:   searchView{Signals: s, Table: table},
	})
}

func (u *UI) customersTable(r *http.Request, s searchSignals) (*customersTableView, error) {
	page, details := dto.ParsePage(s.query(), u.perPage, u.maxPerPage)
	if len(details) > 0 {
		return nil, invalidPage(details)
	}

	list, err := u.deps.Customers.List(r.Context(), s.Search, page)
	if err != nil {
		return nil, err
	}
	return &customersTableView{
		List:    list,
		HasPrev: list.CurrentPage > 1,
		HasNext: list.CurrentPage < list.Pages,
	}, nil
}

type productsTableView struct {
	List    *dto.ProductListResponse
	HasPrev bool
	HasNext bool
}

func (u *UI) ProductsPage(w http.ResponseWriter, r *http.Request) {
	s := searchSignals{Search: r.URL.Query().Get("search"), Page: 1}
	table, err := u.productsTable(r, s)
	if err != nil {
		u.renderPageError(w, r, "Products", err)
		return
	}

	u.renderPage(w, r, http.StatusOK, "products", page{
		Title:  "Products",
		Active: "products",
		Data:   searchView{Signals: s, Table: table},
	})
}

func (u *UI) productsTable(r *http.Request, s searchSignals) (*productsTableView, error) {
	page, details := dto.ParsePage(s.query(), u.perPage, u.maxPerPage)
	if len(details) > 0 {
		return nil, invalidPage(details)
	}

	list, err := u.deps.Products.List(r.Context(), productrepo.ListFilter{Search: s.Search, Page: page})
	if err != nil {
		return nil, err
	}
	return &productsTableView{
		List:    list,
		HasPrev: list.CurrentPage > 1,
		HasNext: list.CurrentPage < list.Pages,
	}, nil
}
