package dto

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"mfgtrack/internal/domain"
	apperrors "mfgtrack/internal/errors"
)

// Sortable order columns, keyed by the public sort_by name.
var orderSortColumns = map[string]string{
	"id":            "o.id",
	"order_number":  "o.order_number",
	"start_date":    "o.start_date",
	"delivery_date": "o.delivery_date",
	"amount":        "o.amount",
	"status":        "o.status",
	"created_at":    "o.created_at",
	"product_name":  "p.name",
	"customer_name": "c.name",
}

type OrderFilter struct {
	Status     domain.Stage
	CustomerID int
	ProductID  int
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
	IsDelayed  *bool
	SortBy     string
	SortDesc   bool
	Page       Page
}

// SortColumn is the SQL expression for SortBy. Unknown names were rejected
// when the filter was parsed, so the fallback is only reached for a zero
// filter.
func (f OrderFilter) SortColumn() string {
	if col, ok := orderSortColumns[f.SortBy]; ok {
		return col
	}
	return "o.id"
}

// Query renders the filter back into query parameters, without paging. The
// export link and the table share it.
func (f OrderFilter) Query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.CustomerID > 0 {
		q.Set("customer_id", strconv.Itoa(f.CustomerID))
	}
	if f.ProductID > 0 {
		q.Set("product_id", strconv.Itoa(f.ProductID))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.StartDate != nil {
		q.Set("start_date", f.StartDate.Format(domain.DateLayout))
	}
	if f.EndDate != nil {
		q.Set("end_date", f.EndDate.Format(domain.DateLayout))
	}
	if f.IsDelayed != nil {
		q.Set("is_delayed", strconv.FormatBool(*f.IsDelayed))
	}
	if f.SortBy != "" && f.SortBy != "id" {
		q.Set("sort_by", f.SortBy)
	}
	if !f.SortDesc {
		q.Set("sort_order", "asc")
	}
	return q
}

// ParseOrderFilter reads the list filters. Every problem is reported, not
// just the first one.
func ParseOrderFilter(q url.Values, defaultPerPage, maxPerPage int) (OrderFilter, error) {
	f := OrderFilter{SortBy: "id", SortDesc: true}
	var details []apperrors.ValidationDetail

	if v := strings.TrimSpace(q.Get("status")); v != "" {
		st, err := domain.ParseStage(v)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "status", Message: err.Error()})
		}
		f.Status = st
	}

	if id, d := parseOptionalID(q, "customer_id"); d != nil {
		details = append(details, *d)
	} else {
		f.CustomerID = id
	}
	if id, d := parseOptionalID(q, "product_id"); d != nil {
		details = append(details, *d)
	} else {
		f.ProductID = id
	}

	f.Search = strings.TrimSpace(q.Get("search"))

	for _, field := range []string{"start_date", "end_date"} {
		v := strings.TrimSpace(q.Get(field))
		if v == "" {
			continue
		}
		d, err := domain.ParseDate(v)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: field, Message: "use YYYY-MM-DD"})
			continue
		}
		if field == "start_date" {
			f.StartDate = &d
		} else {
			f.EndDate = &d
		}
	}

	if v := strings.TrimSpace(q.Get("is_delayed")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "is_delayed", Message: "is_delayed must be true or false"})
		} else {
			f.IsDelayed = &b
		}
	}

	if v := strings.TrimSpace(q.Get("sort_by")); v != "" {
		if _, ok := orderSortColumns[v]; !ok {
			details = append(details, apperrors.ValidationDetail{Field: "sort_by", Message: "unsupported sort column " + strconv.Quote(v)})
		} else {
			f.SortBy = v
		}
	}

	switch strings.ToLower(strings.TrimSpace(q.Get("sort_order"))) {
	case "", "desc":
	case "asc":
		f.SortDesc = false
	default:
		details = append(details, apperrors.ValidationDetail{Field: "sort_order", Message: "sort_order must be asc or desc"})
	}

	page, pageDetails := ParsePage(q, defaultPerPage, maxPerPage)
	details = append(details, pageDetails...)
	f.Page = page

	if len(details) > 0 {
		return OrderFilter{}, apperrors.NewValidationError("invalid order filter", details...)
	}
	return f, nil
}
