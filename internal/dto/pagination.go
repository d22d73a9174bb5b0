package dto

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "mfgtrack/internal/errors"
)

func init() {
	// Amounts go out as JSON numbers. Requests accept both numbers and strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Page struct {
	Page    int
	PerPage int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pages is the number of pages needed for total rows, at least 1.
func Pages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// ParsePage reads page and per_page, clamping per_page to max.
func ParsePage(q url.Values, defaultPerPage, max int) (Page, []apperrors.ValidationDetail) {
	var details []apperrors.ValidationDetail
	p := Page{Page: 1, PerPage: defaultPerPage}

	if v := strings.TrimSpace(q.Get("page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			details = append(details, apperrors.ValidationDetail{Field: "page", Message: "page must be a positive integer"})
		} else {
			p.Page = n
		}
	}

	if v := strings.TrimSpace(q.Get("per_page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			details = append(details, apperrors.ValidationDetail{Field: "per_page", Message: "per_page must be a positive integer"})
		} else {
			p.PerPage = n
		}
	}
	if p.PerPage > max {
		p.PerPage = max
	}

	return p, details
}

func parseOptionalID(q url.Values, field string) (int, *apperrors.ValidationDetail) {
	v := strings.TrimSpace(q.Get(field))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, &apperrors.ValidationDetail{Field: field, Message: field + " must be a positive integer"}
	}
	return n, nil
}
