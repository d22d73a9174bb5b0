package dto

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfgtrack/internal/domain"
	apperrors "mfgtrack/internal/errors"
)

func TestParseOrderFilter_Defaults(t *testing.T) {
	f, err := ParseOrderFilter(url.Values{}, 20, 100)

	require.NoError(t, err)
	assert.Equal(t, "id", f.SortBy)
	assert.True(t, f.SortDesc)
	assert.Equal(t, Page{Page: 1, PerPage: 20}, f.Page)
	assert.Nil(t, f.IsDelayed)
	assert.Equal(t, "o.id", f.SortColumn())
}

func TestParseOrderFilter_AllFields(t *testing.T) {
	q := url.Values{
		"status":      {"final_assembly"},
		"customer_id": {"3"},
		"product_id":  {"7"},
		"search":      {"  UTM "},
		"start_date":  {"2024-01-01"},
		"end_date":    {"2024-03-31"},
		"is_delayed":  {"true"},
		"sort_by":     {"customer_name"},
		"sort_order":  {"ASC"},
		"page":        {"2"},
		"per_page":    {"500"},
	}

	f, err := ParseOrderFilter(q, 20, 100)
	require.NoError(t, err)

	assert.Equal(t, domain.StageFinalAssembly, f.Status)
	assert.Equal(t, 3, f.CustomerID)
	assert.Equal(t, 7, f.ProductID)
	assert.Equal(t, "UTM", f.Search)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), *f.EndDate)
	require.NotNil(t, f.IsDelayed)
	assert.True(t, *f.IsDelayed)
	assert.Equal(t, "c.name", f.SortColumn())
	assert.False(t, f.SortDesc)
	assert.Equal(t, 100, f.Page.PerPage)
	assert.Equal(t, 100, f.Page.Offset())
}

func TestParseOrderFilter_CollectsAllErrors(t *testing.T) {
	q := url.Values{
		"status":     {"Painting"},
		"start_date": {"01/02/2024"},
		"sort_by":    {"amount; DROP TABLE orders"},
		"page":       {"0"},
	}

	_, err := ParseOrderFilter(q, 20, 100)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	fields := make([]string, 0, len(ve.Details))
	for _, d := range ve.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"status", "start_date", "sort_by", "page"}, fields)
}

func TestOrderFilter_QueryRoundTrip(t *testing.T) {
	q := url.Values{
		"status":     {"Verified"},
		"search":     {"lab"},
		"is_delayed": {"false"},
		"sort_by":    {"amount"},
		"sort_order": {"asc"},
	}
	f, err := ParseOrderFilter(q, 20, 100)
	require.NoError(t, err)

	again, err := ParseOrderFilter(f.Query(), 20, 100)
	require.NoError(t, err)

	assert.Equal(t, f, again)
}

func TestPages(t *testing.T) {
	assert.Equal(t, 1, Pages(0, 20))
	assert.Equal(t, 1, Pages(20, 20))
	assert.Equal(t, 2, Pages(21, 20))
}

func TestNewOrderResponse(t *testing.T) {
	delivered := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	o := domain.Order{
		ID:                 5,
		OrderNumber:        "EM-20240301-005",
		StartDate:          time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		DeliveryDate:       time.Date(2024, time.March, 30, 0, 0, 0, 0, time.UTC),
		ActualDeliveryDate: &delivered,
		Status:             domain.StageDispatch,
		Amount:             decimal.RequireFromString("1200.50"),
		AmountReceived:     decimal.RequireFromString("200.50"),
	}

	resp := NewOrderResponse(o, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-03-01", resp.StartDate)
	assert.Equal(t, "2024-04-02", *resp.ActualDeliveryDate)
	assert.Equal(t, 9, resp.StageIndex)
	assert.False(t, resp.IsDelayed)
	assert.Equal(t, domain.PaymentPartial, resp.PaymentState)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"amount_due":1000`)
}
