package web

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "mfgtrack/internal/errors"
)

var timeNow = func() time.Time { return time.Now().UTC() }

// ordersSignals mirrors the filter bar of the orders page.
type ordersSignals struct {
	Search  string `json:"search"`
	Status  string `json:"status"`
	Delayed bool   `json:"delayed"`
	Page    int    `json:"page"`
}

func (s ordersSignals) query() url.Values {
	q := url.Values{}
	if v := strings.TrimSpace(s.Search); v != "" {
		q.Set("search", v)
	}
	if s.Status != "" {
		q.Set("status", s.Status)
	}
	if s.Delayed {
		q.Set("is_delayed", "true")
	}
	if s.Page > 1 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	return q
}

type searchSignals struct {
	Search string `json:"search"`
	Page   int    `json:"page"`
}

func (s searchSignals) query() url.Values {
	q := url.Values{}
	if s.Page > 1 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	return q
}

func invalidPage(details []apperrors.ValidationDetail) error {
	return apperrors.NewValidationError("invalid pagination", details...)
}

// newOrderSignals is the new-order form. Every value arrives as the string
// the input holds.
type newOrderSignals struct {
	ProductID      string `json:"productId"`
	CustomerID     string `json:"customerId"`
	StartDate      string `json:"startDate"`
	DeliveryDate   string `json:"deliveryDate"`
	Status         string `json:"status"`
	Amount         string `json:"amount"`
	AmountReceived string `json:"amountReceived"`
	OrderNumber    string `json:"orderNumber"`
	Notes          string `json:"notes"`
}

type formField struct {
	name  string
	label string
	value func(s newOrderSignals) string
}

var requiredOrderFields = []formField{
	{"product_id", "Product", func(s newOrderSignals) string { return s.ProductID }},
	{"customer_id", "Customer", func(s newOrderSignals) string { return s.CustomerID }},
	{"start_date", "Start date", func(s newOrderSignals) string { return s.StartDate }},
	{"delivery_date", "Delivery date", func(s newOrderSignals) string { return s.DeliveryDate }},
	{"amount", "Amount", func(s newOrderSignals) string { return s.Amount }},
}

// missingFields lists the required inputs left blank. Saving is blocked
// while it is non-empty.
func (s newOrderSignals) missingFields() []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail
	for _, f := range requiredOrderFields {
		if strings.TrimSpace(f.value(s)) == "" {
			details = append(details, apperrors.ValidationDetail{Field: f.name, Message: f.label + " is required"})
		}
	}
	return details
}

type detailSignals struct {
	Stage            string `json:"stage"`
	StageNotes       string `json:"stageNotes"`
	PaymentAmount    string `json:"paymentAmount"`
	PaymentDate      string `json:"paymentDate"`
	PaymentReference string `json:"paymentReference"`
	Notes            string `json:"notes"`
}

// formID parses a select value holding an id.
func formID(field, v string) (int, *apperrors.ValidationDetail) {
	id, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || id <= 0 {
		return 0, &apperrors.ValidationDetail{Field: field, Message: "choose a valid option"}
	}
	return id, nil
}

// formAmount parses an optional money input; an empty string yields nil.
func formAmount(field, v string) (*decimal.Decimal, *apperrors.ValidationDetail) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, &apperrors.ValidationDetail{Field: field, Message: "enter a number"}
	}
	return &d, nil
}
