package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"mfgtrack/internal/domain"
)

type CustomerRequest struct {
	Name          string `json:"name"`
	Company       string `json:"company"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	IsActive      *bool  `json:"is_active"`
}

type CustomerResponse struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Company       string    `json:"company"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewCustomerResponse(c domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            c.ID,
		Name:          c.Name,
		Company:       c.Company,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
	}
}

type CustomerStatsResponse struct {
	TotalOrders   int             `json:"total_orders"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

type CustomerDetailResponse struct {
	CustomerResponse
	Stats CustomerStatsResponse `json:"stats"`
}

func NewCustomerDetailResponse(c domain.Customer, stats domain.CustomerStats) CustomerDetailResponse {
	return CustomerDetailResponse{
		CustomerResponse: NewCustomerResponse(c),
		Stats: CustomerStatsResponse{
			TotalOrders:   stats.TotalOrders,
			TotalAmount:   stats.TotalAmount,
			PendingAmount: stats.PendingAmount,
		},
	}
}

type CustomerListResponse struct {
	Customers   []CustomerResponse `json:"customers"`
	Total       int                `json:"total"`
	Pages       int                `json:"pages"`
	CurrentPage int                `json:"current_page"`
}
