package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"mfgtrack/internal/domain"
)

type ProductRequest struct {
	Name               string           `json:"name"`
	Code               *string          `json:"code"`
	Description        string           `json:"description"`
	FamilyID           *int             `json:"family_id"`
	Tags               []string         `json:"tags"`
	BasePrice          *decimal.Decimal `json:"base_price"`
	ProductionTimeDays int              `json:"production_time_days"`
	IsActive           *bool            `json:"is_active"`
}

type ProductResponse struct {
	ID                 int             `json:"id"`
	Name               string          `json:"name"`
	Code               *string         `json:"code"`
	Description        string          `json:"description"`
	FamilyID           *int            `json:"family_id"`
	FamilyName         string          `json:"family_name"`
	Tags               []string        `json:"tags"`
	BasePrice          decimal.Decimal `json:"base_price"`
	ProductionTimeDays int             `json:"production_time_days"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
}

func NewProductResponse(p domain.Product) ProductResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Code:               p.Code,
		Description:        p.Description,
		FamilyID:           p.FamilyID,
		FamilyName:         p.FamilyName,
		Tags:               tags,
		BasePrice:          p.BasePrice,
		ProductionTimeDays: p.ProductionTimeDays,
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
	}
}

type ProductListResponse struct {
	Products    []ProductResponse `json:"products"`
	Total       int               `json:"total"`
	Pages       int               `json:"pages"`
	CurrentPage int               `json:"current_page"`
}

type FamilyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type FamilyResponse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewFamilyResponse(f domain.ProductFamily) FamilyResponse {
	return FamilyResponse{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
	}
}
