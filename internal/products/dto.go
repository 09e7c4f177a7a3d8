package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/money"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Age         string          `json:"age"`
	AgeInDays   int             `json:"age_in_days"`
	Breed       string          `json:"breed"`
	WeightKg    *float64        `json:"weight_kg,omitempty"`
	Price       decimal.Decimal `json:"price"`
	PriceCents  int64           `json:"price_cents"`
	Currency    string          `json:"currency"`
	Quantity    int             `json:"quantity"`
	InStock     bool            `json:"in_stock"`
	SoldCount   int             `json:"sold_count"`
	Images      []ImageDTO      `json:"images"`
	Features    []string        `json:"features"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ImageDTO struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// ProductListResult is a page of catalog entries.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	Total      int64        `json:"total"`
	TotalPages int          `json:"total_pages"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(p *models.Product) ProductDTO {
	images := make([]ImageDTO, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ImageDTO{URL: img.URL, Alt: img.Alt})
	}
	features := append([]string{}, p.Features...)
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    string(p.Category),
		Age:         p.Age,
		AgeInDays:   p.AgeInDays,
		Breed:       p.Breed,
		WeightKg:    p.WeightKg,
		Price:       money.FromCents(p.PriceCents),
		PriceCents:  p.PriceCents,
		Currency:    money.Currency,
		Quantity:    p.Quantity,
		InStock:     p.Quantity > 0,
		SoldCount:   p.SoldCount,
		Images:      images,
		Features:    features,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
