package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/gmchicks/storefront-backend/pkg/db/types"
	"github.com/gmchicks/storefront-backend/pkg/enums"
)

// ProductImage is a plain URL reference; uploads are handled elsewhere.
type ProductImage struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Product is a catalog listing. Quantity is the sellable stock.
type Product struct {
	ID          uuid.UUID                       `gorm:"column:id;type:uuid;primaryKey"`
	Name        string                          `gorm:"column:name;not null"`
	Description string                          `gorm:"column:description;not null;default:''"`
	Category    enums.ProductCategory           `gorm:"column:category;type:text;not null"`
	Age         string                          `gorm:"column:age;not null;default:''"`
	AgeInDays   int                             `gorm:"column:age_in_days;not null;default:0"`
	Breed       string                          `gorm:"column:breed;not null;default:''"`
	WeightKg    *float64                        `gorm:"column:weight_kg"`
	PriceCents  int64                           `gorm:"column:price_cents;not null"`
	Quantity    int                             `gorm:"column:quantity;not null;default:0"`
	SoldCount   int                             `gorm:"column:sold_count;not null;default:0"`
	Images      dbtypes.JSONSlice[ProductImage] `gorm:"column:images;type:jsonb;not null"`
	Features    dbtypes.JSONSlice[string]       `gorm:"column:features;type:jsonb;not null"`
	IsActive    bool                            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time                       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                       `gorm:"column:updated_at;autoUpdateTime"`
}
