package dbtest

import (
	"testing"

	"gorm.io/gorm"

	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
)

// SeedProduct inserts an active chick listing with the given price and stock.
func SeedProduct(t testing.TB, conn *gorm.DB, name string, priceCents int64, quantity int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       name,
		Category:   enums.ProductCategoryChick,
		Breed:      "Kienyeji",
		PriceCents: priceCents,
		Quantity:   quantity,
		Images:     []models.ProductImage{},
		Features:   []string{},
		IsActive:   true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return product
}

// ProductQuantity reads the current stock for id.
func ProductQuantity(t testing.TB, conn *gorm.DB, product *models.Product) int {
	t.Helper()
	var fresh models.Product
	if err := conn.First(&fresh, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return fresh.Quantity
}
