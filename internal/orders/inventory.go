package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gmchicks/storefront-backend/internal/products"
	"github.com/gmchicks/storefront-backend/pkg/db/models"
)

type productInventory struct{}

// NewInventory returns the catalog-backed Inventory.
func NewInventory() Inventory {
	return productInventory{}
}

func (productInventory) Snapshot(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]models.Product, error) {
	return products.NewRepository(tx).FindByIDs(ctx, ids)
}

func (productInventory) Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	return products.NewRepository(tx).DecrementStock(ctx, productID, qty)
}

func (productInventory) Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	return products.NewRepository(tx).IncrementStock(ctx, productID, qty)
}
