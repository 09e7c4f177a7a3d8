package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gmchicks/storefront-backend/pkg/db/dbtest"
	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

func TestRepositoryDecrementStockIsConditional(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	product := dbtest.SeedProduct(t, conn, "Kuroiler chicks", 15000, 5)

	if err := repo.DecrementStock(ctx, product.ID, 3); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if err := repo.DecrementStock(ctx, product.ID, 3); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := dbtest.ProductQuantity(t, conn, product); got != 2 {
		t.Fatalf("expected 2 remaining, got %d", got)
	}

	reloaded, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if reloaded.SoldCount != 3 {
		t.Fatalf("expected sold count 3, got %d", reloaded.SoldCount)
	}
}

func TestRepositoryIncrementStockRestoresSoldCount(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	product := dbtest.SeedProduct(t, conn, "Layer chicks", 12000, 10)

	if err := repo.DecrementStock(ctx, product.ID, 4); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if err := repo.IncrementStock(ctx, product.ID, 4); err != nil {
		t.Fatalf("increment: %v", err)
	}
	reloaded, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if reloaded.Quantity != 10 || reloaded.SoldCount != 0 {
		t.Fatalf("expected quantity 10 sold 0, got %d/%d", reloaded.Quantity, reloaded.SoldCount)
	}
}

func TestRepositoryFindByIDsSkipsMissing(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	a := dbtest.SeedProduct(t, conn, "A", 100, 1)
	b := dbtest.SeedProduct(t, conn, "B", 100, 1)

	rows, err := repo.FindByIDs(context.Background(), []uuid.UUID{a.ID, b.ID, uuid.New()})
	if err != nil {
		t.Fatalf("find by ids: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestRepositoryListFiltersAndSorts(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	cheap := dbtest.SeedProduct(t, conn, "Kienyeji chicks", 8000, 10)
	pricey := dbtest.SeedProduct(t, conn, "Rainbow Rooster", 25000, 10)
	layer := &models.Product{
		Name:       "Point of lay hens",
		Category:   enums.ProductCategoryLayer,
		PriceCents: 90000,
		Quantity:   3,
		Images:     []models.ProductImage{},
		Features:   []string{},
		IsActive:   true,
		CreatedAt:  time.Now().Add(time.Hour),
	}
	if err := repo.Create(ctx, layer); err != nil {
		t.Fatalf("create layer: %v", err)
	}
	hidden := dbtest.SeedProduct(t, conn, "Retired listing", 100, 0)
	if err := conn.Model(hidden).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	category := enums.ProductCategoryChick
	rows, total, err := repo.List(ctx, ListInput{
		Category: &category,
		Sort:     enums.ProductSortPriceDesc,
		Page:     pagination.PageParams{Page: 1, Limit: 10},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 chick products, got total=%d rows=%d", total, len(rows))
	}
	if rows[0].ID != pricey.ID || rows[1].ID != cheap.ID {
		t.Fatalf("expected price_desc ordering")
	}

	rows, total, err = repo.List(ctx, ListInput{Search: "ROOSTER"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || rows[0].ID != pricey.ID {
		t.Fatalf("expected case-insensitive search hit, got %d", total)
	}

	rows, total, err = repo.List(ctx, ListInput{Page: pagination.PageParams{Page: 2, Limit: 2}})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if total != 3 || len(rows) != 1 {
		t.Fatalf("expected 1 row on page 2 of 3 active, got total=%d rows=%d", total, len(rows))
	}

	_, total, err = repo.List(ctx, ListInput{IncludeInactive: true})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected inactive rows included, got %d", total)
	}
}

func TestRepositoryListEscapesWildcards(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	dbtest.SeedProduct(t, conn, "Broilers", 100, 1)

	_, total, err := repo.List(context.Background(), ListInput{Search: "%"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected literal percent search to match nothing, got %d", total)
	}
}

func TestRepositoryCountLowStock(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	dbtest.SeedProduct(t, conn, "Few", 100, 5)
	dbtest.SeedProduct(t, conn, "Many", 100, 50)

	n, err := repo.CountLowStock(context.Background(), 20)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 low stock product, got %d", n)
	}
}
