package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	List(ctx context.Context, filters AdminFilters, params pagination.Params) (*OrderList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, history []models.StatusEntry) (bool, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, update PaymentUpdate) error
	FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
	RevenueCents(ctx context.Context) (int64, error)
}

// Inventory reads and adjusts product stock inside the caller's transaction.
type Inventory interface {
	Snapshot(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]models.Product, error)
	Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// AdminFilters narrows the back-office order listing.
type AdminFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	UserID        *uuid.UUID
}

// PaymentUpdate records the outcome of a payment initiation.
type PaymentUpdate struct {
	Status    enums.PaymentStatus
	Reference *string
	Phone     *string
}
