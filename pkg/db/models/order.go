package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/gmchicks/storefront-backend/pkg/db/types"
	"github.com/gmchicks/storefront-backend/pkg/enums"
)

// OrderItem snapshots the catalog name and price at placement time.
type OrderItem struct {
	ProductID  uuid.UUID `json:"productId"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Quantity   int       `json:"quantity"`
}

// LineTotalCents is the snapshot price times quantity.
func (i OrderItem) LineTotalCents() int64 {
	return i.PriceCents * int64(i.Quantity)
}

// StatusEntry is one append-only record of the order status history.
type StatusEntry struct {
	Status    enums.OrderStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
}

type DeliveryAddress struct {
	Street     string `gorm:"column:street" json:"street"`
	City       string `gorm:"column:city" json:"city"`
	County     string `gorm:"column:county" json:"county"`
	PostalCode string `gorm:"column:postal_code" json:"postalCode"`
}

type Order struct {
	ID               uuid.UUID                      `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber      string                         `gorm:"column:order_number;not null;uniqueIndex:orders_order_number_key"`
	UserID           uuid.UUID                      `gorm:"column:user_id;type:uuid;not null;index"`
	Items            dbtypes.JSONSlice[OrderItem]   `gorm:"column:items;type:jsonb;not null"`
	TotalAmountCents int64                          `gorm:"column:total_amount_cents;not null"`
	DeliveryAddress  DeliveryAddress                `gorm:"embedded;embeddedPrefix:delivery_"`
	Notes            string                         `gorm:"column:notes;not null;default:''"`
	OrderStatus      enums.OrderStatus              `gorm:"column:order_status;type:text;not null;index"`
	PaymentStatus    enums.PaymentStatus            `gorm:"column:payment_status;type:text;not null"`
	PaymentReference *string                        `gorm:"column:payment_reference"`
	PaymentPhone     *string                        `gorm:"column:payment_phone"`
	StatusHistory    dbtypes.JSONSlice[StatusEntry] `gorm:"column:status_history;type:jsonb;not null"`
	CreatedAt        time.Time                      `gorm:"column:created_at;not null;index"`
	UpdatedAt        time.Time                      `gorm:"column:updated_at;not null"`
}
