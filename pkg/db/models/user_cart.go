package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/gmchicks/storefront-backend/pkg/db/types"
)

// CartLine is one product/quantity pair of a persisted cart.
type CartLine struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// UserCart is the single persisted cart of an authenticated user. Version is
// bumped on every write and guards compare-and-swap replacement.
type UserCart struct {
	UserID    uuid.UUID                   `gorm:"column:user_id;type:uuid;primaryKey"`
	Lines     dbtypes.JSONSlice[CartLine] `gorm:"column:lines;type:jsonb;not null"`
	Version   int64                       `gorm:"column:version;not null;default:1"`
	UpdatedAt time.Time                   `gorm:"column:updated_at;not null"`
}

func (UserCart) TableName() string { return "user_carts" }
