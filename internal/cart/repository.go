package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gmchicks/storefront-backend/pkg/db/models"
	dbtypes "github.com/gmchicks/storefront-backend/pkg/db/types"
)

// ErrVersionConflict means the stored cart changed since it was loaded.
var ErrVersionConflict = errors.New("cart version conflict")

// Repository persists one cart row per user.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Load returns the user's cart, or an empty cart at version 0 when the user
// has never saved one.
func (r *Repository) Load(ctx context.Context, userID uuid.UUID) (PersistedCart, error) {
	var row models.UserCart
	err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PersistedCart{UserID: userID}, nil
	}
	if err != nil {
		return PersistedCart{}, err
	}
	lines := make([]Line, 0, len(row.Lines))
	for _, l := range row.Lines {
		lines = append(lines, Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return NewPersistedCart(row.UserID, row.Version, lines), nil
}

// Save replaces the stored lines only if the row is still at c.Version, then
// advances c.Version. A lost race returns ErrVersionConflict.
func (r *Repository) Save(ctx context.Context, c *PersistedCart) error {
	lines := make(dbtypes.JSONSlice[models.CartLine], 0, c.Len())
	for _, l := range c.Lines() {
		lines = append(lines, models.CartLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	now := time.Now().UTC()

	if c.Version == 0 {
		res := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.UserCart{UserID: c.UserID, Lines: lines, Version: 1, UpdatedAt: now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		c.Version = 1
		return nil
	}

	res := r.db.WithContext(ctx).
		Model(&models.UserCart{}).
		Where("user_id = ? AND version = ?", c.UserID, c.Version).
		Updates(map[string]any{
			"lines":      lines,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	c.Version++
	return nil
}
