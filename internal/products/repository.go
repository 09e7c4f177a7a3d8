package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
)

// ErrInsufficientStock is returned when a conditional decrement matches no row.
var ErrInsufficientStock = errors.New("insufficient stock")

// Repository wraps product persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads every product that exists among ids, in no particular order.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DecrementStock removes qty units only while at least qty remain. The check
// and the write are one statement, so concurrent buyers cannot oversell.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE products
		 SET quantity = quantity - ?, sold_count = sold_count + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND quantity >= ?`,
		qty, qty, id, qty,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// IncrementStock returns qty units to the shelf, e.g. after a cancellation.
func (r *Repository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE products
		 SET quantity = quantity + ?,
		     sold_count = CASE WHEN sold_count >= ? THEN sold_count - ? ELSE 0 END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		qty, qty, qty, id,
	).Error
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes the product and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// List applies filters, ordering and offset pagination, and returns the total
// number of matches before pagination.
func (r *Repository) List(ctx context.Context, input ListInput) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if !input.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if input.Category != nil {
		q = q.Where("category = ?", *input.Category)
	}
	if term := strings.ToLower(strings.TrimSpace(input.Search)); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR LOWER(breed) LIKE ? ESCAPE '\\')", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := input.Page.Normalize()
	var rows []models.Product
	err := q.Order(orderClause(input.Sort)).
		Order("id ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountLowStock counts active products with fewer than threshold units.
func (r *Repository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("is_active = ? AND quantity < ?", true, threshold).
		Count(&n).Error
	return n, err
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

func orderClause(sort enums.ProductSort) string {
	switch sort {
	case enums.ProductSortPriceAsc:
		return "price_cents ASC"
	case enums.ProductSortPriceDesc:
		return "price_cents DESC"
	case enums.ProductSortPopular:
		return "sold_count DESC"
	default:
		return "created_at DESC"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
