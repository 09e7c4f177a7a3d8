package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gmchicks/storefront-backend/pkg/db/models"
	dbtypes "github.com/gmchicks/storefront-backend/pkg/db/types"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository binds an orders repository to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID), params)
}

func (r *repository) List(ctx context.Context, filters AdminFilters, params pagination.Params) (*OrderList, error) {
	q := r.db.WithContext(ctx)
	if filters.Status != nil {
		q = q.Where("order_status = ?", *filters.Status)
	}
	if filters.PaymentStatus != nil {
		q = q.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.UserID != nil {
		q = q.Where("user_id = ?", *filters.UserID)
	}
	return r.list(ctx, q, params)
}

func (r *repository) list(ctx context.Context, q *gorm.DB, params pagination.Params) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = q.Model(&models.Order{}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	list.Orders = rows
	return list, nil
}

// UpdateStatus writes the new status only if the row still holds from, and
// reports whether it did.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, history []models.StatusEntry) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND order_status = ?", id, from).
		Updates(map[string]any{
			"order_status":   to,
			"status_history": dbtypes.JSONSlice[models.StatusEntry](history),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdatePayment(ctx context.Context, id uuid.UUID, update PaymentUpdate) error {
	updates := map[string]any{
		"payment_status": update.Status,
		"updated_at":     time.Now().UTC(),
	}
	if update.Reference != nil {
		updates["payment_reference"] = *update.Reference
	}
	if update.Phone != nil {
		updates["payment_phone"] = *update.Phone
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindPendingBefore returns unpaid pending orders created before cutoff,
// oldest first.
func (r *repository) FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("order_status = ? AND payment_status <> ? AND created_at < ?", enums.OrderStatusPending, enums.PaymentStatusPaid, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	var rows []struct {
		OrderStatus enums.OrderStatus
		Count       int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("order_status, COUNT(*) AS count").
		Group("order_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.OrderStatus] = row.Count
	}
	return counts, nil
}

// RevenueCents sums the totals of orders that were not cancelled.
func (r *repository) RevenueCents(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount_cents), 0)").
		Where("order_status <> ?", enums.OrderStatusCancelled).
		Scan(&total).Error
	return total, err
}
