package visits

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

// ErrSlotFull is returned when a slot cannot take the requested seats.
var ErrSlotFull = errors.New("visit slot full")

// Repository persists visits and their slot counters.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ReserveSeats adds seats to the slot counter only while the total stays
// within capacity.
func (r *Repository) ReserveSeats(ctx context.Context, date, slot string, seats, capacity int) error {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.VisitSlot{VisitDate: date, VisitTime: slot}).Error; err != nil {
		return err
	}
	res := db.Exec(
		`UPDATE visit_slots SET booked = booked + ? WHERE visit_date = ? AND visit_time = ? AND booked + ? <= ?`,
		seats, date, slot, seats, capacity,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSlotFull
	}
	return nil
}

func (r *Repository) ReleaseSeats(ctx context.Context, date, slot string, seats int) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE visit_slots SET booked = CASE WHEN booked >= ? THEN booked - ? ELSE 0 END WHERE visit_date = ? AND visit_time = ?`,
		seats, seats, date, slot,
	).Error
}

// BookedBySlot returns the booked seats per slot time for date.
func (r *Repository) BookedBySlot(ctx context.Context, date string) (map[string]int, error) {
	var rows []models.VisitSlot
	if err := r.db.WithContext(ctx).Where("visit_date = ?", date).Find(&rows).Error; err != nil {
		return nil, err
	}
	booked := make(map[string]int, len(rows))
	for _, row := range rows {
		booked[row.VisitTime] = row.Booked
	}
	return booked, nil
}

func (r *Repository) Create(ctx context.Context, visit *models.Visit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Visit, error) {
	var visit models.Visit
	if err := r.db.WithContext(ctx).First(&visit, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &visit, nil
}

// UpdateStatus moves the visit only if it still holds from.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.VisitStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Visit{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	return res.RowsAffected > 0, res.Error
}

// ListFilters narrows visit listings.
type ListFilters struct {
	UserID *uuid.UUID
	Status *enums.VisitStatus
	Date   string
}

// List pages visits newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Visit, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	q := r.db.WithContext(ctx).Model(&models.Visit{})
	if filters.UserID != nil {
		q = q.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.Date != "" {
		q = q.Where("visit_date = ?", filters.Date)
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Visit
	if err := q.Order("created_at DESC").Order("id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	next := ""
	if len(rows) > limit {
		last := rows[limit-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (r *Repository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Visit{}).Where("status = ?", enums.VisitStatusPending).Count(&n).Error
	return n, err
}
