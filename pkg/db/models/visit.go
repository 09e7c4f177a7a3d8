package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gmchicks/storefront-backend/pkg/enums"
)

type Visit struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	VisitDate        string             `gorm:"column:visit_date;not null;index"`
	VisitTime        string             `gorm:"column:visit_time;not null"`
	NumberOfVisitors int                `gorm:"column:number_of_visitors;not null"`
	Purpose          enums.VisitPurpose `gorm:"column:purpose;type:text;not null"`
	Notes            string             `gorm:"column:notes;not null;default:''"`
	Status           enums.VisitStatus  `gorm:"column:status;type:text;not null"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// VisitSlot counts the seats booked for a date and time.
type VisitSlot struct {
	VisitDate string `gorm:"column:visit_date;primaryKey"`
	VisitTime string `gorm:"column:visit_time;primaryKey"`
	Booked    int    `gorm:"column:booked;not null;default:0"`
}
