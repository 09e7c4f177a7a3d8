package visits

import (
	"time"

	"github.com/google/uuid"

	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
)

type VisitDTO struct {
	ID               uuid.UUID           `json:"id"`
	UserID           uuid.UUID           `json:"user_id"`
	VisitDate        string              `json:"visit_date"`
	VisitTime        string              `json:"visit_time"`
	NumberOfVisitors int                 `json:"number_of_visitors"`
	Purpose          enums.VisitPurpose  `json:"purpose"`
	Notes            string              `json:"notes,omitempty"`
	Status           enums.VisitStatus   `json:"status"`
	NextStatuses     []enums.VisitStatus `json:"next_statuses"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type VisitPage struct {
	Visits     []VisitDTO `json:"visits"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type SlotDTO struct {
	Time      string `json:"time"`
	Booked    int    `json:"booked"`
	SpotsLeft int    `json:"spots_left"`
	Available bool   `json:"available"`
}

// AvailabilityDTO summarizes the bookable seats of one day.
type AvailabilityDTO struct {
	Date      string    `json:"date"`
	Available bool      `json:"available"`
	SpotsLeft int       `json:"spots_left"`
	Slots     []SlotDTO `json:"slots"`
}

func NewVisitDTO(v *models.Visit) VisitDTO {
	next := make([]enums.VisitStatus, 0, 2)
	for _, candidate := range []enums.VisitStatus{
		enums.VisitStatusConfirmed,
		enums.VisitStatusCompleted,
		enums.VisitStatusCancelled,
	} {
		if v.Status.CanTransitionTo(candidate) {
			next = append(next, candidate)
		}
	}
	return VisitDTO{
		ID:               v.ID,
		UserID:           v.UserID,
		VisitDate:        v.VisitDate,
		VisitTime:        v.VisitTime,
		NumberOfVisitors: v.NumberOfVisitors,
		Purpose:          v.Purpose,
		Notes:            v.Notes,
		Status:           v.Status,
		NextStatuses:     next,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

func newVisitPage(rows []models.Visit, next string) *VisitPage {
	page := &VisitPage{Visits: make([]VisitDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		page.Visits = append(page.Visits, NewVisitDTO(&rows[i]))
	}
	return page
}
