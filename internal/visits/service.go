package visits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gmchicks/storefront-backend/pkg/auth"
	"github.com/gmchicks/storefront-backend/pkg/config"
	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
	"github.com/gmchicks/storefront-backend/pkg/logger"
	"github.com/gmchicks/storefront-backend/pkg/outbox"
	"github.com/gmchicks/storefront-backend/pkg/outbox/payloads"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

const dateLayout = "2006-01-02"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service books farm visits against per-slot capacity.
type Service interface {
	Availability(ctx context.Context, date string) (*AvailabilityDTO, error)
	Book(ctx context.Context, input BookInput) (*VisitDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*VisitPage, error)
	ListAll(ctx context.Context, filters ListFilters, params pagination.Params) (*VisitPage, error)
	Transition(ctx context.Context, identity auth.Identity, visitID uuid.UUID, next enums.VisitStatus) (*VisitDTO, error)
	CountPending(ctx context.Context) (int64, error)
}

type BookInput struct {
	UserID           uuid.UUID
	VisitDate        string
	VisitTime        string
	NumberOfVisitors int
	Purpose          enums.VisitPurpose
	Notes            string
}

type service struct {
	repo     *Repository
	tx       txRunner
	outbox   outboxPublisher
	logg     *logger.Logger
	capacity int
	horizon  int
	loc      *time.Location
	now      func() time.Time
}

// NewService builds the visit service. now may be nil.
func NewService(repo *Repository, tx txRunner, emitter outboxPublisher, cfg config.VisitsConfig, logg *logger.Logger, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("visits repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load farm timezone %q: %w", cfg.TimeZone, err)
	}
	if cfg.SlotCapacity <= 0 {
		return nil, fmt.Errorf("slot capacity must be positive")
	}
	if cfg.HorizonDays <= 0 {
		return nil, fmt.Errorf("booking horizon must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   emitter,
		logg:     logg,
		capacity: cfg.SlotCapacity,
		horizon:  cfg.HorizonDays,
		loc:      loc,
		now:      now,
	}, nil
}

// bookingWindow returns the first and last bookable dates in farm local time.
func (s *service) bookingWindow() (time.Time, time.Time) {
	local := s.now().In(s.loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return today.AddDate(0, 0, 1), today.AddDate(0, 0, s.horizon)
}

func (s *service) parseDate(raw string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), s.loc)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "visit date must be formatted YYYY-MM-DD")
	}
	return day, nil
}

func (s *service) inWindow(day time.Time) bool {
	first, last := s.bookingWindow()
	return !day.Before(first) && !day.After(last)
}

func (s *service) Availability(ctx context.Context, date string) (*AvailabilityDTO, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}
	key := day.Format(dateLayout)
	booked, err := s.repo.BookedBySlot(ctx, key)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "load slot availability")
	}

	open := s.inWindow(day)
	out := &AvailabilityDTO{Date: key, Slots: make([]SlotDTO, 0, len(Slots))}
	for _, slot := range Slots {
		left := max(s.capacity-booked[slot], 0)
		if !open {
			left = 0
		}
		out.Slots = append(out.Slots, SlotDTO{
			Time:      slot,
			Booked:    booked[slot],
			SpotsLeft: left,
			Available: left > 0,
		})
		out.SpotsLeft += left
	}
	out.Available = out.SpotsLeft > 0
	return out, nil
}

func (s *service) Book(ctx context.Context, input BookInput) (*VisitDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	day, err := s.parseDate(input.VisitDate)
	if err != nil {
		return nil, err
	}
	if !s.inWindow(day) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("visits can be booked from tomorrow up to %d days ahead", s.horizon))
	}
	slot := strings.TrimSpace(input.VisitTime)
	if slot == "" {
		slot = DefaultSlot
	}
	if !IsValidSlot(slot) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown visit time %q", slot)).
			WithDetails(map[string]any{"slots": Slots})
	}
	if input.NumberOfVisitors < MinVisitors || input.NumberOfVisitors > MaxVisitors {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("number of visitors must be between %d and %d", MinVisitors, MaxVisitors))
	}
	purpose := input.Purpose
	if purpose == "" {
		purpose = enums.VisitPurposeTour
	}
	if !purpose.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown visit purpose %q", purpose))
	}

	visit := &models.Visit{
		UserID:           input.UserID,
		VisitDate:        day.Format(dateLayout),
		VisitTime:        slot,
		NumberOfVisitors: input.NumberOfVisitors,
		Purpose:          purpose,
		Notes:            strings.TrimSpace(input.Notes),
		Status:           enums.VisitStatusPending,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ReserveSeats(ctx, visit.VisitDate, slot, visit.NumberOfVisitors, s.capacity); err != nil {
			if errors.Is(err, ErrSlotFull) {
				return pkgerrors.New(pkgerrors.CodeConflict, "selected time slot is fully booked").
					WithDetails(map[string]any{"date": visit.VisitDate, "time": slot})
			}
			return pkgerrors.Unavailable(err, "reserve visit slot")
		}
		if err := repo.Create(ctx, visit); err != nil {
			return pkgerrors.Unavailable(err, "create visit")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventVisitBooked,
			AggregateType: enums.AggregateVisit,
			AggregateID:   visit.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: string(enums.RoleCustomer)},
			Data: payloads.VisitBookedEvent{
				VisitID:          visit.ID,
				UserID:           visit.UserID,
				VisitDate:        visit.VisitDate,
				VisitTime:        visit.VisitTime,
				NumberOfVisitors: visit.NumberOfVisitors,
				Purpose:          visit.Purpose,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"visit_id":   visit.ID.String(),
		"visit_date": visit.VisitDate,
		"visit_time": visit.VisitTime,
		"visitors":   visit.NumberOfVisitors,
	})
	s.logg.Info(logCtx, "farm visit booked")

	dto := NewVisitDTO(visit)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*VisitPage, error) {
	return s.list(ctx, ListFilters{UserID: &userID}, params)
}

func (s *service) ListAll(ctx context.Context, filters ListFilters, params pagination.Params) (*VisitPage, error) {
	if filters.Date != "" {
		day, err := s.parseDate(filters.Date)
		if err != nil {
			return nil, err
		}
		filters.Date = day.Format(dateLayout)
	}
	return s.list(ctx, filters, params)
}

func (s *service) list(ctx context.Context, filters ListFilters, params pagination.Params) (*VisitPage, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "list visits")
	}
	return newVisitPage(rows, next), nil
}

func (s *service) Transition(ctx context.Context, identity auth.Identity, visitID uuid.UUID, next enums.VisitStatus) (*VisitDTO, error) {
	if !identity.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only administrators can change visit status")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown visit status %q", next))
	}

	var visit *models.Visit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		visit, err = repo.FindByID(ctx, visitID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "visit not found")
			}
			return pkgerrors.Unavailable(err, "load visit")
		}
		from := visit.Status
		if !from.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move visit from %s to %s", from, next)).
				WithDetails(map[string]any{"from": from, "to": next})
		}
		updated, err := repo.UpdateStatus(ctx, visit.ID, from, next)
		if err != nil {
			return pkgerrors.Unavailable(err, "update visit status")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeConflict, "visit status changed concurrently; reload and retry")
		}
		if next == enums.VisitStatusCancelled && from.HoldsSeats() {
			if err := repo.ReleaseSeats(ctx, visit.VisitDate, visit.VisitTime, visit.NumberOfVisitors); err != nil {
				return pkgerrors.Unavailable(err, "release visit slot")
			}
		}
		visit.Status = next
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventVisitStatusChanged,
			AggregateType: enums.AggregateVisit,
			AggregateID:   visit.ID,
			Actor:         &outbox.ActorRef{UserID: identity.UserID, Role: string(identity.Role)},
			Data:          payloads.VisitStatusChangedEvent{VisitID: visit.ID, From: from, To: next},
		})
	})
	if err != nil {
		return nil, err
	}
	dto := NewVisitDTO(visit)
	return &dto, nil
}

func (s *service) CountPending(ctx context.Context) (int64, error) {
	n, err := s.repo.CountPending(ctx)
	if err != nil {
		return 0, pkgerrors.Unavailable(err, "count visits")
	}
	return n, nil
}
