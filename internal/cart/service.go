package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
	"github.com/gmchicks/storefront-backend/pkg/logger"
)

const maxSaveAttempts = 5

// Store is the persistence surface used by the service.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) (PersistedCart, error)
	Save(ctx context.Context, c *PersistedCart) error
}

type conflictRecorder interface {
	IncCartConflict()
}

// Service manages the persisted cart of authenticated users. Every mutation is
// stored before the call returns.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	SetLine(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error)
	IncrementLine(ctx context.Context, userID, productID uuid.UUID, delta int) (*View, error)
	RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) (*View, error)
	Reconcile(ctx context.Context, userID uuid.UUID, guestLines []Line) (*View, error)
}

type service struct {
	store   Store
	catalog Catalog
	logg    *logger.Logger
	metrics conflictRecorder
}

// NewService builds a cart service backed by the provided stack.
func NewService(store Store, catalog Catalog, logg *logger.Logger, metrics conflictRecorder) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, catalog: catalog, logg: logg, metrics: metrics}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "load cart")
	}
	view, err := Materialize(ctx, s.catalog, c)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "materialize cart")
	}
	if len(view.Dropped) > 0 {
		dropped := view.Dropped
		if _, err := s.mutate(ctx, userID, func(c *PersistedCart) error {
			for _, id := range dropped {
				c.RemoveLine(id)
			}
			return nil
		}); err != nil {
			logCtx := s.logg.WithField(ctx, "dropped_lines", len(dropped))
			s.logg.Warn(logCtx, "failed to persist cleaned cart: "+err.Error())
		}
	}
	return view, nil
}

func (s *service) SetLine(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.mutateAndView(ctx, userID, func(c *PersistedCart) error {
		return c.SetLine(productID, quantity)
	})
}

func (s *service) IncrementLine(ctx context.Context, userID, productID uuid.UUID, delta int) (*View, error) {
	if delta < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.mutateAndView(ctx, userID, func(c *PersistedCart) error {
		return c.IncrementLine(productID, delta)
	})
}

func (s *service) RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	return s.mutateAndView(ctx, userID, func(c *PersistedCart) error {
		c.RemoveLine(productID)
		return nil
	})
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*View, error) {
	return s.mutateAndView(ctx, userID, func(c *PersistedCart) error {
		c.Clear()
		return nil
	})
}

func (s *service) Reconcile(ctx context.Context, userID uuid.UUID, guestLines []Line) (*View, error) {
	guest, err := NewGuestCart(guestLines)
	if err != nil {
		return nil, err
	}
	view, err := s.mutateAndView(ctx, userID, func(c *PersistedCart) error {
		*c = Reconcile(guest, *c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":     userID.String(),
		"guest_lines": guest.Len(),
	})
	s.logg.Info(logCtx, "guest cart reconciled")
	return view, nil
}

func (s *service) mutateAndView(ctx context.Context, userID uuid.UUID, apply func(*PersistedCart) error) (*View, error) {
	c, err := s.mutate(ctx, userID, apply)
	if err != nil {
		return nil, err
	}
	view, err := Materialize(ctx, s.catalog, c)
	if err != nil {
		return nil, pkgerrors.Unavailable(err, "materialize cart")
	}
	return view, nil
}

// mutate loads, applies and saves with compare-and-swap, reapplying the
// mutation on a fresh copy after each lost race.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, apply func(*PersistedCart) error) (PersistedCart, error) {
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		c, err := s.store.Load(ctx, userID)
		if err != nil {
			return PersistedCart{}, pkgerrors.Unavailable(err, "load cart")
		}
		if err := apply(&c); err != nil {
			return PersistedCart{}, err
		}
		err = s.store.Save(ctx, &c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return PersistedCart{}, pkgerrors.Unavailable(err, "save cart")
		}
		if s.metrics != nil {
			s.metrics.IncCartConflict()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return PersistedCart{}, pkgerrors.Unavailable(ctxErr, "save cart")
		}
	}
	return PersistedCart{}, pkgerrors.New(pkgerrors.CodeConflict, "cart was modified concurrently; retry")
}

func (s *service) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	p, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return pkgerrors.Unavailable(err, "load product")
	}
	if !p.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is not available").
			WithDetails(map[string]any{"product_id": productID})
	}
	return nil
}
